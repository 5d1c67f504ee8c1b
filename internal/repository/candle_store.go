package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"MarketDash/internal/domain/models"
	domrepo "MarketDash/internal/domain/repository"
	applogger "MarketDash/pkg/logger"

	"github.com/jmoiron/sqlx"
)

// candleChunk bounds rows per INSERT; postgres caps bind parameters at 65535.
const candleChunk = 1000

// PGCandleStore implements CandleStore backed by PostgreSQL.
type PGCandleStore struct {
	db *sqlx.DB
	l  *applogger.Logger
}

var _ domrepo.CandleStore = (*PGCandleStore)(nil)

func NewPGCandleStore(db *sqlx.DB, l *applogger.Logger) *PGCandleStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &PGCandleStore{db: db, l: l}
}

// SaveCandles inserts candles, skipping existing keys and synthetic bars.
func (s *PGCandleStore) SaveCandles(ctx context.Context, candles []models.Candle) (int, error) {
	rows := persistable(candles)
	if len(rows) == 0 {
		return 0, nil
	}
	start := time.Now()
	inserted := 0
	for lo := 0; lo < len(rows); lo += candleChunk {
		hi := lo + candleChunk
		if hi > len(rows) {
			hi = len(rows)
		}

		values := make([]string, 0, hi-lo)
		args := make([]interface{}, 0, (hi-lo)*9)
		for _, c := range rows[lo:hi] {
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args, c.Symbol, string(c.Timeframe), c.Timestamp.UTC(),
				c.Open, c.High, c.Low, c.Close, c.Volume, c.Source)
		}
		q := s.db.Rebind(`INSERT INTO candles (symbol, timeframe, ts, open, high, low, close, volume, source)
			VALUES ` + strings.Join(values, ",") + `
			ON CONFLICT (symbol, timeframe, ts) DO NOTHING`)
		res, err := s.db.ExecContext(ctx, q, args...)
		if err != nil {
			s.l.Error("postgres save_candles error",
				applogger.String("symbol", rows[lo].Symbol),
				applogger.Int("rows", hi-lo),
				applogger.Error(err),
			)
			return inserted, fmt.Errorf("save candles: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	s.l.Debug("postgres save_candles ok",
		applogger.String("symbol", rows[0].Symbol),
		applogger.Int("rows", len(rows)),
		applogger.Int("inserted", inserted),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return inserted, nil
}

func (s *PGCandleStore) GetCandles(ctx context.Context, symbol string, tf models.Timeframe, from, to time.Time) ([]models.Candle, error) {
	const q = `
		SELECT symbol, timeframe, ts, open, high, low, close, volume, source
		FROM candles
		WHERE symbol = $1 AND timeframe = $2 AND ts >= $3 AND ts <= $4
		ORDER BY ts ASC`
	out := []models.Candle{}
	if err := s.db.SelectContext(ctx, &out, q, symbol, string(tf), from.UTC(), to.UTC()); err != nil {
		s.l.Error("postgres get_candles error",
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("get candles: %w", err)
	}
	return utc(out), nil
}

func (s *PGCandleStore) GetLatestCandles(ctx context.Context, symbol string, tf models.Timeframe, n int) ([]models.Candle, error) {
	const q = `
		SELECT symbol, timeframe, ts, open, high, low, close, volume, source
		FROM candles
		WHERE symbol = $1 AND timeframe = $2
		ORDER BY ts DESC
		LIMIT $3`
	out := []models.Candle{}
	if err := s.db.SelectContext(ctx, &out, q, symbol, string(tf), n); err != nil {
		s.l.Error("postgres latest_candles error",
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Int("limit", n),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("get latest candles: %w", err)
	}
	reverse(out)
	return utc(out), nil
}

// persistable drops synthetic candles, which must never reach storage.
func persistable(candles []models.Candle) []models.Candle {
	out := make([]models.Candle, 0, len(candles))
	for _, c := range candles {
		if c.Synthetic() {
			continue
		}
		out = append(out, c)
	}
	return out
}

func reverse(cs []models.Candle) {
	for i, j := 0, len(cs)-1; i < j; i, j = i+1, j-1 {
		cs[i], cs[j] = cs[j], cs[i]
	}
}

func utc(cs []models.Candle) []models.Candle {
	for i := range cs {
		cs[i].Timestamp = cs[i].Timestamp.UTC()
	}
	return cs
}
