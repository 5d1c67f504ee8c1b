package repository

import (
	"context"
	"fmt"
	"time"

	"MarketDash/internal/domain/models"
	domrepo "MarketDash/internal/domain/repository"
	pkgch "MarketDash/pkg/clickhouse"
	applogger "MarketDash/pkg/logger"

	"github.com/jmoiron/sqlx"
)

// CHCandleStore implements CandleStore backed by ClickHouse.
type CHCandleStore struct {
	db    *sqlx.DB
	table string
	l     *applogger.Logger
}

var _ domrepo.CandleStore = (*CHCandleStore)(nil)

func NewCHCandleStore(ch *pkgch.Client, l *applogger.Logger) *CHCandleStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHCandleStore{db: ch.DB(), table: ch.Database() + ".candles", l: l}
}

// SaveCandles inserts only timestamps not already stored so the returned
// count reflects new rows; ReplacingMergeTree absorbs concurrent duplicates.
func (s *CHCandleStore) SaveCandles(ctx context.Context, candles []models.Candle) (int, error) {
	rows := persistable(candles)
	if len(rows) == 0 {
		return 0, nil
	}
	start := time.Now()

	existing, err := s.existing(ctx, rows)
	if err != nil {
		return 0, err
	}
	fresh := rows[:0]
	for _, c := range rows {
		if !existing[key(c)] {
			fresh = append(fresh, c)
		}
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin batch: %w", err)
	}
	stmt, err := tx.PreparexContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (symbol, timeframe, ts, open, high, low, close, volume, source)", s.table))
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare batch: %w", err)
	}
	defer stmt.Close()

	for _, c := range fresh {
		if _, err := stmt.ExecContext(ctx, c.Symbol, string(c.Timeframe), c.Timestamp.UTC(),
			c.Open, c.High, c.Low, c.Close, c.Volume, c.Source); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("append candle: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		s.l.Error("clickhouse save_candles error",
			applogger.String("table", s.table),
			applogger.Int("rows", len(fresh)),
			applogger.Error(err),
		)
		return 0, fmt.Errorf("commit batch: %w", err)
	}
	s.l.Debug("clickhouse save_candles ok",
		applogger.String("table", s.table),
		applogger.Int("inserted", len(fresh)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return len(fresh), nil
}

// existing returns the stored keys within the time span of candles.
func (s *CHCandleStore) existing(ctx context.Context, candles []models.Candle) (map[string]bool, error) {
	groups := map[string][2]time.Time{}
	for _, c := range candles {
		g := string(c.Timeframe) + "|" + c.Symbol
		span, ok := groups[g]
		if !ok {
			span = [2]time.Time{c.Timestamp, c.Timestamp}
		}
		if c.Timestamp.Before(span[0]) {
			span[0] = c.Timestamp
		}
		if c.Timestamp.After(span[1]) {
			span[1] = c.Timestamp
		}
		groups[g] = span
	}

	out := map[string]bool{}
	for _, c := range candles {
		g := string(c.Timeframe) + "|" + c.Symbol
		span, ok := groups[g]
		if !ok {
			continue
		}
		delete(groups, g)
		stored, err := s.GetCandles(ctx, c.Symbol, c.Timeframe, span[0], span[1])
		if err != nil {
			return nil, err
		}
		for _, sc := range stored {
			out[key(sc)] = true
		}
	}
	return out, nil
}

func (s *CHCandleStore) GetCandles(ctx context.Context, symbol string, tf models.Timeframe, from, to time.Time) ([]models.Candle, error) {
	start := time.Now()
	q := fmt.Sprintf(`
		SELECT symbol, timeframe, ts, open, high, low, close, volume, source
		FROM %s FINAL
		WHERE symbol = ? AND timeframe = ? AND ts >= ? AND ts <= ?
		ORDER BY ts ASC`, s.table)
	out := []models.Candle{}
	if err := s.db.SelectContext(ctx, &out, q, symbol, string(tf), from.UTC(), to.UTC()); err != nil {
		s.l.Error("clickhouse get_candles query error",
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("get candles: %w", err)
	}
	s.l.Debug("clickhouse get_candles ok",
		applogger.String("table", s.table),
		applogger.String("symbol", symbol),
		applogger.String("tf", string(tf)),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return utc(out), nil
}

func (s *CHCandleStore) GetLatestCandles(ctx context.Context, symbol string, tf models.Timeframe, n int) ([]models.Candle, error) {
	q := fmt.Sprintf(`
		SELECT symbol, timeframe, ts, open, high, low, close, volume, source
		FROM %s FINAL
		WHERE symbol = ? AND timeframe = ?
		ORDER BY ts DESC
		LIMIT ?`, s.table)
	out := []models.Candle{}
	if err := s.db.SelectContext(ctx, &out, q, symbol, string(tf), n); err != nil {
		s.l.Error("clickhouse latest_candles query error",
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Int("limit", n),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("get latest candles: %w", err)
	}
	// reverse to ASC
	reverse(out)
	return utc(out), nil
}

func key(c models.Candle) string {
	return fmt.Sprintf("%s|%s|%d", c.Symbol, c.Timeframe, c.Timestamp.UnixMilli())
}
