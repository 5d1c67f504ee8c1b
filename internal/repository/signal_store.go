package repository

import (
	"context"
	"fmt"

	"MarketDash/internal/domain/models"
	domrepo "MarketDash/internal/domain/repository"
	applogger "MarketDash/pkg/logger"

	"github.com/jmoiron/sqlx"
)

// PGSignalStore is an append-only signal log. The indicator breakdown and
// risk assessment are response-only and not stored.
type PGSignalStore struct {
	db *sqlx.DB
	l  *applogger.Logger
}

var _ domrepo.SignalStore = (*PGSignalStore)(nil)

func NewPGSignalStore(db *sqlx.DB, l *applogger.Logger) *PGSignalStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &PGSignalStore{db: db, l: l}
}

func (s *PGSignalStore) CreateSignal(ctx context.Context, sig *models.TradingSignal) error {
	const q = `
		INSERT INTO trading_signals
			(symbol, timeframe, signal_type, strength, current_price, price_target, stop_loss,
			 support_level, resistance_level, reasoning)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`
	err := s.db.QueryRowxContext(ctx, q,
		sig.Symbol, string(sig.Timeframe), string(sig.SignalType), sig.Strength, sig.CurrentPrice,
		sig.PriceTarget, sig.StopLoss, sig.SupportLevel, sig.ResistanceLevel, sig.Reasoning,
	).Scan(&sig.ID, &sig.CreatedAt)
	if err != nil {
		s.l.Error("postgres create_signal error",
			applogger.String("symbol", sig.Symbol),
			applogger.String("signal", string(sig.SignalType)),
			applogger.Error(err),
		)
		return fmt.Errorf("create signal: %w", err)
	}
	sig.CreatedAt = sig.CreatedAt.UTC()
	return nil
}

func (s *PGSignalStore) ListSignals(ctx context.Context, symbol string, tf models.Timeframe, limit int) ([]models.TradingSignal, error) {
	const q = `
		SELECT id, symbol, timeframe, signal_type, strength, current_price, price_target, stop_loss,
		       support_level, resistance_level, reasoning, created_at
		FROM trading_signals
		WHERE symbol = $1 AND ($2 = '' OR timeframe = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3`
	out := []models.TradingSignal{}
	if err := s.db.SelectContext(ctx, &out, q, symbol, string(tf), limit); err != nil {
		s.l.Error("postgres list_signals error",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("list signals: %w", err)
	}
	for i := range out {
		out[i].CreatedAt = out[i].CreatedAt.UTC()
	}
	return out, nil
}
