package repository

import (
	"context"
	"fmt"

	"MarketDash/internal/domain/models"
	domrepo "MarketDash/internal/domain/repository"
	applogger "MarketDash/pkg/logger"

	"github.com/jmoiron/sqlx"
)

// PGPredictionStore is an append-only prediction log.
type PGPredictionStore struct {
	db *sqlx.DB
	l  *applogger.Logger
}

var _ domrepo.PredictionStore = (*PGPredictionStore)(nil)

func NewPGPredictionStore(db *sqlx.DB, l *applogger.Logger) *PGPredictionStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &PGPredictionStore{db: db, l: l}
}

// CreatePrediction inserts p and fills its ID and CreatedAt.
func (s *PGPredictionStore) CreatePrediction(ctx context.Context, p *models.Prediction) error {
	const q = `
		INSERT INTO predictions
			(symbol, timeframe, predicted_price, current_price, confidence_score, time_horizon, model_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	err := s.db.QueryRowxContext(ctx, q,
		p.Symbol, string(p.Timeframe), p.PredictedPrice, p.CurrentPrice,
		p.ConfidenceScore, string(p.TimeHorizon), string(p.ModelUsed),
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		s.l.Error("postgres create_prediction error",
			applogger.String("symbol", p.Symbol),
			applogger.String("model", string(p.ModelUsed)),
			applogger.Error(err),
		)
		return fmt.Errorf("create prediction: %w", err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return nil
}

func (s *PGPredictionStore) ListPredictions(ctx context.Context, symbol string, tf models.Timeframe, limit int) ([]models.Prediction, error) {
	const q = `
		SELECT id, symbol, timeframe, predicted_price, current_price, confidence_score,
		       time_horizon, model_used, created_at
		FROM predictions
		WHERE symbol = $1 AND ($2 = '' OR timeframe = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3`
	out := []models.Prediction{}
	if err := s.db.SelectContext(ctx, &out, q, symbol, string(tf), limit); err != nil {
		s.l.Error("postgres list_predictions error",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	for i := range out {
		out[i].CreatedAt = out[i].CreatedAt.UTC()
	}
	return out, nil
}
