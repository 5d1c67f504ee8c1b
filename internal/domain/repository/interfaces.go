package repository

import (
	"context"
	"time"

	"MarketDash/internal/domain/models"
)

// MarketDataProvider fetches candles from an external source. Symbols are
// the user-facing tickers; translation to exchange-qualified form is the
// provider's job.
type MarketDataProvider interface {
	GetHistory(ctx context.Context, symbol string, tf models.Timeframe, from, to time.Time) ([]models.Candle, error)
	GetQuote(ctx context.Context, symbol string, tf models.Timeframe) (*models.Candle, error)
}

// CandleStore persists immutable candles keyed by (symbol, timeframe, timestamp).
type CandleStore interface {
	// SaveCandles inserts candles, silently skipping keys that already exist.
	// It returns the number of newly inserted rows.
	SaveCandles(ctx context.Context, candles []models.Candle) (int, error)
	GetCandles(ctx context.Context, symbol string, tf models.Timeframe, from, to time.Time) ([]models.Candle, error)
	GetLatestCandles(ctx context.Context, symbol string, tf models.Timeframe, n int) ([]models.Candle, error)
}

// PredictionStore is append-only. An empty timeframe lists all timeframes.
type PredictionStore interface {
	CreatePrediction(ctx context.Context, p *models.Prediction) error
	ListPredictions(ctx context.Context, symbol string, tf models.Timeframe, limit int) ([]models.Prediction, error)
}

// SignalStore is append-only. An empty timeframe lists all timeframes.
type SignalStore interface {
	CreateSignal(ctx context.Context, s *models.TradingSignal) error
	ListSignals(ctx context.Context, symbol string, tf models.Timeframe, limit int) ([]models.TradingSignal, error)
}

type UserStore interface {
	// CreateUser returns an error wrapping domain.ErrConflict on duplicate username or email.
	CreateUser(ctx context.Context, u *models.User) error
	// Lookups return domain.ErrNotFound when no row matches.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// EventPublisher announces generated records to downstream consumers.
type EventPublisher interface {
	PublishSignal(ctx context.Context, s *models.TradingSignal) error
	PublishPrediction(ctx context.Context, p *models.Prediction) error
	Close() error
}

// HealthChecker is implemented by infrastructure clients.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type Metrics interface {
	RecordUpstream(provider, result string)
	RecordCache(kind string, hit bool)
	RecordSignal(signalType string)
	RecordPrediction(model, horizon string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordUpstream(string, string) {}
func (NopMetrics) RecordCache(string, bool) {}
func (NopMetrics) RecordSignal(string) {}
func (NopMetrics) RecordPrediction(string, string) {}
func (NopMetrics) RecordError(string) {}
func (NopMetrics) RecordLastPrice(string, float64) {}
func (NopMetrics) RecordLatency(string, float64) {}
