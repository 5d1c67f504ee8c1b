package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"MarketDash/internal/domain/models"
	domrepo "MarketDash/internal/domain/repository"
	"MarketDash/internal/services/prediction"
	"MarketDash/pkg/cache"
	applogger "MarketDash/pkg/logger"

	"github.com/shopspring/decimal"
)

const (
	// confidenceSample is how many stored predictions feed the analysis.
	confidenceSample = 20
	// trendWindow predictions at each end of the sample are compared.
	trendWindow    = 5
	trendTolerance = 0.01
)

type PredictionsConfig struct {
	Lookback int
	CacheTTL time.Duration
}

type PredictionsUseCase struct {
	candles   CandleSource
	models    *prediction.Service
	store     domrepo.PredictionStore
	publisher domrepo.EventPublisher
	cache     cache.Service
	metrics   domrepo.Metrics
	logger    *applogger.Logger
	cfg       PredictionsConfig
	now       func() time.Time
}

func NewPredictionsUseCase(candles CandleSource, svc *prediction.Service, store domrepo.PredictionStore,
	pub domrepo.EventPublisher, c cache.Service, metrics domrepo.Metrics, logger *applogger.Logger,
	cfg PredictionsConfig) *PredictionsUseCase {
	if cfg.Lookback <= 0 {
		cfg.Lookback = 500
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if metrics == nil {
		metrics = domrepo.NopMetrics{}
	}
	if logger == nil {
		logger = applogger.Nop()
	}
	return &PredictionsUseCase{
		now:       time.Now,
		candles:   candles,
		models:    svc,
		store:     store,
		publisher: pub,
		cache:     c,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
	}
}

type GeneratePredictionParams struct {
	Symbol    string
	Timeframe models.Timeframe
	// Model is empty for the configured default.
	Model   models.ModelKind
	Horizon models.Horizon
}

// Generate fits the model on recent candles and records the forecast.
// Forecasts from synthetic candles are returned but never stored.
func (uc *PredictionsUseCase) Generate(ctx context.Context, p GeneratePredictionParams) (*models.Prediction, error) {
	start := time.Now()
	if p.Horizon == "" {
		p.Horizon = models.HorizonShort
	}
	candles, err := uc.candles.RecentCandles(ctx, p.Symbol, p.Timeframe, uc.cfg.Lookback)
	if err != nil {
		return nil, err
	}
	pred, err := uc.models.Predict(ctx, p.Model, p.Symbol, p.Timeframe, p.Horizon, candles)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", p.Symbol, err)
	}

	if pred.Synthetic {
		uc.logger.Warn("prediction computed from synthetic data, not stored",
			applogger.String("symbol", p.Symbol),
		)
	} else {
		if err := uc.store.CreatePrediction(ctx, pred); err != nil {
			uc.metrics.RecordError("prediction_store")
			return nil, fmt.Errorf("store prediction: %w", err)
		}
		if uc.publisher != nil {
			if err := uc.publisher.PublishPrediction(ctx, pred); err != nil {
				uc.metrics.RecordError("publish")
				uc.logger.Warn("publish prediction failed",
					applogger.String("symbol", p.Symbol),
					applogger.Error(err),
				)
			}
		}
	}

	elapsed := time.Since(start)
	uc.metrics.RecordPrediction(string(pred.ModelUsed), string(pred.TimeHorizon))
	uc.metrics.RecordLatency("predictions.generate", elapsed.Seconds())
	uc.logger.Info("predictions.generate ok",
		applogger.String("symbol", p.Symbol),
		applogger.String("model", string(pred.ModelUsed)),
		applogger.String("horizon", string(pred.TimeHorizon)),
		applogger.Float64("confidence", pred.ConfidenceScore),
		applogger.Duration("duration_ms", elapsed),
	)
	return pred, nil
}

func (uc *PredictionsUseCase) List(ctx context.Context, symbol string, tf models.Timeframe, limit int) ([]models.Prediction, error) {
	out, err := uc.store.ListPredictions(ctx, symbol, tf, limit)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	return out, nil
}

// Performance evaluates every model on the same series without persisting.
func (uc *PredictionsUseCase) Performance(ctx context.Context, symbol string, tf models.Timeframe, horizon models.Horizon) (*models.PerformanceReport, error) {
	if horizon == "" {
		horizon = models.HorizonShort
	}
	key := cache.GenerateKeyWithParams("performance", symbol, tf, horizon)
	rep, hit, err := cache.GetOrLoad(ctx, uc.cache, key, uc.cfg.CacheTTL, func(ctx context.Context) (models.PerformanceReport, error) {
		candles, err := uc.candles.RecentCandles(ctx, symbol, tf, uc.cfg.Lookback)
		if err != nil {
			return models.PerformanceReport{}, err
		}
		r, err := uc.models.Evaluate(ctx, symbol, tf, horizon, candles)
		if err != nil {
			return models.PerformanceReport{}, fmt.Errorf("evaluate %s: %w", symbol, err)
		}
		return *r, nil
	}, func(op string, err error) {
		uc.metrics.RecordError("cache_" + op)
		uc.logger.Warn("cache "+op+" failed", applogger.Error(err))
	})
	uc.metrics.RecordCache("performance", hit)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// ConfidenceAnalysis summarizes the confidence of the most recent stored
// predictions. With no predictions the report has zero totals.
func (uc *PredictionsUseCase) ConfidenceAnalysis(ctx context.Context, symbol string, tf models.Timeframe) (*models.ConfidenceAnalysis, error) {
	preds, err := uc.store.ListPredictions(ctx, symbol, tf, confidenceSample)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	out := &models.ConfidenceAnalysis{
		Symbol:      symbol,
		Timeframe:   tf,
		Trend:       models.TrendStable,
		Recent:      []models.Prediction{},
		GeneratedAt: uc.now().UTC(),
	}
	if len(preds) == 0 {
		return out, nil
	}

	sum, lo, hi := 0.0, math.Inf(1), math.Inf(-1)
	for _, p := range preds {
		sum += p.ConfidenceScore
		lo = math.Min(lo, p.ConfidenceScore)
		hi = math.Max(hi, p.ConfidenceScore)
	}
	out.TotalPredictions = len(preds)
	out.AvgConfidence = round3(sum / float64(len(preds)))
	out.MinConfidence = round3(lo)
	out.MaxConfidence = round3(hi)
	out.Trend = confidenceTrend(preds)
	n := trendWindow
	if len(preds) < n {
		n = len(preds)
	}
	out.Recent = preds[:n]
	return out, nil
}

// confidenceTrend compares the newest predictions with the oldest ones in a
// newest-first list. Short lists are stable.
func confidenceTrend(preds []models.Prediction) string {
	if len(preds) <= trendWindow {
		return models.TrendStable
	}
	newest := meanConfidence(preds[:trendWindow])
	oldest := meanConfidence(preds[len(preds)-trendWindow:])
	switch {
	case newest-oldest > trendTolerance:
		return models.TrendImproving
	case oldest-newest > trendTolerance:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}

func meanConfidence(preds []models.Prediction) float64 {
	sum := 0.0
	for _, p := range preds {
		sum += p.ConfidenceScore
	}
	return sum / float64(len(preds))
}

func round3(v float64) float64 {
	return decimal.NewFromFloat(v).Round(3).InexactFloat64()
}
