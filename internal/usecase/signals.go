package usecase

import (
	"context"
	"fmt"
	"time"

	"MarketDash/internal/domain"
	"MarketDash/internal/domain/models"
	domrepo "MarketDash/internal/domain/repository"
	"MarketDash/internal/services/indicators"
	"MarketDash/internal/services/signals"
	"MarketDash/pkg/cache"
	applogger "MarketDash/pkg/logger"
)

// CandleSource supplies the recent series every computation starts from.
type CandleSource interface {
	RecentCandles(ctx context.Context, symbol string, tf models.Timeframe, n int) ([]models.Candle, error)
}

type SignalsConfig struct {
	// Lookback is how many candles feed the generator.
	Lookback int
	CacheTTL time.Duration
}

type SignalsUseCase struct {
	candles   CandleSource
	generator *signals.Generator
	store     domrepo.SignalStore
	publisher domrepo.EventPublisher
	cache     cache.Service
	metrics   domrepo.Metrics
	logger    *applogger.Logger
	cfg       SignalsConfig
}

func NewSignalsUseCase(candles CandleSource, gen *signals.Generator, store domrepo.SignalStore,
	pub domrepo.EventPublisher, c cache.Service, metrics domrepo.Metrics, logger *applogger.Logger,
	cfg SignalsConfig) *SignalsUseCase {
	if cfg.Lookback <= 0 {
		cfg.Lookback = 200
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if metrics == nil {
		metrics = domrepo.NopMetrics{}
	}
	if logger == nil {
		logger = applogger.Nop()
	}
	return &SignalsUseCase{
		candles:   candles,
		generator: gen,
		store:     store,
		publisher: pub,
		cache:     c,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
	}
}

// Generate computes a fresh signal, records it and announces it. Signals
// computed from synthetic candles are returned but never stored.
func (uc *SignalsUseCase) Generate(ctx context.Context, symbol string, tf models.Timeframe) (*models.TradingSignal, error) {
	start := time.Now()
	candles, err := uc.candles.RecentCandles(ctx, symbol, tf, uc.cfg.Lookback)
	if err != nil {
		return nil, err
	}
	sig, err := uc.generator.Generate(symbol, tf, candles)
	if err != nil {
		return nil, fmt.Errorf("generate signal: %w", err)
	}

	if sig.Synthetic {
		uc.logger.Warn("signal computed from synthetic data, not stored",
			applogger.String("symbol", symbol),
		)
	} else {
		if err := uc.store.CreateSignal(ctx, sig); err != nil {
			uc.metrics.RecordError("signal_store")
			return nil, fmt.Errorf("store signal: %w", err)
		}
		if uc.publisher != nil {
			if err := uc.publisher.PublishSignal(ctx, sig); err != nil {
				uc.metrics.RecordError("publish")
				uc.logger.Warn("publish signal failed",
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
		}
	}

	uc.metrics.RecordSignal(string(sig.SignalType))
	uc.metrics.RecordLatency("signals.generate", time.Since(start).Seconds())
	uc.logger.Info("signals.generate ok",
		applogger.String("symbol", symbol),
		applogger.String("timeframe", string(tf)),
		applogger.String("signal", string(sig.SignalType)),
		applogger.Float64("strength", sig.Strength),
		applogger.Int("candles", len(candles)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return sig, nil
}

// List returns stored signals, newest first. An empty timeframe lists all.
func (uc *SignalsUseCase) List(ctx context.Context, symbol string, tf models.Timeframe, limit int) ([]models.TradingSignal, error) {
	out, err := uc.store.ListSignals(ctx, symbol, tf, limit)
	if err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}
	return out, nil
}

func (uc *SignalsUseCase) SupportResistance(ctx context.Context, symbol string, tf models.Timeframe, lookback int) (*models.SupportResistance, error) {
	if lookback <= 0 {
		lookback = signals.DefaultLevelLookback
	}
	key := cache.GenerateKeyWithParams("levels", symbol, tf, lookback)
	sr, hit, err := cache.GetOrLoad(ctx, uc.cache, key, uc.cfg.CacheTTL, func(ctx context.Context) (models.SupportResistance, error) {
		candles, err := uc.candles.RecentCandles(ctx, symbol, tf, uc.window(lookback))
		if err != nil {
			return models.SupportResistance{}, err
		}
		out, err := uc.generator.SupportResistance(symbol, tf, candles, lookback)
		if err != nil {
			return models.SupportResistance{}, err
		}
		return *out, nil
	}, uc.cacheError)
	uc.metrics.RecordCache("levels", hit)
	if err != nil {
		return nil, err
	}
	return &sr, nil
}

// TechnicalAnalysis returns every indicator value for the latest bar.
func (uc *SignalsUseCase) TechnicalAnalysis(ctx context.Context, symbol string, tf models.Timeframe) (*models.TechnicalAnalysis, error) {
	key := cache.GenerateKeyWithParams("analysis", symbol, tf)
	ta, hit, err := cache.GetOrLoad(ctx, uc.cache, key, uc.cfg.CacheTTL, func(ctx context.Context) (models.TechnicalAnalysis, error) {
		candles, err := uc.candles.RecentCandles(ctx, symbol, tf, uc.cfg.Lookback)
		if err != nil {
			return models.TechnicalAnalysis{}, err
		}
		if len(candles) == 0 {
			return models.TechnicalAnalysis{}, domain.ErrInsufficientData
		}
		return indicators.Analyze(symbol, tf, candles), nil
	}, uc.cacheError)
	uc.metrics.RecordCache("analysis", hit)
	if err != nil {
		return nil, err
	}
	return &ta, nil
}

// window is the candle count needed for levels over lookback bars; the
// SMA50 level needs at least MALong.
func (uc *SignalsUseCase) window(lookback int) int {
	if lookback < indicators.MALong {
		return indicators.MALong
	}
	return lookback
}

func (uc *SignalsUseCase) cacheError(op string, err error) {
	uc.metrics.RecordError("cache_" + op)
	uc.logger.Warn("cache "+op+" failed", applogger.Error(err))
}
