package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MarketDash/internal/domain"
	"MarketDash/internal/domain/models"
	"MarketDash/pkg/cache"
	applogger "MarketDash/pkg/logger"
)

type GetHistoricalParams struct {
	Symbol    string
	Timeframe models.Timeframe
	// Zero values default to the last 30 days ending now, shortened to
	// what the provider keeps at this timeframe.
	From time.Time
	To   time.Time
}

// GetHistorical returns candles in [From, To], ascending.
func (uc *MarketUseCase) GetHistorical(ctx context.Context, p GetHistoricalParams) (*models.CandleSeries, error) {
	if p.To.IsZero() {
		p.To = uc.now().UTC()
	}
	maxSpan := p.Timeframe.MaxHistory()
	if p.From.IsZero() {
		window := defaultHistoryWindow
		if window > maxSpan {
			window = maxSpan
		}
		p.From = p.To.Add(-window)
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("start_date after end_date: %w", domain.ErrInvalidInput)
	}
	if p.To.Sub(p.From) > maxSpan {
		return nil, fmt.Errorf("%s range of %s exceeds %s: %w", p.Timeframe, p.To.Sub(p.From), maxSpan, domain.ErrRangeTooLarge)
	}

	candles, err := uc.provider.GetHistory(ctx, p.Symbol, p.Timeframe, p.From, p.To)
	switch {
	case err == nil:
		uc.persist(ctx, candles)
	case errors.Is(err, domain.ErrDataUnavailable) && uc.store != nil:
		stored, serr := uc.store.GetCandles(ctx, p.Symbol, p.Timeframe, p.From, p.To)
		if serr != nil || len(stored) == 0 {
			return nil, err
		}
		uc.logger.Warn("market.historical served from store",
			applogger.String("symbol", p.Symbol),
			applogger.Int("count", len(stored)),
			applogger.Error(err),
		)
		candles = markStored(stored)
	default:
		return nil, err
	}

	return &models.CandleSeries{
		Symbol:    p.Symbol,
		Timeframe: p.Timeframe,
		From:      p.From,
		To:        p.To,
		Count:     len(candles),
		Synthetic: models.AnySynthetic(candles),
		Candles:   candles,
	}, nil
}

// RecentCandles returns up to n of the most recent candles. The result is
// cached for the quote TTL since signals, predictions and analysis for the
// same symbol all start from it.
func (uc *MarketUseCase) RecentCandles(ctx context.Context, symbol string, tf models.Timeframe, n int) ([]models.Candle, error) {
	key := cache.GenerateKeyWithParams("candles", symbol, tf, n)
	candles, hit, err := cache.GetOrLoad(ctx, uc.cache, key, uc.cfg.QuoteTTL, func(ctx context.Context) ([]models.Candle, error) {
		return uc.loadRecent(ctx, symbol, tf, n)
	}, uc.cacheError)
	uc.metrics.RecordCache("candles", hit)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("no %s candles for %s: %w", tf, symbol, domain.ErrInsufficientData)
	}
	return candles, nil
}

func (uc *MarketUseCase) loadRecent(ctx context.Context, symbol string, tf models.Timeframe, n int) ([]models.Candle, error) {
	to := uc.now().UTC()
	from := to.Add(-tf.LookbackFor(n))

	candles, err := uc.provider.GetHistory(ctx, symbol, tf, from, to)
	if err == nil {
		uc.persist(ctx, candles)
		if len(candles) > n {
			candles = candles[len(candles)-n:]
		}
		return candles, nil
	}
	if !errors.Is(err, domain.ErrDataUnavailable) || uc.store == nil {
		return nil, err
	}
	stored, serr := uc.store.GetLatestCandles(ctx, symbol, tf, n)
	if serr != nil || len(stored) == 0 {
		return nil, err
	}
	uc.logger.Warn("recent candles served from store",
		applogger.String("symbol", symbol),
		applogger.Int("count", len(stored)),
		applogger.Error(err),
	)
	return markStored(stored), nil
}

func markStored(candles []models.Candle) []models.Candle {
	for i := range candles {
		candles[i].Source = models.SourceStore
	}
	return candles
}
