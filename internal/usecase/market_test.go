package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"MarketDash/internal/domain"
	"MarketDash/internal/domain/models"
	"MarketDash/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenCache struct{}

var errCacheDown = errors.New("cache down")

func (brokenCache) Set(context.Context, string, interface{}, time.Duration) error { return errCacheDown }
func (brokenCache) Get(context.Context, string, interface{}) error { return errCacheDown }
func (brokenCache) Delete(context.Context, ...string) error { return errCacheDown }
func (brokenCache) DeleteByPattern(context.Context, string) error { return errCacheDown }
func (brokenCache) Exists(context.Context, ...string) (bool, error) { return false, errCacheDown }
func (brokenCache) Ping(context.Context) error { return errCacheDown }
func (brokenCache) Close() error { return nil }

func newMarket(t *testing.T, p *fakeProvider, s *fakeCandleStore) *MarketUseCase {
	t.Helper()
	c := cache.NewMemoryCache()
	t.Cleanup(func() { _ = c.Close() })
	uc := NewMarketUseCase(p, s, c, nil, nil, MarketConfig{QuoteTTL: time.Minute})
	uc.now = func() time.Time { return t0.AddDate(0, 3, 0) }
	return uc
}

func TestGetQuoteCachesAndPersists(t *testing.T) {
	p := &fakeProvider{candles: series(geometric(5, 100, 0.01), models.SourceProvider)}
	store := &fakeCandleStore{}
	uc := newMarket(t, p, store)

	q1, err := uc.GetQuote(context.Background(), "RELIANCE", models.TF1D)
	require.NoError(t, err)
	q2, err := uc.GetQuote(context.Background(), "RELIANCE", models.TF1D)
	require.NoError(t, err)

	assert.Equal(t, 1, p.calls)
	assert.InDelta(t, q1.Close, q2.Close, 1e-9)
	assert.Len(t, store.saved, 1)
}

func TestGetQuoteFallsBackToStore(t *testing.T) {
	p := &fakeProvider{err: fmt.Errorf("fetch: %w", domain.ErrDataUnavailable)}
	store := &fakeCandleStore{stored: series([]float64{10, 11, 12}, models.SourceProvider)}
	uc := newMarket(t, p, store)

	q, err := uc.GetQuote(context.Background(), "RELIANCE", models.TF1D)
	require.NoError(t, err)
	assert.Equal(t, models.SourceStore, q.Source)
	assert.InDelta(t, 12, q.Close, 1e-9)
}

func TestGetQuoteDoesNotMaskUnknownSymbol(t *testing.T) {
	p := &fakeProvider{err: domain.ErrSymbolNotFound}
	store := &fakeCandleStore{stored: series([]float64{10}, models.SourceProvider)}
	uc := newMarket(t, p, store)

	_, err := uc.GetQuote(context.Background(), "NOPE", models.TF1D)
	assert.ErrorIs(t, err, domain.ErrSymbolNotFound)
}

func TestGetQuoteWithBrokenCache(t *testing.T) {
	p := &fakeProvider{candles: series([]float64{10, 11}, models.SourceProvider)}
	uc := NewMarketUseCase(p, nil, brokenCache{}, nil, nil, MarketConfig{})

	q, err := uc.GetQuote(context.Background(), "RELIANCE", models.TF1D)
	require.NoError(t, err)
	assert.InDelta(t, 11, q.Close, 1e-9)
}

type symbolProvider struct {
	fakeProvider
	failing map[string]error
}

func (f *symbolProvider) GetQuote(ctx context.Context, symbol string, tf models.Timeframe) (*models.Candle, error) {
	if err, ok := f.failing[symbol]; ok {
		return nil, err
	}
	c, err := f.fakeProvider.GetQuote(ctx, symbol, tf)
	if err != nil {
		return nil, err
	}
	c.Symbol = symbol
	return c, nil
}

func TestGetQuotesReportsPartialFailures(t *testing.T) {
	p := &symbolProvider{
		fakeProvider: fakeProvider{candles: series([]float64{10, 11}, models.SourceProvider)},
		failing:      map[string]error{"NOPE": domain.ErrSymbolNotFound},
	}
	c := cache.NewMemoryCache()
	t.Cleanup(func() { _ = c.Close() })
	uc := NewMarketUseCase(p, nil, c, nil, nil, MarketConfig{})

	res, err := uc.GetQuotes(context.Background(), []string{"RELIANCE", "TCS", "NOPE"}, models.TF1D)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, "TCS", res.Quotes["TCS"].Symbol)
	assert.InDelta(t, 11, res.Quotes["RELIANCE"].Close, 1e-9)
	assert.Equal(t, map[string]string{"NOPE": "symbol not found"}, res.Errors)
}

func TestGetQuotesFailsWhenNothingQuoted(t *testing.T) {
	p := &fakeProvider{err: fmt.Errorf("fetch: %w", domain.ErrDataUnavailable)}
	uc := newMarket(t, p, &fakeCandleStore{})

	_, err := uc.GetQuotes(context.Background(), []string{"RELIANCE", "TCS"}, models.TF1D)
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
}

func TestGetHistoricalDefaultsToThirtyDays(t *testing.T) {
	p := &fakeProvider{candles: series(geometric(10, 100, 0.01), models.SourceProvider)}
	store := &fakeCandleStore{}
	uc := newMarket(t, p, store)

	res, err := uc.GetHistorical(context.Background(), GetHistoricalParams{Symbol: "RELIANCE", Timeframe: models.TF1D})
	require.NoError(t, err)
	assert.Equal(t, 30*24*time.Hour, p.to.Sub(p.from))
	assert.Equal(t, uc.now().UTC(), p.to)
	assert.Equal(t, 10, res.Count)
	assert.False(t, res.Synthetic)
	assert.Len(t, store.saved, 10)
}

func TestFormingBarIsNotPersisted(t *testing.T) {
	p := &fakeProvider{candles: series(geometric(5, 100, 0.01), models.SourceProvider)}
	store := &fakeCandleStore{}
	uc := newMarket(t, p, store)
	// 10:00 on the day of the last daily bar
	uc.now = func() time.Time { return t0.AddDate(0, 0, 4).Add(10 * time.Hour) }

	q, err := uc.GetQuote(context.Background(), "RELIANCE", models.TF1D)
	require.NoError(t, err)
	assert.Equal(t, t0.AddDate(0, 0, 4), q.Timestamp)
	assert.Empty(t, store.saved)

	res, err := uc.GetHistorical(context.Background(), GetHistoricalParams{Symbol: "RELIANCE", Timeframe: models.TF1D})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Count)
	require.Len(t, store.saved, 4)
	for _, c := range store.saved {
		assert.True(t, c.Timestamp.Before(t0.AddDate(0, 0, 4)))
	}
}

func TestGetHistoricalDefaultWindowFitsIntradayHistory(t *testing.T) {
	p := &fakeProvider{candles: series(geometric(10, 100, 0.01), models.SourceProvider)}
	uc := newMarket(t, p, &fakeCandleStore{})

	_, err := uc.GetHistorical(context.Background(), GetHistoricalParams{Symbol: "RELIANCE", Timeframe: models.TF1m})
	require.NoError(t, err)
	assert.Equal(t, models.TF1m.MaxHistory(), p.to.Sub(p.from))
}

func TestGetHistoricalRejectsRangeBeyondHistory(t *testing.T) {
	p := &fakeProvider{}
	uc := newMarket(t, p, &fakeCandleStore{})

	_, err := uc.GetHistorical(context.Background(), GetHistoricalParams{
		Symbol: "RELIANCE", Timeframe: models.TF1m,
		From: t0, To: t0.AddDate(0, 0, 30),
	})
	assert.ErrorIs(t, err, domain.ErrRangeTooLarge)
	assert.Zero(t, p.calls)
}

func TestGetHistoricalRejectsInvertedRange(t *testing.T) {
	uc := newMarket(t, &fakeProvider{}, &fakeCandleStore{})
	_, err := uc.GetHistorical(context.Background(), GetHistoricalParams{
		Symbol: "RELIANCE", Timeframe: models.TF1D,
		From: t0.AddDate(0, 1, 0), To: t0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetHistoricalSyntheticIsNotPersisted(t *testing.T) {
	p := &fakeProvider{candles: series(geometric(10, 100, 0.01), models.SourceSynthetic)}
	store := &fakeCandleStore{}
	uc := newMarket(t, p, store)

	res, err := uc.GetHistorical(context.Background(), GetHistoricalParams{Symbol: "RELIANCE", Timeframe: models.TF1D})
	require.NoError(t, err)
	assert.True(t, res.Synthetic)
	assert.Empty(t, store.saved)
}

func TestGetHistoricalUnavailableWithoutStoredData(t *testing.T) {
	p := &fakeProvider{err: domain.ErrDataUnavailable}
	uc := newMarket(t, p, &fakeCandleStore{})

	_, err := uc.GetHistorical(context.Background(), GetHistoricalParams{Symbol: "RELIANCE", Timeframe: models.TF1D})
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
}

func TestRecentCandlesTrimsAndCaches(t *testing.T) {
	p := &fakeProvider{candles: series(geometric(80, 100, 0.01), models.SourceProvider)}
	uc := newMarket(t, p, &fakeCandleStore{})

	got, err := uc.RecentCandles(context.Background(), "RELIANCE", models.TF1D, 50)
	require.NoError(t, err)
	require.Len(t, got, 50)
	assert.Equal(t, t0.AddDate(0, 0, 79), got[49].Timestamp)

	_, err = uc.RecentCandles(context.Background(), "RELIANCE", models.TF1D, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, p.calls)
}

func TestRecentCandlesEmpty(t *testing.T) {
	uc := newMarket(t, &fakeProvider{}, &fakeCandleStore{})
	_, err := uc.RecentCandles(context.Background(), "RELIANCE", models.TF1D, 50)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestNSEStatus(t *testing.T) {
	at := func(day, hour, min int) time.Time {
		return time.Date(2024, 1, day, hour, min, 0, 0, ist)
	}
	mondayOpen := at(15, 9, 15)

	cases := []struct {
		name    string
		now     time.Time
		open    bool
		session string
		next    time.Time
	}{
		{"monday morning", at(15, 10, 0), true, "open", at(16, 9, 15)},
		{"pre-open", at(15, 9, 5), false, "pre-open", mondayOpen},
		{"before pre-open", at(15, 8, 0), false, "closed", mondayOpen},
		{"at close", at(15, 15, 30), false, "closed", at(16, 9, 15)},
		{"friday evening", at(19, 16, 0), false, "closed", mondayOpen.AddDate(0, 0, 7)},
		{"saturday", at(20, 11, 0), false, "closed", mondayOpen.AddDate(0, 0, 7)},
		{"sunday", at(14, 11, 0), false, "closed", mondayOpen},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := nseStatus(tc.now.UTC())
			assert.Equal(t, "NSE", st.Exchange)
			assert.Equal(t, tc.open, st.IsOpen)
			assert.Equal(t, tc.session, st.Session)
			assert.True(t, tc.next.Equal(st.NextOpen), "next open %s", st.NextOpen)
		})
	}
}
