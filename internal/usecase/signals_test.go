package usecase

import (
	"context"
	"errors"
	"testing"

	"MarketDash/internal/domain/models"
	"MarketDash/internal/services/signals"
	"MarketDash/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCandles struct {
	candles []models.Candle
	err     error
	calls   int
	lastN   int
}

func (s *staticCandles) RecentCandles(_ context.Context, _ string, _ models.Timeframe, n int) ([]models.Candle, error) {
	s.calls++
	s.lastN = n
	if s.err != nil {
		return nil, s.err
	}
	return s.candles, nil
}

func newSignals(t *testing.T, src CandleSource, store *fakeSignalStore, pub *fakePublisher) *SignalsUseCase {
	t.Helper()
	c := cache.NewMemoryCache()
	t.Cleanup(func() { _ = c.Close() })
	return NewSignalsUseCase(src, signals.NewGenerator(signals.Config{}), store, pub, c, nil, nil, SignalsConfig{})
}

func TestGenerateSignalStoresAndPublishes(t *testing.T) {
	src := &staticCandles{candles: series(geometric(60, 100, 0.01), models.SourceProvider)}
	store := &fakeSignalStore{}
	pub := &fakePublisher{}
	uc := newSignals(t, src, store, pub)

	sig, err := uc.Generate(context.Background(), "RELIANCE", models.TF1D)
	require.NoError(t, err)
	assert.Equal(t, models.SignalBuy, sig.SignalType)
	assert.Equal(t, int64(1), sig.ID)
	assert.NotEmpty(t, sig.Reasoning)
	assert.Len(t, store.created, 1)
	assert.Equal(t, 1, pub.signals)
	assert.Equal(t, 200, src.lastN)

	list, err := uc.List(context.Background(), "RELIANCE", "", 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGenerateSignalFromSyntheticIsNotStored(t *testing.T) {
	src := &staticCandles{candles: series(geometric(60, 100, 0.01), models.SourceSynthetic)}
	store := &fakeSignalStore{}
	pub := &fakePublisher{}
	uc := newSignals(t, src, store, pub)

	sig, err := uc.Generate(context.Background(), "RELIANCE", models.TF1D)
	require.NoError(t, err)
	assert.True(t, sig.Synthetic)
	assert.Zero(t, sig.ID)
	assert.Empty(t, store.created)
	assert.Zero(t, pub.signals)
}

func TestGenerateSignalStoreFailure(t *testing.T) {
	src := &staticCandles{candles: series(geometric(60, 100, 0.01), models.SourceProvider)}
	pub := &fakePublisher{}
	uc := newSignals(t, src, &fakeSignalStore{err: errors.New("db down")}, pub)

	_, err := uc.Generate(context.Background(), "RELIANCE", models.TF1D)
	assert.Error(t, err)
	assert.Zero(t, pub.signals)
}

func TestGenerateSignalIgnoresPublishFailure(t *testing.T) {
	src := &staticCandles{candles: series(geometric(60, 100, 0.01), models.SourceProvider)}
	uc := newSignals(t, src, &fakeSignalStore{}, &fakePublisher{err: errors.New("broker down")})

	_, err := uc.Generate(context.Background(), "RELIANCE", models.TF1D)
	assert.NoError(t, err)
}

func TestGenerateSignalPropagatesFetchError(t *testing.T) {
	fetchErr := errors.New("upstream")
	uc := newSignals(t, &staticCandles{err: fetchErr}, &fakeSignalStore{}, &fakePublisher{})

	_, err := uc.Generate(context.Background(), "RELIANCE", models.TF1D)
	assert.ErrorIs(t, err, fetchErr)
}

func TestTechnicalAnalysisIsCached(t *testing.T) {
	src := &staticCandles{candles: series(walk(120, 3), models.SourceProvider)}
	uc := newSignals(t, src, &fakeSignalStore{}, &fakePublisher{})

	a, err := uc.TechnicalAnalysis(context.Background(), "RELIANCE", models.TF1D)
	require.NoError(t, err)
	b, err := uc.TechnicalAnalysis(context.Background(), "RELIANCE", models.TF1D)
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	require.NotNil(t, a.RSI)
	require.NotNil(t, b.RSI)
	assert.InDelta(t, *a.RSI, *b.RSI, 1e-9)
	assert.Len(t, a.Votes, 4)
}

func TestSupportResistanceWindow(t *testing.T) {
	src := &staticCandles{candles: series(walk(120, 5), models.SourceProvider)}
	uc := newSignals(t, src, &fakeSignalStore{}, &fakePublisher{})

	sr, err := uc.SupportResistance(context.Background(), "RELIANCE", models.TF1D, 0)
	require.NoError(t, err)
	assert.Equal(t, signals.DefaultLevelLookback, src.lastN)
	assert.LessOrEqual(t, len(sr.Support), signals.MaxLevels)
	assert.LessOrEqual(t, len(sr.Resistance), signals.MaxLevels)
	for _, s := range sr.Support {
		assert.LessOrEqual(t, s, sr.CurrentPrice)
	}

	_, err = uc.SupportResistance(context.Background(), "RELIANCE", models.TF1D, 20)
	require.NoError(t, err)
	assert.Equal(t, 50, src.lastN)
}
