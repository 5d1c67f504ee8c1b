package features

import (
	"math"
	"testing"
	"time"

	"MarketDash/internal/domain"
	"MarketDash/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(n int, f func(i int) float64) []models.Candle {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, n)
	for i := range out {
		c := f(i)
		out[i] = models.Candle{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c * 0.995,
			High:      c * 1.01,
			Low:       c * 0.99,
			Close:     c,
			Volume:    1000,
		}
	}
	return out
}

func TestBuildShape(t *testing.T) {
	candles := series(100, func(i int) float64 { return 100 * math.Pow(1.01, float64(i)) })
	set, err := Build(candles, 5)
	require.NoError(t, err)

	assert.Len(t, set.X, 100-Warmup-5)
	assert.Len(t, set.Y, len(set.X))
	assert.Len(t, set.Latest, len(Names))
	for _, row := range set.X {
		assert.Len(t, row, len(Names))
	}
	assert.Equal(t, candles[99].Close, set.LastClose)

	// constant 1% growth: every lagged return and every target is known exactly
	for k := 0; k < Lags; k++ {
		assert.InDelta(t, 0.01, set.Latest[k], 1e-9)
	}
	assert.InDelta(t, math.Pow(1.01, 5)-1, set.Y[0], 1e-9)
	assert.InDelta(t, 1.0, set.Latest[10], 1e-9, "rsi/100 of a rising series")
	assert.InDelta(t, 0.0, set.Latest[11], 1e-9, "flat volume")
}

func TestBuildNeedsCandles(t *testing.T) {
	_, err := Build(series(MinCandles-1, func(int) float64 { return 10 }), 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)

	_, err = Build(series(MinCandles, func(int) float64 { return 10 }), 0)
	assert.Error(t, err)
}

func TestBuildFlatSeriesIsFinite(t *testing.T) {
	set, err := Build(series(80, func(int) float64 { return 42 }), 1)
	require.NoError(t, err)
	for _, row := range append(set.X, set.Latest) {
		for _, v := range row {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
		}
	}
	assert.InDelta(t, 0.5, set.Latest[10], 1e-12)
}

func TestComputeLogReturns(t *testing.T) {
	assert.Nil(t, ComputeLogReturns(nil))
	r := ComputeLogReturns(series(3, func(i int) float64 { return []float64{100, 110, 0}[i] }))
	require.Len(t, r, 2)
	assert.InDelta(t, math.Log(1.1), r[0], 1e-12)
	assert.Equal(t, 0.0, r[1])
}
