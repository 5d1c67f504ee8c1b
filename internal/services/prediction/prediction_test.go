package prediction

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"MarketDash/internal/domain"
	"MarketDash/internal/domain/models"
	"MarketDash/internal/services/features"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walk(seed int64, n int) []models.Candle {
	r := rand.New(rand.NewSource(seed))
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, n)
	p := 2500.0
	for i := range out {
		open := p
		p *= 1 + 0.0005 + r.NormFloat64()*0.015
		out[i] = models.Candle{
			Symbol:    "RELIANCE",
			Timeframe: models.TF1D,
			Timestamp: start.AddDate(0, 0, i),
			Open:      open,
			High:      math.Max(open, p) * (1 + r.Float64()*0.01),
			Low:       math.Min(open, p) * (1 - r.Float64()*0.01),
			Close:     p,
			Volume:    1e6 * (0.5 + r.Float64()),
			Source:    models.SourceProvider,
		}
	}
	return out
}

func newService() *Service {
	return NewService(Config{DefaultModel: models.ModelEnsemble, Trees: 15, TreeDepth: 3, Seed: 42})
}

func TestPredictAllModels(t *testing.T) {
	svc := newService()
	candles := walk(1, 250)
	for _, kind := range models.ModelKinds {
		for _, h := range []models.Horizon{models.HorizonShort, models.HorizonMedium, models.HorizonLong} {
			p, err := svc.Predict(context.Background(), kind, "RELIANCE", models.TF1D, h, candles)
			require.NoError(t, err, "%s/%s", kind, h)

			assert.Equal(t, kind, p.ModelUsed)
			assert.Equal(t, h, p.TimeHorizon)
			assert.GreaterOrEqual(t, p.ConfidenceScore, 0.0)
			assert.LessOrEqual(t, p.ConfidenceScore, 1.0)
			assert.Greater(t, p.PredictedPrice, 0.0)
			assert.InDelta(t, candles[len(candles)-1].Close, p.CurrentPrice, 0.006)
			// a forecast far outside the recent range means the fit blew up
			assert.InDelta(t, p.CurrentPrice, p.PredictedPrice, p.CurrentPrice*0.5)
		}
	}
}

func TestEnsembleIsDeterministic(t *testing.T) {
	candles := walk(2, 200)
	a, err := newService().Predict(context.Background(), models.ModelEnsemble, "TCS", models.TF1D, models.HorizonShort, candles)
	require.NoError(t, err)
	b, err := newService().Predict(context.Background(), models.ModelEnsemble, "TCS", models.TF1D, models.HorizonShort, candles)
	require.NoError(t, err)

	assert.Equal(t, a.PredictedPrice, b.PredictedPrice)
	assert.Equal(t, a.ConfidenceScore, b.ConfidenceScore)
}

func TestDefaultModel(t *testing.T) {
	svc := NewService(Config{DefaultModel: "bogus"})
	assert.Equal(t, models.ModelEnsemble, svc.DefaultModel())

	p, err := svc.Predict(context.Background(), "", "TCS", models.TF1D, models.HorizonShort, walk(3, 120))
	require.NoError(t, err)
	assert.Equal(t, models.ModelEnsemble, p.ModelUsed)

	_, err = svc.Predict(context.Background(), "lstm", "TCS", models.TF1D, models.HorizonShort, walk(3, 120))
	assert.Error(t, err)
}

func TestInsufficientCandles(t *testing.T) {
	_, err := newService().Predict(context.Background(), models.ModelKernel, "TCS", models.TF1D, models.HorizonShort, walk(4, features.MinCandles-1))
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestMinimumCandlesLongHorizon(t *testing.T) {
	for _, kind := range models.ModelKinds {
		_, err := newService().Predict(context.Background(), kind, "TCS", models.TF1D, models.HorizonLong, walk(5, features.MinCandles))
		assert.NoError(t, err, kind)
	}
}

func TestEvaluate(t *testing.T) {
	report, err := newService().Evaluate(context.Background(), "INFY", models.TF1D, models.HorizonMedium, walk(6, 300))
	require.NoError(t, err)

	require.Len(t, report.Models, len(models.ModelKinds))
	assert.Contains(t, models.ModelKinds, report.Best)
	for _, m := range report.Models {
		assert.GreaterOrEqual(t, m.MSE, 0.0)
		assert.GreaterOrEqual(t, m.DirectionalAccuracy, 0.0)
		assert.LessOrEqual(t, m.DirectionalAccuracy, 1.0)
		assert.Equal(t, m.TrainRows+m.ValidationRows, 300-features.Warmup-models.HorizonMedium.Bars())
	}
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, 1.0, confidence(0, 0))
	assert.Equal(t, 0.0, confidence(1, 0))
	assert.InDelta(t, 0.5, confidence(2, 2), 1e-12)
	assert.InDelta(t, 1.0, confidence(0, 3), 1e-12)
}

func TestSolve(t *testing.T) {
	a := [][]float64{{2, 1}, {1, 3}}
	b := []float64{3, 5}
	x, err := solve(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, x[0], 1e-12)
	assert.InDelta(t, 1.4, x[1], 1e-12)

	_, err = solve([][]float64{{0, 0}, {0, 0}}, []float64{1, 1})
	assert.Error(t, err)
}

func TestTreeFitsStep(t *testing.T) {
	var x [][]float64
	var y []float64
	for i := 0; i < 40; i++ {
		v := float64(i)
		x = append(x, []float64{v})
		if i < 20 {
			y = append(y, -1)
		} else {
			y = append(y, 1)
		}
	}
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	tree := grow(x, y, idx, 2)
	assert.InDelta(t, -1, tree.predict([]float64{3}), 1e-12)
	assert.InDelta(t, 1, tree.predict([]float64{35}), 1e-12)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newService().Predict(ctx, models.ModelEnsemble, "TCS", models.TF1D, models.HorizonShort, walk(7, 120))
	assert.ErrorIs(t, err, context.Canceled)
}
