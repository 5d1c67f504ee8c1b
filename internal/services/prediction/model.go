// Package prediction forecasts forward returns from engineered features and
// converts them to price predictions with a hold-out confidence score.
package prediction

import (
	"context"
	"fmt"
	"math"

	"MarketDash/internal/domain"
	"MarketDash/internal/domain/models"
	"MarketDash/internal/services/features"
	"MarketDash/internal/services/indicators"
)

// holdoutFraction of the newest rows is used to score each model.
const holdoutFraction = 0.2

// minTrainRows keeps tree leaves and the ridge system meaningful.
const minTrainRows = 10

// ModelOutput is a forecast of the forward return for the latest bar.
type ModelOutput struct {
	Return     float64
	Confidence float64
	Metrics    models.ModelPerformance
}

// PriceModel predicts the forward return of the latest feature row.
type PriceModel interface {
	Kind() models.ModelKind
	Predict(ctx context.Context, set *features.Set) (ModelOutput, error)
}

// regressor is the fit step each model plugs into evaluate.
type regressor interface {
	fit(ctx context.Context, x [][]float64, y []float64) (predictor, error)
}

type predictor interface {
	predict(x []float64) float64
}

// dispersion is implemented by predictors that can report disagreement
// between their members for a row.
type dispersion interface {
	spread(x []float64) float64
}

// evaluate scores r on the hold-out split, then refits on every row and
// predicts set.Latest.
func evaluate(ctx context.Context, kind models.ModelKind, r regressor, set *features.Set) (ModelOutput, error) {
	n := len(set.X)
	nVal := int(math.Round(float64(n) * holdoutFraction))
	if nVal < 1 {
		nVal = 1
	}
	nTrain := n - nVal
	if nTrain < minTrainRows {
		return ModelOutput{}, fmt.Errorf("%s model needs %d training rows, have %d: %w",
			kind, minTrainRows, nTrain, domain.ErrInsufficientData)
	}

	p, err := r.fit(ctx, set.X[:nTrain], set.Y[:nTrain])
	if err != nil {
		return ModelOutput{}, fmt.Errorf("fit %s: %w", kind, err)
	}

	yVal := set.Y[nTrain:]
	var sse, sae float64
	hits := 0
	for i, x := range set.X[nTrain:] {
		pred := p.predict(x)
		d := pred - yVal[i]
		sse += d * d
		sae += math.Abs(d)
		if sameDirection(pred, yVal[i]) {
			hits++
		}
	}
	mse := sse / float64(nVal)
	perf := models.ModelPerformance{
		Model:               kind,
		MSE:                 mse,
		MAE:                 sae / float64(nVal),
		DirectionalAccuracy: float64(hits) / float64(nVal),
		Confidence:          confidence(mse, variance(yVal)),
		TrainRows:           nTrain,
		ValidationRows:      nVal,
	}

	full, err := r.fit(ctx, set.X, set.Y)
	if err != nil {
		return ModelOutput{}, fmt.Errorf("refit %s: %w", kind, err)
	}
	ret := full.predict(set.Latest)
	if !finite(ret) {
		ret = 0
	}

	conf := perf.Confidence
	if d, ok := full.(dispersion); ok {
		scale := indicators.StdDev(set.Y)
		if scale > 0 {
			conf /= 1 + d.spread(set.Latest)/scale
		}
	}
	perf.Confidence = clamp01(conf)
	return ModelOutput{Return: ret, Confidence: perf.Confidence, Metrics: perf}, nil
}

// confidence maps hold-out error to [0,1]: 1 / (1 + MSE / Var(y)).
func confidence(mse, v float64) float64 {
	const eps = 1e-12
	if v < eps {
		if mse < eps {
			return 1
		}
		return 0
	}
	return clamp01(1 / (1 + mse/v))
}

// variance is the population variance.
func variance(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	m := indicators.Mean(v)
	ss := 0.0
	for _, x := range v {
		ss += (x - m) * (x - m)
	}
	return ss / float64(len(v))
}

func sameDirection(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0) || (a == 0 && b == 0)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
