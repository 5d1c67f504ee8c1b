package prediction

import (
	"context"
	"math"

	"MarketDash/internal/domain/models"
	"MarketDash/internal/services/features"
	"MarketDash/internal/services/indicators"
)

// KernelModel is Nadaraya-Watson regression with an RBF kernel on
// standardized features.
type KernelModel struct {
	// Bandwidth overrides the Scott's rule default when positive.
	Bandwidth float64
}

func NewKernelModel() *KernelModel { return &KernelModel{} }

func (m *KernelModel) Kind() models.ModelKind { return models.ModelKernel }

func (m *KernelModel) Predict(ctx context.Context, set *features.Set) (ModelOutput, error) {
	return evaluate(ctx, m.Kind(), m, set)
}

type kernelFit struct {
	x     [][]float64
	y     []float64
	mean  []float64
	scale []float64
	h     float64
	yMean float64
}

func (m *KernelModel) fit(_ context.Context, x [][]float64, y []float64) (predictor, error) {
	p := len(x[0])
	n := len(x)
	mean := make([]float64, p)
	scale := make([]float64, p)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		for i := range x {
			col[i] = x[i][j]
		}
		mean[j] = indicators.Mean(col)
		scale[j] = indicators.StdDev(col)
		if scale[j] == 0 {
			scale[j] = 1
		}
	}

	z := make([][]float64, n)
	for i, row := range x {
		z[i] = standardize(row, mean, scale)
	}

	h := m.Bandwidth
	if h <= 0 {
		h = math.Sqrt(float64(p)) * math.Pow(float64(n), -1/float64(p+4))
	}
	return &kernelFit{x: z, y: y, mean: mean, scale: scale, h: h, yMean: indicators.Mean(y)}, nil
}

func (f *kernelFit) predict(row []float64) float64 {
	q := standardize(row, f.mean, f.scale)
	dist := make([]float64, len(f.x))
	minD := math.Inf(1)
	for i, xi := range f.x {
		d := 0.0
		for j := range q {
			diff := q[j] - xi[j]
			d += diff * diff
		}
		dist[i] = d
		minD = math.Min(minD, d)
	}

	// shifting by the nearest distance keeps exp from underflowing to zero
	var num, den float64
	for i, d := range dist {
		w := math.Exp(-(d - minD) / (2 * f.h * f.h))
		num += w * f.y[i]
		den += w
	}
	if den == 0 {
		return f.yMean
	}
	return num / den
}

func standardize(row, mean, scale []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - mean[j]) / scale[j]
	}
	return out
}
