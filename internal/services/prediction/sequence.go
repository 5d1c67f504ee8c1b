package prediction

import (
	"context"
	"errors"
	"math"

	"MarketDash/internal/domain/models"
	"MarketDash/internal/services/features"
)

// SequenceModel is a ridge autoregression over the lagged return columns.
type SequenceModel struct {
	// Lambda is the ridge penalty relative to the mean diagonal of X'X.
	Lambda float64
}

func NewSequenceModel() *SequenceModel {
	return &SequenceModel{Lambda: 0.1}
}

func (m *SequenceModel) Kind() models.ModelKind { return models.ModelSequence }

func (m *SequenceModel) Predict(ctx context.Context, set *features.Set) (ModelOutput, error) {
	return evaluate(ctx, m.Kind(), m, set)
}

type ridgeFit struct {
	beta  []float64
	xMean []float64
	yMean float64
}

func (m *SequenceModel) fit(_ context.Context, x [][]float64, y []float64) (predictor, error) {
	p := features.Lags
	n := len(x)

	xMean := make([]float64, p)
	for _, row := range x {
		for j := 0; j < p; j++ {
			xMean[j] += row[j]
		}
	}
	for j := range xMean {
		xMean[j] /= float64(n)
	}
	yMean := 0.0
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(n)

	// normal equations on centered data; the intercept is yMean
	a := make([][]float64, p)
	for i := range a {
		a[i] = make([]float64, p)
	}
	b := make([]float64, p)
	for r, row := range x {
		for i := 0; i < p; i++ {
			xi := row[i] - xMean[i]
			b[i] += xi * (y[r] - yMean)
			for j := 0; j < p; j++ {
				a[i][j] += xi * (row[j] - xMean[j])
			}
		}
	}
	diag := 0.0
	for i := 0; i < p; i++ {
		diag += a[i][i]
	}
	penalty := m.Lambda * diag / float64(p)
	if penalty <= 0 {
		penalty = 1e-12
	}
	for i := 0; i < p; i++ {
		a[i][i] += penalty
	}

	beta, err := solve(a, b)
	if err != nil {
		return nil, err
	}
	return &ridgeFit{beta: beta, xMean: xMean, yMean: yMean}, nil
}

func (f *ridgeFit) predict(x []float64) float64 {
	out := f.yMean
	for j, b := range f.beta {
		out += b * (x[j] - f.xMean[j])
	}
	return out
}

var errSingular = errors.New("singular system")

// solve runs Gaussian elimination with partial pivoting. a and b are modified.
func solve(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-300 {
			return nil, errSingular
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for r := col + 1; r < n; r++ {
			f := a[r][col] / a[col][col]
			for c := col; c < n; c++ {
				a[r][c] -= f * a[col][c]
			}
			b[r] -= f * b[col]
		}
	}

	out := make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		s := b[r]
		for c := r + 1; c < n; c++ {
			s -= a[r][c] * out[c]
		}
		out[r] = s / a[r][r]
	}
	return out, nil
}
