package prediction

import (
	"context"
	"math/rand"
	"sort"

	"MarketDash/internal/domain/models"
	"MarketDash/internal/services/features"
	"MarketDash/internal/services/indicators"
)

const (
	minLeaf       = 5
	maxThresholds = 16
)

// EnsembleModel is a bag of regression trees. Bootstrap samples are drawn
// from a fixed seed so identical input yields identical output.
type EnsembleModel struct {
	Trees    int
	MaxDepth int
	Seed     int64
}

func NewEnsembleModel(trees, depth int, seed int64) *EnsembleModel {
	if trees <= 0 {
		trees = 25
	}
	if depth <= 0 {
		depth = 4
	}
	return &EnsembleModel{Trees: trees, MaxDepth: depth, Seed: seed}
}

func (m *EnsembleModel) Kind() models.ModelKind { return models.ModelEnsemble }

func (m *EnsembleModel) Predict(ctx context.Context, set *features.Set) (ModelOutput, error) {
	return evaluate(ctx, m.Kind(), m, set)
}

type node struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *node
	right     *node
}

func (n *node) predict(x []float64) float64 {
	for !n.leaf {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

type forest []*node

func (f forest) predict(x []float64) float64 {
	return indicators.Mean(f.each(x))
}

func (f forest) spread(x []float64) float64 {
	return indicators.StdDev(f.each(x))
}

func (f forest) each(x []float64) []float64 {
	out := make([]float64, len(f))
	for i, t := range f {
		out[i] = t.predict(x)
	}
	return out
}

func (m *EnsembleModel) fit(ctx context.Context, x [][]float64, y []float64) (predictor, error) {
	rng := rand.New(rand.NewSource(m.Seed))
	trees := make(forest, 0, m.Trees)
	n := len(x)
	for t := 0; t < m.Trees; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		trees = append(trees, grow(x, y, idx, m.MaxDepth))
	}
	return trees, nil
}

func grow(x [][]float64, y []float64, idx []int, depth int) *node {
	mean := 0.0
	for _, i := range idx {
		mean += y[i]
	}
	mean /= float64(len(idx))
	if depth == 0 || len(idx) < 2*minLeaf {
		return &node{leaf: true, value: mean}
	}

	bestFeature, bestThreshold := -1, 0.0
	bestSSE := sse(y, idx, mean)
	for f := range x[idx[0]] {
		for _, th := range thresholds(x, idx, f) {
			var nl, nr int
			var sl, sr float64
			for _, i := range idx {
				if x[i][f] <= th {
					nl++
					sl += y[i]
				} else {
					nr++
					sr += y[i]
				}
			}
			if nl < minLeaf || nr < minLeaf {
				continue
			}
			ml, mr := sl/float64(nl), sr/float64(nr)
			var s float64
			for _, i := range idx {
				if x[i][f] <= th {
					s += (y[i] - ml) * (y[i] - ml)
				} else {
					s += (y[i] - mr) * (y[i] - mr)
				}
			}
			if s < bestSSE-1e-15 {
				bestFeature, bestThreshold, bestSSE = f, th, s
			}
		}
	}
	if bestFeature < 0 {
		return &node{leaf: true, value: mean}
	}

	var left, right []int
	for _, i := range idx {
		if x[i][bestFeature] <= bestThreshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &node{
		feature:   bestFeature,
		threshold: bestThreshold,
		left:      grow(x, y, left, depth-1),
		right:     grow(x, y, right, depth-1),
	}
}

// thresholds returns up to maxThresholds midpoints between distinct sorted
// values of feature f, spread evenly over the quantiles.
func thresholds(x [][]float64, idx []int, f int) []float64 {
	vals := make([]float64, 0, len(idx))
	for _, i := range idx {
		vals = append(vals, x[i][f])
	}
	sort.Float64s(vals)
	uniq := vals[:1]
	for _, v := range vals[1:] {
		if v != uniq[len(uniq)-1] {
			uniq = append(uniq, v)
		}
	}
	if len(uniq) < 2 {
		return nil
	}
	step := 1
	if len(uniq)-1 > maxThresholds {
		step = (len(uniq) - 1) / maxThresholds
	}
	var out []float64
	for i := 0; i+1 < len(uniq); i += step {
		out = append(out, (uniq[i]+uniq[i+1])/2)
	}
	return out
}

func sse(y []float64, idx []int, mean float64) float64 {
	s := 0.0
	for _, i := range idx {
		d := y[i] - mean
		s += d * d
	}
	return s
}
