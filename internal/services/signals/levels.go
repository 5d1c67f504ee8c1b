package signals

import (
	"fmt"
	"math"
	"sort"

	"MarketDash/internal/domain"
	"MarketDash/internal/domain/models"
	"MarketDash/internal/services/indicators"
)

const (
	DefaultLevelLookback = 50
	PivotWindow          = 5
	ClusterTolerance     = 0.02
	MaxLevels            = 3
)

// Levels finds support levels below and resistance levels above the latest
// close. Candidates are pivot highs/lows over the trailing lookback bars plus
// the 20 and 50 bar SMAs; candidates within ClusterTolerance of each other
// merge into their mean. Supports are nearest first (descending), resistances
// nearest first (ascending), at most MaxLevels each.
func Levels(candles []models.Candle, lookback int) (support, resistance []float64, err error) {
	if lookback <= 0 {
		lookback = DefaultLevelLookback
	}
	if len(candles) < 2*PivotWindow+1 {
		return nil, nil, fmt.Errorf("support/resistance needs %d candles, have %d: %w",
			2*PivotWindow+1, len(candles), domain.ErrInsufficientData)
	}

	window := candles
	if len(window) > lookback {
		window = window[len(window)-lookback:]
	}
	price := candles[len(candles)-1].Close

	candidates := pivots(window)
	closes := indicators.Closes(candles)
	for _, p := range []int{indicators.MAShort, indicators.MALong} {
		if sma, err := indicators.SMA(closes, p); err == nil {
			candidates = append(candidates, sma)
		}
	}

	for _, lvl := range cluster(candidates) {
		switch {
		case lvl < price:
			support = append(support, round2(lvl))
		case lvl > price:
			resistance = append(resistance, round2(lvl))
		}
	}

	// fall back to the window extremes when no pivot brackets the price
	if len(support) == 0 {
		if lo := minLow(window); lo < price {
			support = append(support, round2(lo))
		}
	}
	if len(resistance) == 0 {
		if hi := maxHigh(window); hi > price {
			resistance = append(resistance, round2(hi))
		}
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(support)))
	sort.Float64s(resistance)
	return head(support), head(resistance), nil
}

func pivots(window []models.Candle) []float64 {
	var out []float64
	for i := PivotWindow; i < len(window)-PivotWindow; i++ {
		isHigh, isLow := true, true
		for j := i - PivotWindow; j <= i+PivotWindow; j++ {
			if j == i {
				continue
			}
			if window[j].High > window[i].High {
				isHigh = false
			}
			if window[j].Low < window[i].Low {
				isLow = false
			}
		}
		if isHigh {
			out = append(out, window[i].High)
		}
		if isLow {
			out = append(out, window[i].Low)
		}
	}
	return out
}

// cluster merges sorted candidates whose distance from the first member of
// their group is within ClusterTolerance.
func cluster(levels []float64) []float64 {
	if len(levels) == 0 {
		return nil
	}
	sorted := append([]float64(nil), levels...)
	sort.Float64s(sorted)

	var out []float64
	group := []float64{sorted[0]}
	for _, v := range sorted[1:] {
		base := group[0]
		if base > 0 && (v-base)/base <= ClusterTolerance {
			group = append(group, v)
			continue
		}
		out = append(out, indicators.Mean(group))
		group = []float64{v}
	}
	return append(out, indicators.Mean(group))
}

func minLow(cs []models.Candle) float64 {
	lo := math.Inf(1)
	for _, c := range cs {
		lo = math.Min(lo, c.Low)
	}
	return lo
}

func maxHigh(cs []models.Candle) float64 {
	hi := math.Inf(-1)
	for _, c := range cs {
		hi = math.Max(hi, c.High)
	}
	return hi
}

func head(levels []float64) []float64 {
	if len(levels) > MaxLevels {
		return levels[:MaxLevels]
	}
	return levels
}
