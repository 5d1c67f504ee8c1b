// Package indicators computes technical indicators over candles ordered
// oldest to newest. Every function either returns a finite value or
// domain.ErrInsufficientData; NaN and Inf never escape.
package indicators

import (
	"fmt"
	"math"

	"MarketDash/internal/domain"
	"MarketDash/internal/domain/models"
)

// Closes extracts close prices.
func Closes(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// Highs extracts high prices.
func Highs(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.High
	}
	return out
}

// Lows extracts low prices.
func Lows(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Low
	}
	return out
}

// Volumes extracts volumes.
func Volumes(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}

func insufficient(name string, need, have int) error {
	return fmt.Errorf("%s needs %d values, have %d: %w", name, need, have, domain.ErrInsufficientData)
}

// SMA returns the simple moving average of the last period values.
func SMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("sma: invalid period %d", period)
	}
	if len(values) < period {
		return 0, insufficient("sma", period, len(values))
	}
	return Mean(values[len(values)-period:]), nil
}

// SMASeries returns SMA values aligned to values[period-1:].
func SMASeries(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("sma: invalid period %d", period)
	}
	if len(values) < period {
		return nil, insufficient("sma", period, len(values))
	}
	out := make([]float64, 0, len(values)-period+1)
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out, nil
}

// EMASeries returns the exponential moving average seeded with the SMA of
// the first period values. The result is aligned to values[period-1:].
func EMASeries(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("ema: invalid period %d", period)
	}
	if len(values) < period {
		return nil, insufficient("ema", period, len(values))
	}
	alpha := 2.0 / float64(period+1)
	out := make([]float64, 0, len(values)-period+1)
	ema := Mean(values[:period])
	out = append(out, ema)
	for _, v := range values[period:] {
		ema += alpha * (v - ema)
		out = append(out, ema)
	}
	return out, nil
}

// EMA returns the latest exponential moving average.
func EMA(values []float64, period int) (float64, error) {
	s, err := EMASeries(values, period)
	if err != nil {
		return 0, err
	}
	return s[len(s)-1], nil
}

// Mean of values; 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev is the sample standard deviation (n-1 denominator).
func StdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := Mean(values)
	ss := 0.0
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// priceTolerance is the comparison slack for values in price units. It
// absorbs floating point noise so flat or linear series compare as equal.
func priceTolerance(price float64) float64 {
	return 1e-9 * math.Max(math.Abs(price), 1)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
