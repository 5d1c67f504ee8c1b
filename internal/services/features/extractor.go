package features

import (
	"fmt"
	"math"

	"MarketDash/internal/domain"
	"MarketDash/internal/domain/models"
	"MarketDash/internal/services/indicators"
)

const (
	// Warmup is the number of leading bars consumed by the longest lookback.
	Warmup = 20
	// MinCandles is the shortest series a prediction accepts.
	MinCandles = 60
	// Lags is the number of lagged one-bar returns per row.
	Lags = 5
)

// Names lists feature columns in row order. The first Lags columns are the
// lagged one-bar returns (most recent first).
var Names = []string{
	"ret_lag1", "ret_lag2", "ret_lag3", "ret_lag4", "ret_lag5",
	"ret_5bar",
	"range",
	"body",
	"sma10_gap",
	"sma20_gap",
	"rsi",
	"volume_ratio",
	"volatility_10",
}

// Set is a design matrix for one symbol/timeframe/horizon.
type Set struct {
	Names []string
	// X and Y hold rows whose forward return is known.
	X [][]float64
	Y []float64
	// Latest is the feature row for the most recent bar.
	Latest    []float64
	LastClose float64
	Horizon   int
}

// Build turns candles into a feature set whose target is the forward simple
// return over horizon bars: close[t+h]/close[t] - 1.
func Build(candles []models.Candle, horizon int) (*Set, error) {
	if horizon <= 0 {
		return nil, fmt.Errorf("features: invalid horizon %d", horizon)
	}
	n := len(candles)
	if n < MinCandles {
		return nil, fmt.Errorf("features need %d candles, have %d: %w", MinCandles, n, domain.ErrInsufficientData)
	}
	if n-horizon <= Warmup+1 {
		return nil, fmt.Errorf("features: horizon %d leaves no training rows: %w", horizon, domain.ErrInsufficientData)
	}

	closes := indicators.Closes(candles)
	rsi, err := indicators.RSISeries(closes, indicators.RSIPeriod)
	if err != nil {
		return nil, err
	}
	logRet := ComputeLogReturns(candles)

	row := func(t int) []float64 {
		c := candles[t]
		f := make([]float64, 0, len(Names))
		for k := 0; k < Lags; k++ {
			f = append(f, simpleReturn(closes[t-k-1], closes[t-k]))
		}
		f = append(f, simpleReturn(closes[t-5], closes[t]))
		f = append(f, safeDiv(c.High-c.Low, c.Close))
		f = append(f, safeDiv(c.Close-c.Open, c.Close))
		f = append(f, safeDiv(c.Close, indicators.Mean(closes[t-9:t+1]))-1)
		f = append(f, safeDiv(c.Close, indicators.Mean(closes[t-19:t+1]))-1)
		f = append(f, rsi[t-indicators.RSIPeriod]/100)
		f = append(f, volumeRatio(candles[t-9:t+1]))
		f = append(f, indicators.StdDev(logRet[t-10:t]))
		for i, v := range f {
			if !isFinite(v) {
				f[i] = 0
			}
		}
		return f
	}

	set := &Set{
		Names:     Names,
		Horizon:   horizon,
		LastClose: closes[n-1],
		Latest:    row(n - 1),
	}
	for t := Warmup; t+horizon < n; t++ {
		set.X = append(set.X, row(t))
		set.Y = append(set.Y, simpleReturn(closes[t], closes[t+horizon]))
	}
	return set, nil
}

// ComputeLogReturns computes log returns r_t = ln(C_t / C_{t-1}).
// It returns a slice of length len(candles)-1, or nil if insufficient data.
func ComputeLogReturns(candles []models.Candle) []float64 {
	if len(candles) < 2 {
		return nil
	}
	out := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		cur := candles[i].Close
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

func simpleReturn(from, to float64) float64 {
	if from <= 0 {
		return 0
	}
	return to/from - 1
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func volumeRatio(window []models.Candle) float64 {
	sum := 0.0
	for _, c := range window {
		sum += c.Volume
	}
	avg := sum / float64(len(window))
	if avg <= 0 {
		return 0
	}
	return window[len(window)-1].Volume/avg - 1
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
