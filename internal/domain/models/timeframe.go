package models

import (
	"math"
	"strings"
	"time"
)

// Timeframe represents candle resolution.
type Timeframe string

const (
	TF1m  Timeframe = "1m"
	TF5m  Timeframe = "5m"
	TF15m Timeframe = "15m"
	TF1H  Timeframe = "1H"
	TF1D  Timeframe = "1D"
	TF1W  Timeframe = "1W"
)

// Timeframes lists every supported timeframe, shortest first.
var Timeframes = []Timeframe{TF1m, TF5m, TF15m, TF1H, TF1D, TF1W}

// DefaultTimeframe returns the default timeframe.
func DefaultTimeframe() Timeframe { return TF1D }

// ParseTimeframe accepts the canonical names case-insensitively plus the
// provider spellings (1h, 1d, 1wk).
func ParseTimeframe(s string) (Timeframe, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1m":
		return TF1m, true
	case "5m":
		return TF5m, true
	case "15m":
		return TF15m, true
	case "1h", "60m":
		return TF1H, true
	case "1d":
		return TF1D, true
	case "1w", "1wk":
		return TF1W, true
	}
	return "", false
}

// NormalizeTimeframe converts raw string to a valid timeframe (or default).
func NormalizeTimeframe(s string) Timeframe {
	if tf, ok := ParseTimeframe(s); ok {
		return tf
	}
	return DefaultTimeframe()
}

// Valid reports whether tf is one of the supported values.
func (tf Timeframe) Valid() bool {
	for _, v := range Timeframes {
		if v == tf {
			return true
		}
	}
	return false
}

// Duration is the nominal length of one bar.
func (tf Timeframe) Duration() time.Duration {
	switch tf {
	case TF1m:
		return time.Minute
	case TF5m:
		return 5 * time.Minute
	case TF15m:
		return 15 * time.Minute
	case TF1H:
		return time.Hour
	case TF1W:
		return 7 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Intraday reports whether bars are shorter than a trading session.
func (tf Timeframe) Intraday() bool {
	return tf.Duration() < 24*time.Hour
}

// barsPerTradingDay assumes a 6h15m NSE session.
func (tf Timeframe) barsPerTradingDay() float64 {
	switch tf {
	case TF1m:
		return 375
	case TF5m:
		return 75
	case TF15m:
		return 25
	case TF1H:
		return 7
	case TF1W:
		return 0.2
	default:
		return 1
	}
}

// MaxHistory is how far back the provider serves bars at this resolution.
func (tf Timeframe) MaxHistory() time.Duration {
	switch tf {
	case TF1m:
		return 7 * 24 * time.Hour
	case TF5m, TF15m:
		return 59 * 24 * time.Hour
	case TF1H:
		return 729 * 24 * time.Hour
	default:
		return 20 * 365 * 24 * time.Hour
	}
}

// LookbackFor returns a calendar window expected to contain at least n bars,
// allowing for weekends and holidays, capped at MaxHistory.
func (tf Timeframe) LookbackFor(n int) time.Duration {
	tradingDays := float64(n) / tf.barsPerTradingDay()
	calendarDays := math.Ceil(tradingDays*7/5*1.1) + 5
	d := time.Duration(calendarDays) * 24 * time.Hour
	if max := tf.MaxHistory(); d > max {
		return max
	}
	return d
}
