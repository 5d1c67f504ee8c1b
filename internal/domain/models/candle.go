package models

import "time"

// Candle sources.
const (
	SourceProvider  = "yahoo"
	SourceStore     = "store"
	SourceSynthetic = "synthetic"
)

// Candle is one OHLCV bar. Candles are immutable once stored and identified
// by (Symbol, Timeframe, Timestamp).
type Candle struct {
	Symbol    string    `json:"symbol" db:"symbol"`
	Timeframe Timeframe `json:"timeframe" db:"timeframe"`
	Timestamp time.Time `json:"timestamp" db:"ts"`
	Open      float64   `json:"open" db:"open"`
	High      float64   `json:"high" db:"high"`
	Low       float64   `json:"low" db:"low"`
	Close     float64   `json:"close" db:"close"`
	Volume    float64   `json:"volume" db:"volume"`
	Source    string    `json:"source" db:"source"`
}

// Synthetic reports whether the candle was generated rather than observed.
func (c Candle) Synthetic() bool { return c.Source == SourceSynthetic }

// AnySynthetic reports whether any candle in the series was generated.
// Results derived from such a series are never stored.
func AnySynthetic(candles []Candle) bool {
	for _, c := range candles {
		if c.Synthetic() {
			return true
		}
	}
	return false
}

// Closed reports whether the bar's interval has ended by now. The last bar of
// a live series is still forming and its OHLCV will change.
func (c Candle) Closed(now time.Time) bool {
	return !c.Timestamp.Add(c.Timeframe.Duration()).After(now)
}

// CandleSeries is a response wrapper for historical queries.
type CandleSeries struct {
	Symbol    string    `json:"symbol"`
	Timeframe Timeframe `json:"timeframe"`
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
	Count     int       `json:"count"`
	Synthetic bool      `json:"synthetic,omitempty"`
	Candles   []Candle  `json:"candles"`
}

// MarketStatus describes whether the exchange session is open.
type MarketStatus struct {
	Exchange  string    `json:"exchange"`
	IsOpen    bool      `json:"is_open"`
	Session   string    `json:"session"`
	LocalTime time.Time `json:"local_time"`
	NextOpen  time.Time `json:"next_open"`
}

// MultiQuote is the watchlist response. Symbols that could not be quoted are
// listed in Errors with a short reason instead of failing the whole request.
type MultiQuote struct {
	Timeframe   Timeframe         `json:"timeframe"`
	Quotes      map[string]Candle `json:"quotes"`
	Errors      map[string]string `json:"errors,omitempty"`
	Count       int               `json:"count"`
	GeneratedAt time.Time         `json:"timestamp"`
}
