package yahoo

import (
	"math"
	"sort"
	"time"

	"MarketDash/internal/domain/models"
)

// chartResponse is the subset of /v8/finance/chart we read. Every OHLCV
// element may be null.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Currency string `json:"currency"`
		Timezone string `json:"exchangeTimezoneName"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// candles converts a chart result to candles sorted by timestamp with
// duplicates and incomplete rows removed.
func (r *chartResult) candles(symbol string, tf models.Timeframe) []models.Candle {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	q := r.Indicators.Quote[0]
	at := func(s []*float64, i int) (float64, bool) {
		if i >= len(s) || s[i] == nil || math.IsNaN(*s[i]) || math.IsInf(*s[i], 0) {
			return 0, false
		}
		return *s[i], true
	}

	out := make([]models.Candle, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		o, ok1 := at(q.Open, i)
		h, ok2 := at(q.High, i)
		l, ok3 := at(q.Low, i)
		c, ok4 := at(q.Close, i)
		if !ok1 || !ok2 || !ok3 || !ok4 || c <= 0 {
			continue
		}
		v, _ := at(q.Volume, i)
		out = append(out, models.Candle{
			Symbol:    symbol,
			Timeframe: tf,
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      o,
			High:      h,
			Low:       l,
			Close:     c,
			Volume:    v,
			Source:    models.SourceProvider,
		})
	}
	return Normalize(out)
}

// Normalize sorts candles ascending and keeps the last row per timestamp.
func Normalize(candles []models.Candle) []models.Candle {
	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})
	out := candles[:0]
	for _, c := range candles {
		if n := len(out); n > 0 && out[n-1].Timestamp.Equal(c.Timestamp) {
			out[n-1] = c
			continue
		}
		out = append(out, c)
	}
	return out
}
