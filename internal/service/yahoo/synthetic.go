package yahoo

import (
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"time"

	"MarketDash/internal/domain/models"

	"github.com/shopspring/decimal"
)

var basePrices = map[string]float64{
	"NIFTY50":   19500,
	"NIFTY":     19500,
	"SENSEX":    65000,
	"BANKNIFTY": 44000,
	"RELIANCE":  2500,
	"TCS":       3500,
	"INFY":      1400,
	"HDFC":      1600,
	"HDFCBANK":  1650,
	"ICICIBANK": 950,
	"SBIN":      600,
	"TATASTEEL": 120,
	"WIPRO":     400,
}

// Synthetic produces a repeatable random walk for a symbol. Candles are
// tagged models.SourceSynthetic so callers never persist them.
type Synthetic struct{}

// History returns bars between from and to on the timeframe grid. Daily and
// weekly bars skip weekends.
func (Synthetic) History(symbol string, tf models.Timeframe, from, to time.Time) []models.Candle {
	step := tf.Duration()
	start := from.UTC().Truncate(step)
	rng := rand.New(rand.NewSource(seed(symbol, tf, start)))

	price := basePrice(symbol)
	var out []models.Candle
	for ts := start; !ts.After(to); ts = ts.Add(step) {
		if !tf.Intraday() && tf != models.TF1W {
			if wd := ts.Weekday(); wd == time.Saturday || wd == time.Sunday {
				continue
			}
		}
		open := price
		price *= 1 + rng.NormFloat64()*0.015
		high := math.Max(open, price) * (1 + rng.Float64()*0.01)
		low := math.Min(open, price) * (1 - rng.Float64()*0.01)
		out = append(out, models.Candle{
			Symbol:    symbol,
			Timeframe: tf,
			Timestamp: ts,
			Open:      round2(open),
			High:      round2(high),
			Low:       round2(low),
			Close:     round2(price),
			Volume:    float64(100000 + rng.Intn(1900000)),
			Source:    models.SourceSynthetic,
		})
	}
	return out
}

func basePrice(symbol string) float64 {
	if p, ok := basePrices[strings.ToUpper(symbol)]; ok {
		return p
	}
	return 100
}

func seed(symbol string, tf models.Timeframe, start time.Time) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToUpper(symbol) + "|" + string(tf)))
	return int64(h.Sum64()) ^ start.Unix()
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
