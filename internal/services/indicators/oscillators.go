package indicators

import (
	"fmt"
	"math"

	"MarketDash/internal/domain/models"
)

const (
	RSIPeriod       = 14
	RSIOverbought   = 70.0
	RSIOversold     = 30.0
	MACDFast        = 12
	MACDSlow        = 26
	MACDSignal      = 9
	MAShort         = 20
	MALong          = 50
	BollingerPeriod = 20
	BollingerK      = 2.0
)

// RSI computes the Relative Strength Index with Wilder smoothing. It needs
// period+1 closes. A series with no price change at all yields 50.
func RSI(closes []float64, period int) (float64, error) {
	s, err := RSISeries(closes, period)
	if err != nil {
		return 0, err
	}
	return s[len(s)-1], nil
}

// RSISeries returns RSI values aligned to closes[period:].
func RSISeries(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("rsi: invalid period %d", period)
	}
	if len(closes) < period+1 {
		return nil, insufficient("rsi", period+1, len(closes))
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	out := make([]float64, 0, len(closes)-period)
	out = append(out, rsiValue(avgGain, avgLoss))

	p := float64(period)
	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out = append(out, rsiValue(avgGain, avgLoss))
	}
	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	switch {
	case avgGain == 0 && avgLoss == 0:
		return 50
	case avgLoss == 0:
		return 100
	}
	rsi := 100 - 100/(1+avgGain/avgLoss)
	return math.Max(0, math.Min(100, rsi))
}

// MACD computes the MACD line, its signal line and the histogram. It needs
// slow+signal-1 closes.
func MACD(closes []float64, fast, slow, signal int) (models.MACDValue, error) {
	if fast <= 0 || slow <= fast || signal <= 0 {
		return models.MACDValue{}, fmt.Errorf("macd: invalid periods %d/%d/%d", fast, slow, signal)
	}
	need := slow + signal - 1
	if len(closes) < need {
		return models.MACDValue{}, insufficient("macd", need, len(closes))
	}

	emaFast, err := EMASeries(closes, fast)
	if err != nil {
		return models.MACDValue{}, err
	}
	emaSlow, err := EMASeries(closes, slow)
	if err != nil {
		return models.MACDValue{}, err
	}

	// both series end at the last close; align on the slow one
	offset := slow - fast
	line := make([]float64, len(emaSlow))
	for i := range emaSlow {
		line[i] = emaFast[i+offset] - emaSlow[i]
	}

	sig, err := EMASeries(line, signal)
	if err != nil {
		return models.MACDValue{}, err
	}
	m := line[len(line)-1]
	s := sig[len(sig)-1]
	return models.MACDValue{MACD: m, Signal: s, Histogram: m - s}, nil
}

// Bollinger computes bands of k sample standard deviations around the SMA.
func Bollinger(closes []float64, period int, k float64) (models.BollingerValue, error) {
	if period < 2 {
		return models.BollingerValue{}, fmt.Errorf("bollinger: invalid period %d", period)
	}
	if len(closes) < period {
		return models.BollingerValue{}, insufficient("bollinger", period, len(closes))
	}
	window := closes[len(closes)-period:]
	mid := Mean(window)
	sd := StdDev(window)
	return models.BollingerValue{
		Upper:  mid + k*sd,
		Middle: mid,
		Lower:  mid - k*sd,
		Width:  2 * k * sd,
	}, nil
}
