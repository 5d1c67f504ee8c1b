package indicators

import (
	"MarketDash/internal/domain/models"

	"github.com/markcheno/go-talib"
)

const (
	StochKPeriod = 14
	StochSmooth  = 3
	ATRPeriod    = 14
	WillRPeriod  = 14
	CCIPeriod    = 20
)

// Analyze computes every indicator the series is long enough for. Fields
// stay nil for indicators that need more data.
func Analyze(symbol string, tf models.Timeframe, candles []models.Candle) models.TechnicalAnalysis {
	ta := models.TechnicalAnalysis{
		Symbol:    symbol,
		Timeframe: tf,
		Candles:   len(candles),
		Votes:     Votes(candles),
	}
	if len(candles) == 0 {
		return ta
	}
	last := candles[len(candles)-1]
	ta.Timestamp = last.Timestamp
	ta.Price = last.Close
	ta.Synthetic = models.AnySynthetic(candles)

	closes := Closes(candles)
	if v, err := RSI(closes, RSIPeriod); err == nil {
		ta.RSI = ptr(v)
	}
	if m, err := MACD(closes, MACDFast, MACDSlow, MACDSignal); err == nil {
		ta.MACD = &m
	}
	if v, err := SMA(closes, MAShort); err == nil {
		ta.SMA20 = ptr(v)
	}
	if v, err := SMA(closes, MALong); err == nil {
		ta.SMA50 = ptr(v)
	}
	if v, err := EMA(closes, MACDFast); err == nil {
		ta.EMA12 = ptr(v)
	}
	if v, err := EMA(closes, MACDSlow); err == nil {
		ta.EMA26 = ptr(v)
	}
	if b, err := Bollinger(closes, BollingerPeriod, BollingerK); err == nil {
		ta.Bollinger = &b
	}

	applyExtended(&ta, candles)
	return ta
}

// applyExtended fills the oscillators computed with go-talib. talib pads the
// warm-up region with zeros and can divide by a zero range on flat input, so
// only the last value is read and non-finite results are dropped.
func applyExtended(ta *models.TechnicalAnalysis, candles []models.Candle) {
	n := len(candles)
	high, low, closes, vol := Highs(candles), Lows(candles), Closes(candles), Volumes(candles)

	if n >= StochKPeriod+2*StochSmooth {
		k, d := talib.Stoch(high, low, closes, StochKPeriod, StochSmooth, talib.SMA, StochSmooth, talib.SMA)
		if lk, ld := k[n-1], d[n-1]; finite(lk) && finite(ld) {
			ta.Stochastic = &models.StochasticValue{K: lk, D: ld}
		}
	}
	if n > ATRPeriod {
		if v := talib.Atr(high, low, closes, ATRPeriod)[n-1]; finite(v) {
			ta.ATR = ptr(v)
		}
	}
	if n >= WillRPeriod {
		if v := talib.WillR(high, low, closes, WillRPeriod)[n-1]; finite(v) {
			ta.WilliamsR = ptr(v)
		}
	}
	if n >= CCIPeriod {
		if v := talib.Cci(high, low, closes, CCIPeriod)[n-1]; finite(v) {
			ta.CCI = ptr(v)
		}
	}
	if n >= 2 {
		if v := talib.Obv(closes, vol)[n-1]; finite(v) {
			ta.OBV = ptr(v)
		}
	}
}

func ptr(v float64) *float64 { return &v }
