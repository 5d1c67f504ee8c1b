package indicators

import (
	"fmt"
	"math"

	"MarketDash/internal/domain/models"
)

// Indicator names used in votes and reasoning.
const (
	NameRSI       = "RSI"
	NameMACD      = "MACD"
	NameMA        = "MA_CROSSOVER"
	NameBollinger = "BOLLINGER"
)

// Votes returns one vote per core indicator in a fixed order. Indicators
// that cannot be computed vote HOLD with state unknown.
func Votes(candles []models.Candle) []models.IndicatorVote {
	closes := Closes(candles)
	return []models.IndicatorVote{
		RSIVote(closes),
		MACDVote(closes),
		MACrossVote(closes),
		BollingerVote(closes),
	}
}

func unknownVote(name string, err error) models.IndicatorVote {
	return models.IndicatorVote{
		Name:   name,
		Signal: models.SignalHold,
		State:  models.StateUnknown,
		Detail: fmt.Sprintf("%s unavailable (%v)", name, err),
	}
}

// RSIVote: BUY below 30, SELL above 70.
func RSIVote(closes []float64) models.IndicatorVote {
	rsi, err := RSI(closes, RSIPeriod)
	if err != nil {
		return unknownVote(NameRSI, err)
	}
	v := models.IndicatorVote{Name: NameRSI, State: models.StateComputed, Value: rsi}
	switch {
	case rsi < RSIOversold:
		v.Signal = models.SignalBuy
		v.Strength = clamp01((RSIOversold - rsi) / RSIOversold)
		v.Detail = fmt.Sprintf("RSI oversold at %.1f", rsi)
	case rsi > RSIOverbought:
		v.Signal = models.SignalSell
		v.Strength = clamp01((rsi - RSIOverbought) / (100 - RSIOverbought))
		v.Detail = fmt.Sprintf("RSI overbought at %.1f", rsi)
	default:
		v.Signal = models.SignalHold
		v.Strength = clamp01(1 - math.Abs(rsi-50)/20)
		v.Detail = fmt.Sprintf("RSI neutral at %.1f", rsi)
	}
	return v
}

// MACDVote: BUY when MACD is above both its signal line and zero, SELL when
// below both. The zero-line filter keeps a rising series from ever voting SELL.
func MACDVote(closes []float64) models.IndicatorVote {
	m, err := MACD(closes, MACDFast, MACDSlow, MACDSignal)
	if err != nil {
		return unknownVote(NameMACD, err)
	}
	price := closes[len(closes)-1]
	tol := priceTolerance(price)
	v := models.IndicatorVote{Name: NameMACD, State: models.StateComputed, Value: m.Histogram}
	// histogram of 0.5% of price counts as full strength
	strength := clamp01(math.Abs(m.Histogram) / (0.005 * math.Max(math.Abs(price), tol)))
	switch {
	case m.Histogram > tol && m.MACD > tol:
		v.Signal = models.SignalBuy
		v.Strength = strength
		v.Detail = fmt.Sprintf("MACD %.4f above signal %.4f", m.MACD, m.Signal)
	case m.Histogram < -tol && m.MACD < -tol:
		v.Signal = models.SignalSell
		v.Strength = strength
		v.Detail = fmt.Sprintf("MACD %.4f below signal %.4f", m.MACD, m.Signal)
	default:
		v.Signal = models.SignalHold
		v.Strength = clamp01(1 - strength)
		v.Detail = fmt.Sprintf("MACD %.4f near signal %.4f", m.MACD, m.Signal)
	}
	return v
}

// MACrossVote: BUY when SMA20 > SMA50 and price > SMA20, SELL on the mirror.
func MACrossVote(closes []float64) models.IndicatorVote {
	long, err := SMA(closes, MALong)
	if err != nil {
		return unknownVote(NameMA, err)
	}
	short, _ := SMA(closes, MAShort)
	price := closes[len(closes)-1]
	tol := priceTolerance(price)

	v := models.IndicatorVote{Name: NameMA, State: models.StateComputed, Value: short - long}
	gap := 0.0
	if long != 0 {
		gap = math.Abs(short-long) / math.Abs(long)
	}
	// a 5% gap between the averages counts as full strength
	strength := clamp01(gap * 20)
	switch {
	case short-long > tol && price-short > tol:
		v.Signal = models.SignalBuy
		v.Strength = strength
		v.Detail = fmt.Sprintf("SMA20 %.2f above SMA50 %.2f with price above", short, long)
	case long-short > tol && short-price > tol:
		v.Signal = models.SignalSell
		v.Strength = strength
		v.Detail = fmt.Sprintf("SMA20 %.2f below SMA50 %.2f with price below", short, long)
	default:
		v.Signal = models.SignalHold
		v.Strength = clamp01(1 - strength)
		v.Detail = fmt.Sprintf("no confirmed crossover (SMA20 %.2f, SMA50 %.2f)", short, long)
	}
	return v
}

// BollingerVote: SELL at or above the upper band, BUY at or below the lower
// band, HOLD inside or when the band has zero width.
func BollingerVote(closes []float64) models.IndicatorVote {
	b, err := Bollinger(closes, BollingerPeriod, BollingerK)
	if err != nil {
		return unknownVote(NameBollinger, err)
	}
	price := closes[len(closes)-1]
	tol := priceTolerance(price)
	v := models.IndicatorVote{Name: NameBollinger, State: models.StateComputed, Value: b.Width}

	if b.Width <= tol {
		v.Signal = models.SignalHold
		v.Detail = "Bollinger bands flat"
		return v
	}
	pctB := (price - b.Lower) / b.Width
	v.Value = pctB
	switch {
	case price >= b.Upper:
		v.Signal = models.SignalSell
		v.Strength = clamp01(0.5 + (pctB - 1))
		v.Detail = fmt.Sprintf("price %.2f at or above upper band %.2f", price, b.Upper)
	case price <= b.Lower:
		v.Signal = models.SignalBuy
		v.Strength = clamp01(0.5 - pctB)
		v.Detail = fmt.Sprintf("price %.2f at or below lower band %.2f", price, b.Lower)
	default:
		v.Signal = models.SignalHold
		v.Strength = clamp01(1 - math.Abs(pctB-0.5)*2)
		v.Detail = fmt.Sprintf("price %.2f inside bands", price)
	}
	return v
}
