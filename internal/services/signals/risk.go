package signals

import (
	"math"

	"MarketDash/internal/domain/models"
	"MarketDash/internal/services/indicators"
)

const (
	volatilityWindow = 20
	volumeWindow     = 20
	volumeSurge      = 1.5
)

// Risk levels by 20-bar coefficient of variation.
const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

// assessRisk never influences the vote; it only annotates the signal.
func assessRisk(candles []models.Candle, s *models.TradingSignal, maxPosition float64) *models.RiskAssessment {
	closes := indicators.Closes(candles)
	if len(closes) > volatilityWindow {
		closes = closes[len(closes)-volatilityWindow:]
	}

	r := &models.RiskAssessment{}
	if mean := indicators.Mean(closes); mean > 0 {
		r.Volatility = round4(indicators.StdDev(closes) / mean)
	}
	switch {
	case r.Volatility < 0.02:
		r.RiskLevel = RiskLow
	case r.Volatility < 0.05:
		r.RiskLevel = RiskMedium
	default:
		r.RiskLevel = RiskHigh
	}

	if s.PriceTarget != nil && s.StopLoss != nil {
		risk := math.Abs(s.CurrentPrice - *s.StopLoss)
		if risk > 0 {
			rr := round2(math.Abs(*s.PriceTarget-s.CurrentPrice) / risk)
			r.RiskRewardRatio = &rr
		}
	}
	if s.SignalType != models.SignalHold {
		r.PositionSize = round4(s.Strength * maxPosition)
	}
	r.VolumeConfirmed, _ = volumeConfirmed(candles)
	return r
}

// volumeConfirmed reports whether the latest volume exceeds 1.5x the average
// of the preceding 20 bars, and that ratio.
func volumeConfirmed(candles []models.Candle) (bool, float64) {
	n := len(candles)
	if n < volumeWindow+1 {
		return false, 0
	}
	avg := indicators.Mean(indicators.Volumes(candles[n-1-volumeWindow : n-1]))
	if avg <= 0 {
		return false, 0
	}
	ratio := candles[n-1].Volume / avg
	return ratio > volumeSurge, ratio
}
