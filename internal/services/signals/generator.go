// Package signals turns indicator votes into a trading signal with target,
// stop-loss, support/resistance and an advisory risk assessment.
package signals

import (
	"fmt"
	"strings"

	"MarketDash/internal/domain"
	"MarketDash/internal/domain/models"
	"MarketDash/internal/services/indicators"
	"MarketDash/pkg/util"

	"github.com/shopspring/decimal"
)

// MaxReasoningLength bounds TradingSignal.Reasoning.
const MaxReasoningLength = 500

type Config struct {
	TargetPct       float64
	StopPct         float64
	MaxPositionSize float64
	LevelLookback   int
}

type Generator struct {
	cfg Config
}

func NewGenerator(cfg Config) *Generator {
	if cfg.TargetPct <= 0 {
		cfg.TargetPct = 0.05
	}
	if cfg.StopPct <= 0 {
		cfg.StopPct = 0.03
	}
	if cfg.MaxPositionSize <= 0 {
		cfg.MaxPositionSize = 0.1
	}
	if cfg.LevelLookback <= 0 {
		cfg.LevelLookback = DefaultLevelLookback
	}
	return &Generator{cfg: cfg}
}

// Generate builds a signal from candles ordered oldest to newest. Any
// non-empty series yields a signal; indicators that lack data vote HOLD.
func (g *Generator) Generate(symbol string, tf models.Timeframe, candles []models.Candle) (*models.TradingSignal, error) {
	if len(candles) == 0 {
		return nil, fmt.Errorf("generate signal for %s: %w", symbol, domain.ErrInsufficientData)
	}
	last := candles[len(candles)-1]
	votes := indicators.Votes(candles)
	signalType, strength := tally(votes)

	s := &models.TradingSignal{
		Symbol:       symbol,
		Timeframe:    tf,
		SignalType:   signalType,
		Strength:     strength,
		CurrentPrice: round2(last.Close),
		Indicators:   votes,
		Synthetic:    models.AnySynthetic(candles),
	}

	switch signalType {
	case models.SignalBuy:
		s.PriceTarget = ptr(round2(last.Close * (1 + g.cfg.TargetPct)))
		s.StopLoss = ptr(round2(last.Close * (1 - g.cfg.StopPct)))
	case models.SignalSell:
		s.PriceTarget = ptr(round2(last.Close * (1 - g.cfg.TargetPct)))
		s.StopLoss = ptr(round2(last.Close * (1 + g.cfg.StopPct)))
	}

	if support, resistance, err := Levels(candles, g.cfg.LevelLookback); err == nil {
		if len(support) > 0 {
			s.SupportLevel = ptr(support[0])
		}
		if len(resistance) > 0 {
			s.ResistanceLevel = ptr(resistance[0])
		}
	}

	s.Risk = assessRisk(candles, s, g.cfg.MaxPositionSize)
	s.Reasoning = reasoning(signalType, strength, votes, candles)
	return s, nil
}

// SupportResistance lists up to MaxLevels levels on each side of the close.
func (g *Generator) SupportResistance(symbol string, tf models.Timeframe, candles []models.Candle, lookback int) (*models.SupportResistance, error) {
	if lookback <= 0 {
		lookback = g.cfg.LevelLookback
	}
	support, resistance, err := Levels(candles, lookback)
	if err != nil {
		return nil, fmt.Errorf("support/resistance for %s: %w", symbol, err)
	}
	if support == nil {
		support = []float64{}
	}
	if resistance == nil {
		resistance = []float64{}
	}
	return &models.SupportResistance{
		Symbol:       symbol,
		Timeframe:    tf,
		CurrentPrice: round2(candles[len(candles)-1].Close),
		Support:      support,
		Resistance:   resistance,
		Synthetic:    models.AnySynthetic(candles),
	}, nil
}

// tally applies the majority vote. A tie for the top count resolves to HOLD
// and the strength is then the share of HOLD votes.
func tally(votes []models.IndicatorVote) (models.SignalType, float64) {
	counts := map[models.SignalType]int{}
	for _, v := range votes {
		counts[v.Signal]++
	}
	total := float64(len(votes))
	if total == 0 {
		return models.SignalHold, 0
	}

	best, top, tied := models.SignalHold, -1, false
	for _, t := range []models.SignalType{models.SignalBuy, models.SignalSell, models.SignalHold} {
		switch c := counts[t]; {
		case c > top:
			best, top, tied = t, c, false
		case c == top:
			tied = true
		}
	}
	if tied {
		return models.SignalHold, float64(counts[models.SignalHold]) / total
	}
	return best, float64(top) / total
}

func strengthLabel(strength float64) string {
	switch {
	case strength >= 0.75:
		return "Strong"
	case strength >= 0.5:
		return "Moderate"
	default:
		return "Weak"
	}
}

func reasoning(t models.SignalType, strength float64, votes []models.IndicatorVote, candles []models.Candle) string {
	details := make([]string, 0, len(votes)+1)
	for _, v := range votes {
		details = append(details, v.Detail)
	}
	if ok, ratio := volumeConfirmed(candles); ok {
		details = append(details, fmt.Sprintf("volume %.1fx its 20-bar average", ratio))
	}
	text := fmt.Sprintf("%s %s signal. %s", strengthLabel(strength), strings.ToLower(string(t)), strings.Join(details, "; "))
	return util.Truncate(text, MaxReasoningLength)
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func round4(v float64) float64 {
	return decimal.NewFromFloat(v).Round(4).InexactFloat64()
}

func ptr(v float64) *float64 { return &v }
