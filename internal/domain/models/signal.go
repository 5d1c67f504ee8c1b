package models

import "time"

// SignalType is the action recommended by a signal.
type SignalType string

const (
	SignalBuy  SignalType = "BUY"
	SignalSell SignalType = "SELL"
	SignalHold SignalType = "HOLD"
)

// TradingSignal is an append-only record of a generated signal.
type TradingSignal struct {
	ID              int64      `json:"id" db:"id"`
	Symbol          string     `json:"symbol" db:"symbol"`
	Timeframe       Timeframe  `json:"timeframe" db:"timeframe"`
	SignalType      SignalType `json:"signal_type" db:"signal_type"`
	Strength        float64    `json:"strength" db:"strength"`
	CurrentPrice    float64    `json:"current_price" db:"current_price"`
	PriceTarget     *float64   `json:"price_target" db:"price_target"`
	StopLoss        *float64   `json:"stop_loss" db:"stop_loss"`
	SupportLevel    *float64   `json:"support_level" db:"support_level"`
	ResistanceLevel *float64   `json:"resistance_level" db:"resistance_level"`
	Reasoning       string     `json:"reasoning" db:"reasoning"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`

	Indicators []IndicatorVote  `json:"indicators,omitempty" db:"-"`
	Risk       *RiskAssessment `json:"risk,omitempty" db:"-"`
	Synthetic  bool            `json:"synthetic,omitempty" db:"-"`
}

// IndicatorState tells whether an indicator could be computed.
type IndicatorState string

const (
	StateComputed IndicatorState = "computed"
	StateUnknown  IndicatorState = "unknown"
)

// IndicatorVote is one indicator's contribution to the majority vote.
type IndicatorVote struct {
	Name     string         `json:"name"`
	Signal   SignalType     `json:"signal"`
	State    IndicatorState `json:"state"`
	Value    float64        `json:"value"`
	Strength float64        `json:"strength"`
	Detail   string         `json:"detail"`
}

// RiskAssessment is advisory and never changes the vote.
type RiskAssessment struct {
	Volatility      float64  `json:"volatility"`
	RiskLevel       string   `json:"risk_level"`
	RiskRewardRatio *float64 `json:"risk_reward_ratio,omitempty"`
	PositionSize    float64  `json:"position_size"`
	VolumeConfirmed bool     `json:"volume_confirmed"`
}

// SupportResistance lists price levels around the latest close.
type SupportResistance struct {
	Symbol       string    `json:"symbol"`
	Timeframe    Timeframe `json:"timeframe"`
	CurrentPrice float64   `json:"current_price"`
	Support      []float64 `json:"support_levels"`
	Resistance   []float64 `json:"resistance_levels"`
	Synthetic    bool      `json:"synthetic,omitempty"`
}

type MACDValue struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

type BollingerValue struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
	Width  float64 `json:"width"`
}

type StochasticValue struct {
	K float64 `json:"k"`
	D float64 `json:"d"`
}

// TechnicalAnalysis is the full indicator snapshot for a series. Pointer
// fields are nil when the series is too short for that indicator.
type TechnicalAnalysis struct {
	Symbol     string           `json:"symbol"`
	Timeframe  Timeframe        `json:"timeframe"`
	Timestamp  time.Time        `json:"timestamp"`
	Price      float64          `json:"price"`
	Candles    int              `json:"candles"`
	RSI        *float64         `json:"rsi"`
	MACD       *MACDValue       `json:"macd"`
	SMA20      *float64         `json:"sma_20"`
	SMA50      *float64         `json:"sma_50"`
	EMA12      *float64         `json:"ema_12"`
	EMA26      *float64         `json:"ema_26"`
	Bollinger  *BollingerValue  `json:"bollinger"`
	Stochastic *StochasticValue `json:"stochastic"`
	ATR        *float64         `json:"atr"`
	WilliamsR  *float64         `json:"williams_r"`
	CCI        *float64         `json:"cci"`
	OBV        *float64         `json:"obv"`
	Votes      []IndicatorVote  `json:"votes"`
	Synthetic  bool             `json:"synthetic,omitempty"`
}
