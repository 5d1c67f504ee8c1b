package models

import "strings"

// Requests for the HTTP endpoints. Symbols are upper-cased and timeframes
// canonicalized before validation.

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
}

func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
}

type QuoteRequest struct {
	Symbol    string `param:"symbol" validate:"required,symbol"`
	Timeframe string `query:"timeframe" default:"1D" validate:"oneof=1m 5m 15m 1H 1D 1W"`
}

func (r *QuoteRequest) Normalize() {
	r.Symbol = normalizeSymbol(r.Symbol)
	r.Timeframe = normalizeTF(r.Timeframe)
}

// MultiQuoteRequest is the watchlist body. Duplicates are dropped after
// upper-casing.
type MultiQuoteRequest struct {
	Symbols   []string `json:"symbols" validate:"required,min=1,max=20,dive,required,symbol"`
	Timeframe string   `json:"timeframe" default:"1D" validate:"oneof=1m 5m 15m 1H 1D 1W"`
}

func (r *MultiQuoteRequest) Normalize() {
	seen := make(map[string]bool, len(r.Symbols))
	out := r.Symbols[:0]
	for _, s := range r.Symbols {
		s = normalizeSymbol(s)
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	r.Symbols = out
	r.Timeframe = normalizeTF(r.Timeframe)
}

type HistoricalRequest struct {
	Symbol    string `param:"symbol" validate:"required,symbol"`
	Timeframe string `query:"timeframe" default:"1D" validate:"oneof=1m 5m 15m 1H 1D 1W"`
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
}

func (r *HistoricalRequest) Normalize() {
	r.Symbol = normalizeSymbol(r.Symbol)
	r.Timeframe = normalizeTF(r.Timeframe)
}

// HistoryListRequest lists stored predictions or signals.
type HistoryListRequest struct {
	Symbol    string `param:"symbol" validate:"required,symbol"`
	Timeframe string `query:"timeframe" validate:"omitempty,oneof=1m 5m 15m 1H 1D 1W"`
	Limit     int    `query:"limit" default:"50" validate:"gte=1,lte=500"`
}

func (r *HistoryListRequest) Normalize() {
	r.Symbol = normalizeSymbol(r.Symbol)
	r.Timeframe = normalizeTF(r.Timeframe)
}

type GeneratePredictionRequest struct {
	Symbol    string `param:"symbol" validate:"required,symbol"`
	Model     string `query:"model" validate:"omitempty,oneof=sequence ensemble kernel"`
	Timeframe string `query:"timeframe" default:"1D" validate:"oneof=1m 5m 15m 1H 1D 1W"`
	Horizon   string `query:"horizon" default:"short" validate:"oneof=short medium long"`
}

func (r *GeneratePredictionRequest) Normalize() {
	r.Symbol = normalizeSymbol(r.Symbol)
	r.Timeframe = normalizeTF(r.Timeframe)
	r.Model = strings.ToLower(r.Model)
	r.Horizon = strings.ToLower(r.Horizon)
}

type ConfidenceAnalysisRequest struct {
	Symbol    string `param:"symbol" validate:"required,symbol"`
	Timeframe string `query:"timeframe" default:"1D" validate:"oneof=1m 5m 15m 1H 1D 1W"`
}

func (r *ConfidenceAnalysisRequest) Normalize() {
	r.Symbol = normalizeSymbol(r.Symbol)
	r.Timeframe = normalizeTF(r.Timeframe)
}

type PerformanceRequest struct {
	Symbol    string `param:"symbol" validate:"required,symbol"`
	Timeframe string `query:"timeframe" default:"1D" validate:"oneof=1m 5m 15m 1H 1D 1W"`
	Horizon   string `query:"horizon" default:"short" validate:"oneof=short medium long"`
}

func (r *PerformanceRequest) Normalize() {
	r.Symbol = normalizeSymbol(r.Symbol)
	r.Timeframe = normalizeTF(r.Timeframe)
	r.Horizon = strings.ToLower(r.Horizon)
}

// SignalRequest serves generate and technical-analysis.
type SignalRequest struct {
	Symbol    string `param:"symbol" validate:"required,symbol"`
	Timeframe string `query:"timeframe" default:"1D" validate:"oneof=1m 5m 15m 1H 1D 1W"`
}

func (r *SignalRequest) Normalize() {
	r.Symbol = normalizeSymbol(r.Symbol)
	r.Timeframe = normalizeTF(r.Timeframe)
}

type SupportResistanceRequest struct {
	Symbol    string `param:"symbol" validate:"required,symbol"`
	Timeframe string `query:"timeframe" default:"1D" validate:"oneof=1m 5m 15m 1H 1D 1W"`
	Lookback  int    `query:"lookback" default:"50" validate:"gte=10,lte=500"`
}

func (r *SupportResistanceRequest) Normalize() {
	r.Symbol = normalizeSymbol(r.Symbol)
	r.Timeframe = normalizeTF(r.Timeframe)
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// normalizeTF canonicalizes known spellings and leaves anything else for the
// validator to reject. Empty stays empty so defaults can apply.
func normalizeTF(s string) string {
	if tf, ok := ParseTimeframe(s); ok {
		return string(tf)
	}
	return s
}
