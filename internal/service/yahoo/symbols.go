package yahoo

import (
	"strings"

	"MarketDash/internal/domain/models"
)

// SymbolMapper translates user-facing tickers to exchange-qualified ones.
type SymbolMapper struct {
	aliases map[string]string
	suffix  string
}

func NewSymbolMapper(aliases map[string]string, suffix string) *SymbolMapper {
	m := &SymbolMapper{aliases: make(map[string]string, len(aliases)), suffix: suffix}
	for k, v := range aliases {
		m.aliases[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	return m
}

// Resolve uppercases symbol, applies aliases, and appends the exchange
// suffix unless the symbol is an index (^) or already qualified.
func (m *SymbolMapper) Resolve(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if alias, ok := m.aliases[s]; ok {
		return alias
	}
	if m.suffix == "" || strings.HasPrefix(s, "^") || strings.Contains(s, ".") {
		return s
	}
	return s + m.suffix
}

// Interval maps a timeframe to the chart API interval.
func Interval(tf models.Timeframe) string {
	switch tf {
	case models.TF1m:
		return "1m"
	case models.TF5m:
		return "5m"
	case models.TF15m:
		return "15m"
	case models.TF1H:
		return "1h"
	case models.TF1W:
		return "1wk"
	default:
		return "1d"
	}
}

// quoteRange is the window requested for a latest-bar lookup; wide enough
// to span a weekend or holiday.
func quoteRange(tf models.Timeframe) string {
	switch tf {
	case models.TF1m, models.TF5m, models.TF15m:
		return "5d"
	case models.TF1H:
		return "1mo"
	case models.TF1W:
		return "6mo"
	default:
		return "1mo"
	}
}
