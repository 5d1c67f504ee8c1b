// Package domain holds error values shared by every layer. The HTTP layer
// maps them to status codes; nothing below it knows about HTTP.
package domain

import "errors"

var (
	// ErrInsufficientData means the series is too short for the requested computation.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrDataUnavailable means the market data provider failed after retries.
	ErrDataUnavailable = errors.New("market data unavailable")
	// ErrSymbolNotFound means the provider does not know the symbol.
	ErrSymbolNotFound = errors.New("symbol not found")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("already exists")
	// ErrInvalidInput is a request that passed field validation but is
	// inconsistent as a whole, e.g. a date range ending before it starts.
	ErrInvalidInput = errors.New("invalid input")
	// ErrRangeTooLarge is a date range wider than the provider keeps at the
	// requested resolution.
	ErrRangeTooLarge = errors.New("date range too large for timeframe")

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInactiveUser       = errors.New("account is disabled")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
