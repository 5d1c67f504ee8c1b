package api

import (
	"context"
	"errors"
	"net/http"

	"MarketDash/internal/domain"
	xhttp "MarketDash/pkg/http"
	applogger "MarketDash/pkg/logger"

	"github.com/labstack/echo/v4"
)

// toAppError classifies domain errors. It returns nil for errors that must
// be reported as an opaque 500.
func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, domain.ErrSymbolNotFound):
		return xhttp.NewAppError("ERR_SYMBOL_NOT_FOUND", "symbol", "Symbol not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrDataUnavailable):
		return xhttp.ServiceUnavailableError("ERR_DATA_UNAVAILABLE", "Market data is temporarily unavailable")
	case errors.Is(err, domain.ErrInsufficientData):
		return xhttp.NewAppError("ERR_INSUFFICIENT_DATA", "", "Not enough market data for this computation", http.StatusBadRequest)
	case errors.Is(err, domain.ErrRangeTooLarge):
		return xhttp.NewAppError("ERR_RANGE", "start_date", "Date range is too long for this timeframe", http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidInput):
		return xhttp.BadRequestError(err.Error())
	case errors.Is(err, domain.ErrConflict):
		return xhttp.ConflictError("Username or email already registered")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return xhttp.UnauthorizedError("Invalid username or password")
	case errors.Is(err, domain.ErrInactiveUser):
		return xhttp.NewAppError("ERR_INACTIVE_USER", "", "Account is disabled", http.StatusUnauthorized)
	case errors.Is(err, domain.ErrInvalidToken):
		return xhttp.UnauthorizedError("Token is invalid or expired")
	case errors.Is(err, domain.ErrNotFound):
		return xhttp.NotFoundError("Not found")
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.ServiceUnavailableError("ERR_TIMEOUT", "Request timed out")
	}
	return nil
}

// respondError writes err in the standard envelope. Server-side failures
// are logged with their cause; the client never sees it.
func respondError(c echo.Context, l *applogger.Logger, op string, err error) error {
	appErr := toAppError(err)
	if appErr == nil {
		l.Error(op+" failed", applogger.Error(err), applogger.String("route", c.Path()))
		return xhttp.InternalServerErrorResponse(c)
	}
	if appErr.Status >= http.StatusInternalServerError {
		l.Warn(op+" unavailable", applogger.Error(err), applogger.String("code", appErr.Code))
	} else {
		l.Debug(op+" rejected", applogger.Error(err), applogger.String("code", appErr.Code))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func fieldError(field, code, message string) []xhttp.ValidationError {
	return []xhttp.ValidationError{{Code: code, Field: field, Message: message}}
}
