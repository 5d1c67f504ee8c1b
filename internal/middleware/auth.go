package middleware

import (
	"strings"

	"MarketDash/internal/service/auth"
	xhttp "MarketDash/pkg/http"
	applogger "MarketDash/pkg/logger"

	"github.com/labstack/echo/v4"
)

const (
	ctxUserID   = "user_id"
	ctxUsername = "username"
)

// TokenParser verifies access tokens.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// JWT rejects requests without a valid "Authorization: Bearer <token>"
// header and stores the caller's identity on the context.
func JWT(parser TokenParser, l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return xhttp.AppErrorResponse(c, xhttp.UnauthorizedError("Authorization header required"))
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				return xhttp.AppErrorResponse(c, xhttp.UnauthorizedError("Invalid authorization format"))
			}

			claims, err := parser.Parse(strings.TrimSpace(parts[1]))
			if err != nil {
				l.Debug("token rejected",
					applogger.String("route", c.Path()),
					applogger.Error(err),
				)
				return xhttp.AppErrorResponse(c, xhttp.UnauthorizedError("Token is invalid or expired"))
			}
			id, _ := claims.UserID()
			c.Set(ctxUserID, id)
			c.Set(ctxUsername, claims.Username)
			return next(c)
		}
	}
}

// UserID returns the authenticated user's ID set by JWT.
func UserID(c echo.Context) (int64, bool) {
	id, ok := c.Get(ctxUserID).(int64)
	return id, ok
}
