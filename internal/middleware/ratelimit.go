package middleware

import (
	"math"
	"strconv"
	"time"

	xhttp "MarketDash/pkg/http"
	applogger "MarketDash/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Limiter is satisfied by ratelimit.Limiter.
type Limiter interface {
	Allow(key string) (bool, time.Duration)
}

// RateLimit throttles each client IP. Rejected requests get 429 with a
// Retry-After header. Paths in skip (e.g. /health) are never limited.
func RateLimit(limiter Limiter, l *applogger.Logger, skip ...string) echo.MiddlewareFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := skipped[c.Request().URL.Path]; ok {
				return next(c)
			}
			ip := c.RealIP()
			ok, wait := limiter.Allow(ip)
			if ok {
				return next(c)
			}
			secs := int(math.Ceil(wait.Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
			l.Warn("rate limited",
				applogger.String("ip", ip),
				applogger.String("path", c.Request().URL.Path),
			)
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("Too many requests").
				WithParam("retry_after", secs))
		}
	}
}
