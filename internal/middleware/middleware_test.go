package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"MarketDash/internal/domain/models"
	"MarketDash/internal/service/auth"
	"MarketDash/internal/service/ratelimit"
	applogger "MarketDash/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protected(mw echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		id, ok := UserID(c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.JSON(http.StatusOK, map[string]int64{"id": id})
	}, mw)
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, mw)
	return e
}

func TestJWT(t *testing.T) {
	tm := auth.NewTokenManager("0123456789abcdef0123456789abcdef", "marketdash", time.Hour)
	token, _, err := tm.Issue(&models.User{ID: 7, Username: "asha"})
	require.NoError(t, err)
	e := protected(JWT(tm, applogger.Nop()))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"no token", "Bearer ", http.StatusUnauthorized},
		{"bad token", "Bearer abc.def.ghi", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.JSONEq(t, `{"id":7}`, rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), `"status":401`)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	e := protected(RateLimit(ratelimit.New(2, time.Minute), applogger.Nop(), "/health"))
	do := func(path, ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	assert.NotEqual(t, http.StatusTooManyRequests, do("/me", "1.1.1.1").Code)
	assert.NotEqual(t, http.StatusTooManyRequests, do("/me", "1.1.1.1").Code)
	rec := do("/me", "1.1.1.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"retry_after":30`)

	assert.NotEqual(t, http.StatusTooManyRequests, do("/me", "2.2.2.2").Code)
	assert.Equal(t, http.StatusOK, do("/health", "1.1.1.1").Code)
}
