package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func corsEcho(cfg CORSConfig) *echo.Echo {
	e := echo.New()
	e.Use(CORS(cfg))
	e.GET("/api/market/quote/AAPL", func(c echo.Context) error {
		c.Response().Header().Set("Retry-After", "3")
		return c.String(http.StatusOK, "ok")
	})
	return e
}

func TestCORSPreflight(t *testing.T) {
	e := corsEcho(CORSConfig{
		AllowOrigins: []string{"https://dash.example.com"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderAuthorization},
		MaxAge:       10 * time.Minute,
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/market/quote/AAPL", nil)
	req.Header.Set(echo.HeaderOrigin, "https://dash.example.com")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodGet)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://dash.example.com", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "GET, POST", rec.Header().Get(echo.HeaderAccessControlAllowMethods))
	assert.Equal(t, "Authorization", rec.Header().Get(echo.HeaderAccessControlAllowHeaders))
	assert.Equal(t, "600", rec.Header().Get(echo.HeaderAccessControlMaxAge))
	assert.Equal(t, echo.HeaderOrigin, rec.Header().Get(echo.HeaderVary))
}

func TestCORSRejectsUnknownOriginPreflight(t *testing.T) {
	e := corsEcho(CORSConfig{AllowOrigins: []string{"https://dash.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/market/quote/AAPL", nil)
	req.Header.Set(echo.HeaderOrigin, "https://evil.example.net")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodGet)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestCORSSimpleRequest(t *testing.T) {
	e := corsEcho(CORSConfig{
		AllowOrigins:  []string{"*"},
		ExposeHeaders: []string{"Retry-After"},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/market/quote/AAPL", nil)
	req.Header.Set(echo.HeaderOrigin, "https://any.example.org")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://any.example.org", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "Retry-After", rec.Header().Get(echo.HeaderAccessControlExposeHeaders))

	// no Origin header: not a CORS request
	req = httptest.NewRequest(http.MethodGet, "/api/market/quote/AAPL", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
