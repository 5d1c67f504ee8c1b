package api

import (
	"github.com/labstack/echo/v4"
)

// Router mounts every endpoint. All /api routes except register and login
// require a bearer token.
type Router struct {
	auth        *AuthHandler
	market      *MarketHandler
	signals     *SignalsEchoHandler
	predictions *PredictionsHandler
	health      *HealthHandler
	requireAuth echo.MiddlewareFunc
}

func NewRouter(auth *AuthHandler, market *MarketHandler, signals *SignalsEchoHandler,
	predictions *PredictionsHandler, health *HealthHandler, requireAuth echo.MiddlewareFunc) *Router {
	return &Router{
		auth:        auth,
		market:      market,
		signals:     signals,
		predictions: predictions,
		health:      health,
		requireAuth: requireAuth,
	}
}

func (r *Router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", r.health.Check)

	api := e.Group("/api")
	r.auth.register(api.Group("/auth"), r.requireAuth)
	r.market.register(api.Group("/market", r.requireAuth))
	r.signals.register(api.Group("/signals", r.requireAuth))
	r.predictions.register(api.Group("/predictions", r.requireAuth))
}
