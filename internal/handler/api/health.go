package api

import (
	"context"

	"MarketDash/internal/usecase"
	xhttp "MarketDash/pkg/http"

	"github.com/labstack/echo/v4"
)

type HealthService interface {
	Check(ctx context.Context) usecase.HealthReport
}

type HealthHandler struct {
	svc HealthService
}

func NewHealthHandler(svc HealthService) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// Check answers 503 when the database is unreachable.
func (h *HealthHandler) Check(c echo.Context) error {
	rep := h.svc.Check(c.Request().Context())
	if !rep.Healthy() {
		return xhttp.ServiceUnavailableResponse(c, rep)
	}
	return xhttp.SuccessResponse(c, rep)
}
