package api

import (
	"context"

	"MarketDash/internal/domain/models"
	"MarketDash/internal/middleware"
	xhttp "MarketDash/pkg/http"
	applogger "MarketDash/pkg/logger"

	"github.com/labstack/echo/v4"
)

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.TokenResponse, error)
	Me(ctx context.Context, userID int64) (*models.User, error)
}

type AuthHandler struct {
	svc    AuthService
	logger *applogger.Logger
}

func NewAuthHandler(svc AuthService, logger *applogger.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

func (h *AuthHandler) register(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.GET("/me", h.Me, requireAuth)
}

func (h *AuthHandler) Register(c echo.Context) error {
	req := &models.RegisterRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	u, err := h.svc.Register(c.Request().Context(), *req)
	if err != nil {
		return respondError(c, h.logger, "auth.register", err)
	}
	return xhttp.CreatedResponse(c, u)
}

func (h *AuthHandler) Login(c echo.Context) error {
	req := &models.LoginRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tok, err := h.svc.Login(c.Request().Context(), *req)
	if err != nil {
		return respondError(c, h.logger, "auth.login", err)
	}
	return xhttp.SuccessResponse(c, tok)
}

func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := middleware.UserID(c)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.UnauthorizedError("Not authenticated"))
	}
	u, err := h.svc.Me(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, "auth.me", err)
	}
	return xhttp.SuccessResponse(c, u)
}
