package api

import (
	"context"

	"MarketDash/internal/domain/models"
	xhttp "MarketDash/pkg/http"
	applogger "MarketDash/pkg/logger"

	"github.com/labstack/echo/v4"
)

type SignalService interface {
	Generate(ctx context.Context, symbol string, tf models.Timeframe) (*models.TradingSignal, error)
	List(ctx context.Context, symbol string, tf models.Timeframe, limit int) ([]models.TradingSignal, error)
	SupportResistance(ctx context.Context, symbol string, tf models.Timeframe, lookback int) (*models.SupportResistance, error)
	TechnicalAnalysis(ctx context.Context, symbol string, tf models.Timeframe) (*models.TechnicalAnalysis, error)
}

// SignalsEchoHandler serves trading signals and indicator breakdowns.
type SignalsEchoHandler struct {
	logger *applogger.Logger
	svc    SignalService
}

func NewSignalsEchoHandler(logger *applogger.Logger, svc SignalService) *SignalsEchoHandler {
	return &SignalsEchoHandler{logger: logger, svc: svc}
}

func (h *SignalsEchoHandler) register(g *echo.Group) {
	g.POST("/generate/:symbol", h.Generate)
	g.GET("/support-resistance/:symbol", h.SupportResistance)
	g.GET("/technical-analysis/:symbol", h.TechnicalAnalysis)
	g.GET("/:symbol", h.List)
}

func (h *SignalsEchoHandler) Generate(c echo.Context) error {
	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	sig, err := h.svc.Generate(c.Request().Context(), req.Symbol, models.Timeframe(req.Timeframe))
	if err != nil {
		return respondError(c, h.logger, "signals.generate", err)
	}
	return xhttp.SuccessResponse(c, sig)
}

func (h *SignalsEchoHandler) List(c echo.Context) error {
	req := &models.HistoryListRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rows, err := h.svc.List(c.Request().Context(), req.Symbol, models.Timeframe(req.Timeframe), req.Limit)
	if err != nil {
		return respondError(c, h.logger, "signals.list", err)
	}
	if rows == nil {
		rows = []models.TradingSignal{}
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *SignalsEchoHandler) SupportResistance(c echo.Context) error {
	req := &models.SupportResistanceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.svc.SupportResistance(c.Request().Context(), req.Symbol, models.Timeframe(req.Timeframe), req.Lookback)
	if err != nil {
		return respondError(c, h.logger, "signals.support_resistance", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *SignalsEchoHandler) TechnicalAnalysis(c echo.Context) error {
	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.svc.TechnicalAnalysis(c.Request().Context(), req.Symbol, models.Timeframe(req.Timeframe))
	if err != nil {
		return respondError(c, h.logger, "signals.technical_analysis", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, res)
}
