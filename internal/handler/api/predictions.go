package api

import (
	"context"

	"MarketDash/internal/domain/models"
	"MarketDash/internal/usecase"
	xhttp "MarketDash/pkg/http"
	applogger "MarketDash/pkg/logger"

	"github.com/labstack/echo/v4"
)

type PredictionService interface {
	Generate(ctx context.Context, p usecase.GeneratePredictionParams) (*models.Prediction, error)
	List(ctx context.Context, symbol string, tf models.Timeframe, limit int) ([]models.Prediction, error)
	Performance(ctx context.Context, symbol string, tf models.Timeframe, horizon models.Horizon) (*models.PerformanceReport, error)
	ConfidenceAnalysis(ctx context.Context, symbol string, tf models.Timeframe) (*models.ConfidenceAnalysis, error)
}

type PredictionsHandler struct {
	svc    PredictionService
	logger *applogger.Logger
}

func NewPredictionsHandler(svc PredictionService, logger *applogger.Logger) *PredictionsHandler {
	return &PredictionsHandler{svc: svc, logger: logger}
}

func (h *PredictionsHandler) register(g *echo.Group) {
	g.POST("/generate/:symbol", h.Generate)
	g.GET("/performance/:symbol", h.Performance)
	g.GET("/confidence-analysis/:symbol", h.ConfidenceAnalysis)
	g.GET("/:symbol", h.List)
}

func (h *PredictionsHandler) Generate(c echo.Context) error {
	req := &models.GeneratePredictionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	p, err := h.svc.Generate(c.Request().Context(), usecase.GeneratePredictionParams{
		Symbol:    req.Symbol,
		Timeframe: models.Timeframe(req.Timeframe),
		Model:     models.ModelKind(req.Model),
		Horizon:   models.Horizon(req.Horizon),
	})
	if err != nil {
		return respondError(c, h.logger, "predictions.generate", err)
	}
	return xhttp.SuccessResponse(c, p)
}

func (h *PredictionsHandler) List(c echo.Context) error {
	req := &models.HistoryListRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rows, err := h.svc.List(c.Request().Context(), req.Symbol, models.Timeframe(req.Timeframe), req.Limit)
	if err != nil {
		return respondError(c, h.logger, "predictions.list", err)
	}
	if rows == nil {
		rows = []models.Prediction{}
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *PredictionsHandler) Performance(c echo.Context) error {
	req := &models.PerformanceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rep, err := h.svc.Performance(c.Request().Context(), req.Symbol, models.Timeframe(req.Timeframe), models.Horizon(req.Horizon))
	if err != nil {
		return respondError(c, h.logger, "predictions.performance", err)
	}
	return xhttp.SuccessResponse(c, rep)
}

func (h *PredictionsHandler) ConfidenceAnalysis(c echo.Context) error {
	req := &models.ConfidenceAnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rep, err := h.svc.ConfidenceAnalysis(c.Request().Context(), req.Symbol, models.Timeframe(req.Timeframe))
	if err != nil {
		return respondError(c, h.logger, "predictions.confidence_analysis", err)
	}
	return xhttp.SuccessResponse(c, rep)
}
