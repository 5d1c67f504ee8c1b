package api

import (
	"context"

	"MarketDash/internal/domain/models"
	"MarketDash/internal/usecase"
	xhttp "MarketDash/pkg/http"
	applogger "MarketDash/pkg/logger"
	xutil "MarketDash/pkg/util"

	"github.com/labstack/echo/v4"
)

type MarketService interface {
	GetQuote(ctx context.Context, symbol string, tf models.Timeframe) (*models.Candle, error)
	GetQuotes(ctx context.Context, symbols []string, tf models.Timeframe) (*models.MultiQuote, error)
	GetHistorical(ctx context.Context, p usecase.GetHistoricalParams) (*models.CandleSeries, error)
	MarketStatus() models.MarketStatus
}

type MarketHandler struct {
	svc    MarketService
	logger *applogger.Logger
}

func NewMarketHandler(svc MarketService, logger *applogger.Logger) *MarketHandler {
	return &MarketHandler{svc: svc, logger: logger}
}

func (h *MarketHandler) register(g *echo.Group) {
	g.GET("/quote/:symbol", h.Quote)
	g.POST("/multiple-quotes", h.MultipleQuotes)
	g.GET("/historical/:symbol", h.Historical)
	g.GET("/status", h.Status)
}

func (h *MarketHandler) Quote(c echo.Context) error {
	req := &models.QuoteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	q, err := h.svc.GetQuote(c.Request().Context(), req.Symbol, models.Timeframe(req.Timeframe))
	if err != nil {
		return respondError(c, h.logger, "market.quote", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, q)
}

// MultipleQuotes serves the watchlist. Symbols that fail are listed under
// errors; the request fails only when none could be quoted.
func (h *MarketHandler) MultipleQuotes(c echo.Context) error {
	req := &models.MultiQuoteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.svc.GetQuotes(c.Request().Context(), req.Symbols, models.Timeframe(req.Timeframe))
	if err != nil {
		return respondError(c, h.logger, "market.multiple_quotes", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketHandler) Historical(c echo.Context) error {
	req := &models.HistoricalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	p := usecase.GetHistoricalParams{Symbol: req.Symbol, Timeframe: models.Timeframe(req.Timeframe)}
	if req.StartDate != "" {
		t, ok := xutil.ParseTime(req.StartDate)
		if !ok {
			return xhttp.BadRequestResponse(c, fieldError("start_date", "ERR_DATE", "start_date must be YYYY-MM-DD, RFC3339 or unix seconds"))
		}
		p.From = t
	}
	if req.EndDate != "" {
		t, ok := xutil.ParseTime(req.EndDate)
		if !ok {
			return xhttp.BadRequestResponse(c, fieldError("end_date", "ERR_DATE", "end_date must be YYYY-MM-DD, RFC3339 or unix seconds"))
		}
		if xutil.IsDate(req.EndDate) {
			t = xutil.EndOfDay(t)
		}
		p.To = t
	}

	res, err := h.svc.GetHistorical(c.Request().Context(), p)
	if err != nil {
		return respondError(c, h.logger, "market.historical", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketHandler) Status(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.svc.MarketStatus())
}
