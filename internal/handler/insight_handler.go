package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/revenue-dashboard/internal/service"
)

// Summarizer writes a narrative over the dashboard answers.
type Summarizer interface {
	Enabled() bool
	Summarize(ctx context.Context, d service.Dashboard) (string, error)
}

type InsightHandler struct {
	reports    service.ReportService
	summarizer Summarizer
}

func NewInsightHandler(reports service.ReportService, summarizer Summarizer) *InsightHandler {
	return &InsightHandler{reports: reports, summarizer: summarizer}
}

func (h *InsightHandler) Create(c echo.Context) error {
	if h.summarizer == nil || !h.summarizer.Enabled() {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("unavailable", "GEMINI_API_KEY is not set"))
	}
	ctx := c.Request().Context()
	d := h.reports.Dashboard(ctx)
	if d.TotalRevenue.Err != nil {
		return c.JSON(http.StatusOK, newAnswer(nil, d.TotalRevenue.Err))
	}
	text, err := h.summarizer.Summarize(ctx, d)
	if err != nil {
		return c.JSON(http.StatusBadGateway, NewErrorResponse("upstream_error", "failed to generate insight"))
	}
	return c.JSON(http.StatusOK, newAnswer(map[string]string{"insight": text}, nil))
}
