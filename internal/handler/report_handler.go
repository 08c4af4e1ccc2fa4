package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/revenue-dashboard/internal/analysis"
	"github.com/shinyyama/revenue-dashboard/internal/model"
	"github.com/shinyyama/revenue-dashboard/internal/repository"
	"github.com/shinyyama/revenue-dashboard/internal/service"
)

type ReportHandler struct {
	svc service.ReportService
}

func NewReportHandler(svc service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

type RecordResponse struct {
	Date          string  `json:"date"`
	CityCode      int     `json:"cityCode"`
	Plan          string  `json:"plan"`
	RevenueCrores float64 `json:"revenueCrores"`
}

type RecordListResponse struct {
	Records []RecordResponse `json:"records"`
	Total   int              `json:"total"`
}

type TotalRevenueResponse struct {
	TotalRevenue float64 `json:"totalRevenue"`
}

type PeakCityDayResponse struct {
	CityCode     int     `json:"cityCode"`
	Date         string  `json:"date"`
	TotalRevenue float64 `json:"totalRevenue"`
}

type TopPlanResponse struct {
	Plan         string  `json:"plan"`
	TotalRevenue float64 `json:"totalRevenue"`
}

type PlanCityCountResponse struct {
	Plan      string `json:"plan"`
	CityCount int64  `json:"cityCount"`
}

type TopCityResponse struct {
	CityCode     int     `json:"cityCode"`
	TotalRevenue float64 `json:"totalRevenue"`
}

type DashboardResponse struct {
	TotalRevenue      Answer `json:"totalRevenue"`
	PeakCityDay       Answer `json:"peakCityDay"`
	TopPlan           Answer `json:"topPlan"`
	PlanCityCount     Answer `json:"planCityCount"`
	TopCityByBestPlan Answer `json:"topCityByBestPlan"`
	Charts            Answer `json:"charts"`
}

func (h *ReportHandler) Records(c echo.Context) error {
	records, err := h.svc.Records(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusOK, newAnswer(nil, err))
	}
	resp := RecordListResponse{
		Records: make([]RecordResponse, 0, len(records)),
		Total:   len(records),
	}
	for i := range records {
		resp.Records = append(resp.Records, toRecordResponse(&records[i]))
	}
	return c.JSON(http.StatusOK, newAnswer(resp, nil))
}

func (h *ReportHandler) TotalRevenue(c echo.Context) error {
	v, err := h.svc.TotalRevenue(c.Request().Context())
	return c.JSON(http.StatusOK, newAnswer(TotalRevenueResponse{TotalRevenue: v}, err))
}

func (h *ReportHandler) PeakCityDay(c echo.Context) error {
	v, err := h.svc.PeakCityDay(c.Request().Context())
	return c.JSON(http.StatusOK, newAnswer(toPeakCityDayResponse(v), err))
}

func (h *ReportHandler) TopPlan(c echo.Context) error {
	v, err := h.svc.TopPlan(c.Request().Context())
	return c.JSON(http.StatusOK, newAnswer(toTopPlanResponse(v), err))
}

func (h *ReportHandler) PlanCityCount(c echo.Context) error {
	plan := strings.TrimSpace(c.QueryParam("plan"))
	if plan == "" {
		plan = service.CountPlan
	}
	if len(plan) > model.PlanMaxSize {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid plan"))
	}
	v, err := h.svc.PlanCityCount(c.Request().Context(), plan)
	return c.JSON(http.StatusOK, newAnswer(PlanCityCountResponse{Plan: plan, CityCount: v}, err))
}

func (h *ReportHandler) TopCityByBestPlan(c echo.Context) error {
	v, err := h.svc.TopCityByBestPlan(c.Request().Context())
	return c.JSON(http.StatusOK, newAnswer(toTopCityResponse(v), err))
}

func (h *ReportHandler) Charts(c echo.Context) error {
	v, err := h.svc.Charts(c.Request().Context())
	return c.JSON(http.StatusOK, newAnswer(v, err))
}

func (h *ReportHandler) Dashboard(c echo.Context) error {
	return c.JSON(http.StatusOK, toDashboardResponse(h.svc.Dashboard(c.Request().Context())))
}

func toDashboardResponse(d service.Dashboard) DashboardResponse {
	return DashboardResponse{
		TotalRevenue:      newAnswer(TotalRevenueResponse{TotalRevenue: d.TotalRevenue.Value}, d.TotalRevenue.Err),
		PeakCityDay:       newAnswer(toPeakCityDayResponse(d.PeakCityDay.Value), d.PeakCityDay.Err),
		TopPlan:           newAnswer(toTopPlanResponse(d.TopPlan.Value), d.TopPlan.Err),
		PlanCityCount:     newAnswer(PlanCityCountResponse{Plan: service.CountPlan, CityCount: d.PlanCityCount.Value}, d.PlanCityCount.Err),
		TopCityByBestPlan: newAnswer(toTopCityResponse(d.TopCityByBestPlan.Value), d.TopCityByBestPlan.Err),
		Charts:            newAnswer(chartsOrNil(d.Charts), d.Charts.Err),
	}
}

func toRecordResponse(r *model.RevenueRecord) RecordResponse {
	return RecordResponse{
		Date:          r.DateString(),
		CityCode:      r.CityCode,
		Plan:          r.Plan,
		RevenueCrores: r.RevenueCrores,
	}
}

func toPeakCityDayResponse(v *repository.CityDayTotal) *PeakCityDayResponse {
	if v == nil {
		return nil
	}
	return &PeakCityDayResponse{CityCode: v.CityCode, Date: v.Date.Format(model.DateLayout), TotalRevenue: v.Total}
}

func toTopPlanResponse(v *repository.PlanTotal) *TopPlanResponse {
	if v == nil {
		return nil
	}
	return &TopPlanResponse{Plan: v.Plan, TotalRevenue: v.Total}
}

func toTopCityResponse(v *repository.CityTotal) *TopCityResponse {
	if v == nil {
		return nil
	}
	return &TopCityResponse{CityCode: v.CityCode, TotalRevenue: v.Total}
}

func chartsOrNil(r service.Result[analysis.Charts]) interface{} {
	if r.Err != nil {
		return nil
	}
	return r.Value
}
