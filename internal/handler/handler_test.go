package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/revenue-dashboard/internal/analysis"
	"github.com/shinyyama/revenue-dashboard/internal/model"
	"github.com/shinyyama/revenue-dashboard/internal/repository"
	"github.com/shinyyama/revenue-dashboard/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReports struct {
	service.ReportService
	dashboard service.Dashboard
	total     float64
	err       error
	plan      string
}

func (s *stubReports) TotalRevenue(context.Context) (float64, error) { return s.total, s.err }

func (s *stubReports) PlanCityCount(_ context.Context, plan string) (int64, error) {
	s.plan = plan
	return 3, s.err
}

func (s *stubReports) Dashboard(context.Context) service.Dashboard { return s.dashboard }

func (s *stubReports) Records(context.Context) ([]model.RevenueRecord, error) {
	return []model.RevenueRecord{{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), CityCode: 1, Plan: "p1", RevenueCrores: 12.345}}, s.err
}

func serve(t *testing.T, h echo.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestTotalRevenue_Placeholders(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  string
		message string
	}{
		{"value", nil, StatusOK, ""},
		{"no data", service.ErrNoData, StatusNoData, "No data available."},
		{"query error", service.ErrQuery, StatusError, "Error fetching record."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewReportHandler(&stubReports{total: 35, err: tt.err})
			rec := serve(t, h.TotalRevenue, httptest.NewRequest(http.MethodGet, "/api/reports/total-revenue", nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.status, body["status"])
			if tt.err == nil {
				assert.Equal(t, 35.0, body["value"].(map[string]interface{})["totalRevenue"])
			} else {
				assert.Equal(t, tt.message, body["message"])
				assert.Nil(t, body["value"])
			}
		})
	}
}

func TestPlanCityCount_Param(t *testing.T) {
	stub := &stubReports{}
	h := NewReportHandler(stub)

	rec := serve(t, h.PlanCityCount, httptest.NewRequest(http.MethodGet, "/api/reports/plan-city-count", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.CountPlan, stub.plan)

	rec = serve(t, h.PlanCityCount, httptest.NewRequest(http.MethodGet, "/api/reports/plan-city-count?plan=p7", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p7", stub.plan)

	rec = serve(t, h.PlanCityCount, httptest.NewRequest(http.MethodGet, "/api/reports/plan-city-count?plan=waytoolongplan", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboard_MixedStatuses(t *testing.T) {
	var d service.Dashboard
	d.TotalRevenue.Value = 35
	d.PeakCityDay.Value = &repository.CityDayTotal{CityCode: 2, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Total: 20}
	d.TopPlan.Err = service.ErrNoData
	d.PlanCityCount.Value = 2
	d.TopCityByBestPlan.Err = service.ErrQuery
	d.Charts.Value = analysis.Charts{ByDate: []analysis.Point{{Label: "2024-01-01", Value: 35}}}

	h := NewReportHandler(&stubReports{dashboard: d})
	rec := serve(t, h.Dashboard, httptest.NewRequest(http.MethodGet, "/api/reports/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		TotalRevenue      Answer `json:"totalRevenue"`
		PeakCityDay       Answer `json:"peakCityDay"`
		TopPlan           Answer `json:"topPlan"`
		PlanCityCount     Answer `json:"planCityCount"`
		TopCityByBestPlan Answer `json:"topCityByBestPlan"`
		Charts            Answer `json:"charts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusOK, resp.TotalRevenue.Status)
	assert.Equal(t, StatusOK, resp.PeakCityDay.Status)
	assert.Equal(t, "2024-01-01", resp.PeakCityDay.Value.(map[string]interface{})["date"])
	assert.Equal(t, StatusNoData, resp.TopPlan.Status)
	assert.Equal(t, StatusOK, resp.PlanCityCount.Status)
	assert.Equal(t, StatusError, resp.TopCityByBestPlan.Status)
	assert.Equal(t, StatusOK, resp.Charts.Status)
}

func TestRecords(t *testing.T) {
	h := NewReportHandler(&stubReports{})
	rec := serve(t, h.Records, httptest.NewRequest(http.MethodGet, "/api/records", nil))

	body := decode(t, rec)
	assert.Equal(t, StatusOK, body["status"])
	value := body["value"].(map[string]interface{})
	assert.Equal(t, 1.0, value["total"])
	first := value["records"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "2024-01-01", first["date"])
	assert.Equal(t, 12.345, first["revenueCrores"])
}

type stubImports struct {
	service.ImportService
	got []service.Upload
}

func (s *stubImports) ProcessFiles(_ context.Context, uploads []service.Upload) []service.Outcome {
	s.got = uploads
	out := make([]service.Outcome, 0, len(uploads))
	for _, u := range uploads {
		out = append(out, service.Outcome{Filename: u.Filename, Status: service.ImportImported, Inserted: 1})
	}
	return out
}

func (s *stubImports) History(context.Context) ([]model.ImportedFile, error) {
	return []model.ImportedFile{{Filename: "jan.csv", Checksum: "abc", RowCount: 3, ImportedAt: time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)}}, nil
}

func multipartRequest(t *testing.T, files map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile(uploadField, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/imports", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	stub := &stubImports{}
	h := NewImportHandler(stub)

	rec := serve(t, h.Upload, multipartRequest(t, map[string]string{"jan.csv": "date\n"}))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, stub.got, 1)
	assert.Equal(t, "jan.csv", stub.got[0].Filename)
	assert.Equal(t, "date\n", string(stub.got[0].Data))

	var resp ImportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "imported", resp.Results[0].Status)
}

func TestUpload_NoFiles(t *testing.T) {
	h := NewImportHandler(&stubImports{})
	rec := serve(t, h.Upload, multipartRequest(t, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, h.Upload, httptest.NewRequest(http.MethodPost, "/api/imports", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistory(t *testing.T) {
	h := NewImportHandler(&stubImports{})
	rec := serve(t, h.History, httptest.NewRequest(http.MethodGet, "/api/imports", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"importedAt":"2024-02-01T08:00:00Z"`)
}

type stubSummarizer struct {
	enabled bool
	err     error
}

func (s stubSummarizer) Enabled() bool { return s.enabled }

func (s stubSummarizer) Summarize(context.Context, service.Dashboard) (string, error) {
	return "Revenue grew.", s.err
}

func TestInsight(t *testing.T) {
	var ok service.Dashboard
	ok.TotalRevenue.Value = 10
	var empty service.Dashboard
	empty.TotalRevenue.Err = service.ErrNoData

	tests := []struct {
		name       string
		summarizer Summarizer
		dashboard  service.Dashboard
		code       int
		contains   string
	}{
		{"disabled", stubSummarizer{}, ok, http.StatusServiceUnavailable, "unavailable"},
		{"nil", nil, ok, http.StatusServiceUnavailable, "unavailable"},
		{"no data", stubSummarizer{enabled: true}, empty, http.StatusOK, StatusNoData},
		{"upstream", stubSummarizer{enabled: true, err: errors.New("quota")}, ok, http.StatusBadGateway, "upstream_error"},
		{"ok", stubSummarizer{enabled: true}, ok, http.StatusOK, "Revenue grew."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewInsightHandler(&stubReports{dashboard: tt.dashboard}, tt.summarizer)
			rec := serve(t, h.Create, httptest.NewRequest(http.MethodPost, "/api/insights", nil))
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}
