package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shinyyama/revenue-dashboard/internal/config"
	"github.com/shinyyama/revenue-dashboard/internal/db/dbtest"
	"github.com/stretchr/testify/assert"
)

func TestAllowOrigin(t *testing.T) {
	allow := allowOrigin([]string{"https://dash.example.com/", " https://ops.example.com "})
	tests := []struct {
		origin string
		want   bool
	}{
		{"http://localhost:5173", true},
		{"https://127.0.0.1:8443", true},
		{"https://dash.example.com", true},
		{"https://OPS.example.com", true},
		{"https://evil.example.com", false},
		{"ftp://dash.example.com", false},
		{"not a url", false},
	}
	for _, tt := range tests {
		got, err := allow(tt.origin)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.origin)
	}
}

func TestRoutes(t *testing.T) {
	cfg := &config.Config{MaxUploadMB: 1}
	s := New(cfg, dbtest.NewProvider(t), Options{SHA: "abc"})

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/api/reports/dashboard", http.StatusOK},
		{http.MethodGet, "/api/reports/total-revenue", http.StatusOK},
		{http.MethodGet, "/api/records", http.StatusOK},
		{http.MethodGet, "/api/imports", http.StatusOK},
		{http.MethodPost, "/api/insights", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.want, rec.Code, tt.path)
	}
}
