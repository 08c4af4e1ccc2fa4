package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shinyyama/revenue-dashboard/internal/analysis"
	"github.com/shinyyama/revenue-dashboard/internal/repository"
	"github.com/shinyyama/revenue-dashboard/internal/service"
)

func TestBuildInsightPrompt(t *testing.T) {
	var d service.Dashboard
	d.TotalRevenue.Value = 35
	d.PeakCityDay.Value = &repository.CityDayTotal{CityCode: 2, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Total: 20}
	d.TopPlan.Err = service.ErrNoData
	d.PlanCityCount.Value = 2
	d.TopCityByBestPlan.Err = errors.New("query_failed")
	d.Charts.Value = analysis.Charts{ByMonth: []analysis.Point{{Label: "2024-01", Value: 35}}}

	got := BuildInsightPrompt(d)
	wants := []string{
		"- Total revenue: 35.00 crores",
		"city 2 on 2024-01-01 with 20.00 crores",
		"- Top plan: unavailable",
		"plan p3: 2",
		"- City leading the most plans: unavailable",
		"- Revenue in 2024-01: 35.00 crores",
	}
	for _, w := range wants {
		if !strings.Contains(got, w) {
			t.Errorf("prompt missing %q\n%s", w, got)
		}
	}
}

func TestInsightClient_NotConfigured(t *testing.T) {
	c := NewInsightClient("", "")
	if c.Enabled() {
		t.Fatal("client without key should be disabled")
	}
	if _, err := c.Summarize(context.Background(), service.Dashboard{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err=%v want=%v", err, ErrNotConfigured)
	}
	if c.model != "gemini-2.5-flash" {
		t.Fatalf("model=%s", c.model)
	}
}
