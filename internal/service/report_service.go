package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shinyyama/revenue-dashboard/internal/analysis"
	"github.com/shinyyama/revenue-dashboard/internal/model"
	"github.com/shinyyama/revenue-dashboard/internal/repository"
)

var (
	ErrNoData = errors.New("no_data")
	ErrQuery  = errors.New("query_failed")
)

// CountPlan is the plan the dashboard counts contributing cities for.
const CountPlan = "p3"

// Result carries either a value or the reason there is none.
type Result[T any] struct {
	Value T
	Err   error
}

type Dashboard struct {
	TotalRevenue      Result[float64]
	PeakCityDay       Result[*repository.CityDayTotal]
	TopPlan           Result[*repository.PlanTotal]
	PlanCityCount     Result[int64]
	TopCityByBestPlan Result[*repository.CityTotal]
	Charts            Result[analysis.Charts]
}

// ReportService never lets a store failure escape as anything other than
// ErrNoData or ErrQuery.
type ReportService interface {
	TotalRevenue(ctx context.Context) (float64, error)
	PeakCityDay(ctx context.Context) (*repository.CityDayTotal, error)
	TopPlan(ctx context.Context) (*repository.PlanTotal, error)
	PlanCityCount(ctx context.Context, plan string) (int64, error)
	TopCityByBestPlan(ctx context.Context) (*repository.CityTotal, error)
	Records(ctx context.Context) ([]model.RevenueRecord, error)
	Charts(ctx context.Context) (analysis.Charts, error)
	Dashboard(ctx context.Context) Dashboard
}

type reportService struct {
	reports repository.ReportRepository
	revenue repository.RevenueRepository
}

func NewReportService(reports repository.ReportRepository, revenue repository.RevenueRepository) ReportService {
	return &reportService{reports: reports, revenue: revenue}
}

func (s *reportService) TotalRevenue(ctx context.Context) (float64, error) {
	v, err := s.reports.TotalRevenue(ctx)
	return v, classify("total_revenue", err)
}

func (s *reportService) PeakCityDay(ctx context.Context) (*repository.CityDayTotal, error) {
	v, err := s.reports.PeakCityDay(ctx)
	return v, classify("peak_city_day", err)
}

func (s *reportService) TopPlan(ctx context.Context) (*repository.PlanTotal, error) {
	v, err := s.reports.TopPlan(ctx)
	return v, classify("top_plan", err)
}

func (s *reportService) PlanCityCount(ctx context.Context, plan string) (int64, error) {
	if plan == "" {
		plan = CountPlan
	}
	v, err := s.reports.PlanCityCount(ctx, plan)
	return v, classify("plan_city_count", err)
}

func (s *reportService) TopCityByBestPlan(ctx context.Context) (*repository.CityTotal, error) {
	v, err := s.reports.TopCityByBestPlan(ctx)
	return v, classify("top_city_best_plan", err)
}

func (s *reportService) Records(ctx context.Context) ([]model.RevenueRecord, error) {
	v, err := s.revenue.All(ctx)
	return v, classify("all_records", err)
}

func (s *reportService) Charts(ctx context.Context) (analysis.Charts, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return analysis.Charts{}, err
	}
	if len(records) == 0 {
		return analysis.Charts{}, ErrNoData
	}
	return analysis.Build(records), nil
}

// Dashboard runs every question independently; one failing query does not
// hide the others.
func (s *reportService) Dashboard(ctx context.Context) Dashboard {
	var d Dashboard
	d.TotalRevenue.Value, d.TotalRevenue.Err = s.TotalRevenue(ctx)
	d.PeakCityDay.Value, d.PeakCityDay.Err = s.PeakCityDay(ctx)
	d.TopPlan.Value, d.TopPlan.Err = s.TopPlan(ctx)
	d.PlanCityCount.Value, d.PlanCityCount.Err = s.PlanCityCount(ctx, CountPlan)
	d.TopCityByBestPlan.Value, d.TopCityByBestPlan.Err = s.TopCityByBestPlan(ctx)
	d.Charts.Value, d.Charts.Err = s.Charts(ctx)
	return d
}

func classify(query string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNoData) {
		return ErrNoData
	}
	log.Printf("[report] query=%s err=%v", query, err)
	return fmt.Errorf("%w: %s: %v", ErrQuery, query, err)
}
