package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shinyyama/revenue-dashboard/internal/db"
	"gorm.io/gorm"
)

type CityDayTotal struct {
	CityCode int       `gorm:"column:city_code"`
	Date     time.Time `gorm:"column:date"`
	Total    float64   `gorm:"column:tot_revenue"`
}

type PlanTotal struct {
	Plan  string  `gorm:"column:plans"`
	Total float64 `gorm:"column:tot_revenue"`
}

type CityTotal struct {
	CityCode int     `gorm:"column:city_code"`
	Total    float64 `gorm:"column:total_revenue"`
}

// ReportRepository holds the fixed read-only aggregate queries. Ties are
// broken by the smallest key so every query is deterministic.
type ReportRepository interface {
	TotalRevenue(ctx context.Context) (float64, error)
	PeakCityDay(ctx context.Context) (*CityDayTotal, error)
	TopPlan(ctx context.Context) (*PlanTotal, error)
	PlanCityCount(ctx context.Context, plan string) (int64, error)
	TopCityByBestPlan(ctx context.Context) (*CityTotal, error)
}

type reportRepository struct {
	conn db.Conn
}

func NewReportRepository(conn db.Conn) ReportRepository {
	return &reportRepository{conn: conn}
}

const (
	totalRevenueSQL = `SELECT SUM(plan_revenue_crores) AS total FROM revenue_data`

	peakCityDaySQL = `
SELECT city_code, date, ROUND(SUM(plan_revenue_crores), 2) AS tot_revenue
FROM revenue_data
GROUP BY city_code, date
ORDER BY tot_revenue DESC, city_code ASC, date ASC
LIMIT 1`

	topPlanSQL = `
SELECT plans, ROUND(SUM(plan_revenue_crores), 2) AS tot_revenue
FROM revenue_data
GROUP BY plans
ORDER BY tot_revenue DESC, plans ASC
LIMIT 1`

	planCityCountSQL = `
SELECT COUNT(DISTINCT city_code) AS city_count
FROM revenue_data
WHERE plans = ? AND plan_revenue_crores <> 0`

	// RANK keeps every record tied for first within a plan.
	topCityByBestPlanSQL = `
WITH ranked_revenue AS (
	SELECT city_code, plans, plan_revenue_crores,
		RANK() OVER (PARTITION BY plans ORDER BY plan_revenue_crores DESC) AS ranking
	FROM revenue_data
)
SELECT city_code, ROUND(SUM(plan_revenue_crores), 2) AS total_revenue
FROM ranked_revenue
WHERE ranking = 1
GROUP BY city_code
ORDER BY total_revenue DESC, city_code ASC
LIMIT 1`
)

// TotalRevenue is the unrounded sum over every record.
func (r *reportRepository) TotalRevenue(ctx context.Context) (float64, error) {
	if r.conn == nil {
		return 0, ErrDBNotReady
	}
	var total sql.NullFloat64
	err := r.conn.Acquire(ctx, func(tx *gorm.DB) error {
		return tx.Raw(totalRevenueSQL).Row().Scan(&total)
	})
	if err != nil {
		return 0, err
	}
	if !total.Valid {
		return 0, ErrNoData
	}
	return total.Float64, nil
}

func (r *reportRepository) PeakCityDay(ctx context.Context) (*CityDayTotal, error) {
	var row CityDayTotal
	if err := r.first(ctx, &row, peakCityDaySQL); err != nil {
		return nil, err
	}
	row.Date = row.Date.UTC()
	return &row, nil
}

func (r *reportRepository) TopPlan(ctx context.Context) (*PlanTotal, error) {
	var row PlanTotal
	if err := r.first(ctx, &row, topPlanSQL); err != nil {
		return nil, err
	}
	return &row, nil
}

// PlanCityCount counts distinct cities with non-zero revenue for plan. An
// empty table yields zero rather than ErrNoData.
func (r *reportRepository) PlanCityCount(ctx context.Context, plan string) (int64, error) {
	if r.conn == nil {
		return 0, ErrDBNotReady
	}
	var n int64
	err := r.conn.Acquire(ctx, func(tx *gorm.DB) error {
		return tx.Raw(planCityCountSQL, plan).Row().Scan(&n)
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *reportRepository) TopCityByBestPlan(ctx context.Context) (*CityTotal, error) {
	var row CityTotal
	if err := r.first(ctx, &row, topCityByBestPlanSQL); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *reportRepository) first(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	if r.conn == nil {
		return ErrDBNotReady
	}
	var found int64
	err := r.conn.Acquire(ctx, func(tx *gorm.DB) error {
		res := tx.Raw(query, args...).Scan(dest)
		found = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return err
	}
	if found == 0 {
		return ErrNoData
	}
	return nil
}
