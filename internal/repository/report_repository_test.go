package repository_test

import (
	"context"
	"testing"

	"github.com/shinyyama/revenue-dashboard/internal/db"
	"github.com/shinyyama/revenue-dashboard/internal/db/dbtest"
	"github.com/shinyyama/revenue-dashboard/internal/model"
	"github.com/shinyyama/revenue-dashboard/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, records []model.RevenueRecord) repository.ReportRepository {
	t.Helper()
	p := dbtest.NewProvider(t)
	if len(records) > 0 {
		res, err := repository.NewRevenueRepository(p).InsertBatch(context.Background(), nil, records)
		require.NoError(t, err)
		require.Equal(t, len(records), res.Inserted)
	}
	return repository.NewReportRepository(p)
}

func TestReports_Sample(t *testing.T) {
	ctx := context.Background()
	reports := seed(t, sampleRecords())

	total, err := reports.TotalRevenue(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 40.0, total, 1e-9)

	peak, err := reports.PeakCityDay(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, peak.CityCode)
	assert.Equal(t, "2024-01-01", peak.Date.Format(model.DateLayout))
	assert.Equal(t, 20.0, peak.Total)

	top, err := reports.TopPlan(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p1", top.Plan)
	assert.Equal(t, 30.0, top.Total)

	n, err := reports.PlanCityCount(ctx, "p3")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	city, err := reports.TopCityByBestPlan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, city.CityCode)
	assert.Equal(t, 20.0, city.Total)
}

func TestReports_Empty(t *testing.T) {
	ctx := context.Background()
	reports := seed(t, nil)

	_, err := reports.TotalRevenue(ctx)
	assert.ErrorIs(t, err, repository.ErrNoData)
	_, err = reports.PeakCityDay(ctx)
	assert.ErrorIs(t, err, repository.ErrNoData)
	_, err = reports.TopPlan(ctx)
	assert.ErrorIs(t, err, repository.ErrNoData)
	_, err = reports.TopCityByBestPlan(ctx)
	assert.ErrorIs(t, err, repository.ErrNoData)

	n, err := reports.PlanCityCount(ctx, "p3")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReports_Rounding(t *testing.T) {
	ctx := context.Background()
	reports := seed(t, []model.RevenueRecord{
		rec(d1, 1, "p1", 1.234),
		rec(d1, 1, "p2", 2.002),
	})

	total, err := reports.TotalRevenue(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 3.236, total, 1e-9)

	peak, err := reports.PeakCityDay(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3.24, peak.Total)
}

func TestReports_TieBreaks(t *testing.T) {
	ctx := context.Background()
	reports := seed(t, []model.RevenueRecord{
		rec(d2, 5, "p2", 10),
		rec(d1, 3, "p1", 10),
		rec(d2, 3, "p1", 10),
	})

	peak, err := reports.PeakCityDay(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, peak.CityCode)
	assert.Equal(t, "2024-01-01", peak.Date.Format(model.DateLayout))

	top, err := reports.TopPlan(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p1", top.Plan)
	assert.Equal(t, 20.0, top.Total)

	// Both p1 records tie at rank 1 and count for city 3.
	city, err := reports.TopCityByBestPlan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, city.CityCode)
	assert.Equal(t, 20.0, city.Total)
}

func TestReports_BestPlanCityTie(t *testing.T) {
	ctx := context.Background()
	reports := seed(t, []model.RevenueRecord{
		rec(d1, 9, "p1", 8),
		rec(d1, 4, "p2", 8),
		rec(d1, 9, "p2", 1),
	})

	city, err := reports.TopCityByBestPlan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, city.CityCode)
	assert.Equal(t, 8.0, city.Total)
}

func TestReports_StoreUnavailable(t *testing.T) {
	reports := repository.NewReportRepository(dbtest.Broken(t))
	_, err := reports.TotalRevenue(context.Background())
	assert.ErrorIs(t, err, db.ErrUnavailable)
	_, err = reports.PeakCityDay(context.Background())
	assert.ErrorIs(t, err, db.ErrUnavailable)
}
