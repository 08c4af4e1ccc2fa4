// Package analysis derives the chart series the dashboard draws from the
// full record set. Sums are exact decimals rounded to two places.
package analysis

import (
	"sort"
	"strconv"

	"github.com/shinyyama/revenue-dashboard/internal/model"
	"github.com/shopspring/decimal"
)

const monthLayout = "2006-01"

type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type Charts struct {
	Total   float64 `json:"total"`
	ByDate  []Point `json:"byDate"`
	ByMonth []Point `json:"byMonth"`
	ByCity  []Point `json:"byCity"`
	ByPlan  []Point `json:"byPlan"`
}

func Build(records []model.RevenueRecord) Charts {
	return Charts{
		Total:   Total(records),
		ByDate:  RevenueByDate(records),
		ByMonth: RevenueByMonth(records),
		ByCity:  RevenueByCity(records),
		ByPlan:  RevenueByPlan(records),
	}
}

// RevenueByDate is the daily trend line, oldest first.
func RevenueByDate(records []model.RevenueRecord) []Point {
	return sumBy(records, func(r model.RevenueRecord) string { return r.DateString() }, lexical)
}

func RevenueByMonth(records []model.RevenueRecord) []Point {
	return sumBy(records, func(r model.RevenueRecord) string { return r.Date.Format(monthLayout) }, lexical)
}

// RevenueByCity orders cities numerically.
func RevenueByCity(records []model.RevenueRecord) []Point {
	return sumBy(records, func(r model.RevenueRecord) string { return strconv.Itoa(r.CityCode) }, numeric)
}

func RevenueByPlan(records []model.RevenueRecord) []Point {
	return sumBy(records, func(r model.RevenueRecord) string { return r.Plan }, lexical)
}

// Total is the exact sum of every record, rounded to two places.
func Total(records []model.RevenueRecord) float64 {
	sum := decimal.Zero
	for _, r := range records {
		sum = sum.Add(decimal.NewFromFloat(r.RevenueCrores))
	}
	return sum.Round(2).InexactFloat64()
}

func sumBy(records []model.RevenueRecord, key func(model.RevenueRecord) string, less func(a, b string) bool) []Point {
	sums := make(map[string]decimal.Decimal)
	for _, r := range records {
		k := key(r)
		sums[k] = sums[k].Add(decimal.NewFromFloat(r.RevenueCrores))
	}
	labels := make([]string, 0, len(sums))
	for k := range sums {
		labels = append(labels, k)
	}
	sort.Slice(labels, func(i, j int) bool { return less(labels[i], labels[j]) })

	points := make([]Point, 0, len(labels))
	for _, k := range labels {
		points = append(points, Point{Label: k, Value: sums[k].Round(2).InexactFloat64()})
	}
	return points
}

func lexical(a, b string) bool { return a < b }

func numeric(a, b string) bool {
	x, _ := strconv.Atoi(a)
	y, _ := strconv.Atoi(b)
	return x < y
}
