package ai

import (
	"fmt"
	"strings"

	"github.com/shinyyama/revenue-dashboard/internal/service"
)

const insightInstructions = `You are a revenue analyst writing a short note for a business dashboard.
Revenue figures are in crores (1 crore = 10 million).
Use only the facts listed below. Do not invent numbers, cities or plans.
Write at most five sentences in plain English, no markdown headings.
If a fact is marked unavailable, say so briefly instead of guessing.`

// BuildInsightPrompt renders the dashboard answers as a fact list.
func BuildInsightPrompt(d service.Dashboard) string {
	var b strings.Builder
	b.WriteString(insightInstructions)
	b.WriteString("\n\nFacts:\n")

	if d.TotalRevenue.Err != nil {
		b.WriteString("- Total revenue: unavailable\n")
	} else {
		fmt.Fprintf(&b, "- Total revenue: %.2f crores\n", d.TotalRevenue.Value)
	}
	if d.PeakCityDay.Err != nil || d.PeakCityDay.Value == nil {
		b.WriteString("- Highest single-day city revenue: unavailable\n")
	} else {
		v := d.PeakCityDay.Value
		fmt.Fprintf(&b, "- Highest single-day city revenue: city %d on %s with %.2f crores\n", v.CityCode, v.Date.Format("2006-01-02"), v.Total)
	}
	if d.TopPlan.Err != nil || d.TopPlan.Value == nil {
		b.WriteString("- Top plan: unavailable\n")
	} else {
		fmt.Fprintf(&b, "- Top plan: %s with %.2f crores\n", d.TopPlan.Value.Plan, d.TopPlan.Value.Total)
	}
	if d.PlanCityCount.Err != nil {
		fmt.Fprintf(&b, "- Cities earning revenue on plan %s: unavailable\n", service.CountPlan)
	} else {
		fmt.Fprintf(&b, "- Cities earning revenue on plan %s: %d\n", service.CountPlan, d.PlanCityCount.Value)
	}
	if d.TopCityByBestPlan.Err != nil || d.TopCityByBestPlan.Value == nil {
		b.WriteString("- City leading the most plans: unavailable\n")
	} else {
		fmt.Fprintf(&b, "- City leading the most plans: city %d with %.2f crores from its top-ranked records\n", d.TopCityByBestPlan.Value.CityCode, d.TopCityByBestPlan.Value.Total)
	}
	if d.Charts.Err == nil {
		for _, p := range d.Charts.Value.ByMonth {
			fmt.Fprintf(&b, "- Revenue in %s: %.2f crores\n", p.Label, p.Value)
		}
	}
	return b.String()
}
