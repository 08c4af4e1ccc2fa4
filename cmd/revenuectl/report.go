package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shinyyama/revenue-dashboard/internal/model"
	"github.com/shinyyama/revenue-dashboard/internal/repository"
	"github.com/shinyyama/revenue-dashboard/internal/service"
	"github.com/spf13/cobra"
)

func newReportCmd(opts *rootOptions) *cobra.Command {
	var plan string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the answers to the revenue questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.provider()
			if err != nil {
				return err
			}
			svc := service.NewReportService(repository.NewReportRepository(p), repository.NewRevenueRepository(p))
			plan = strings.TrimSpace(plan)
			if plan == "" {
				plan = service.CountPlan
			}
			ctx := cmd.Context()
			d := svc.Dashboard(ctx)
			if plan != service.CountPlan {
				d.PlanCityCount.Value, d.PlanCityCount.Err = svc.PlanCityCount(ctx, plan)
			}
			writeReport(cmd.OutOrStdout(), d, plan)
			return nil
		},
	}
	cmd.Flags().StringVar(&plan, "plan", service.CountPlan, "Plan to count contributing cities for")
	return cmd
}

// writeReport prints one line per question. A failed question prints its
// placeholder and the rest still print.
func writeReport(w io.Writer, d service.Dashboard, plan string) {
	line := func(n int, text string, err error) {
		if err != nil {
			text = placeholder(err)
		}
		fmt.Fprintf(w, "Ans %d: %s\n", n, text)
	}

	line(1, fmt.Sprintf("Total revenue: %v crores", d.TotalRevenue.Value), d.TotalRevenue.Err)

	var text string
	if v := d.PeakCityDay.Value; v != nil {
		text = fmt.Sprintf("City %d had the highest revenue on %s: %.2f crores", v.CityCode, v.Date.Format(model.DateLayout), v.Total)
	}
	line(2, text, d.PeakCityDay.Err)

	text = ""
	if v := d.TopPlan.Value; v != nil {
		text = fmt.Sprintf("Plan %s generated the most revenue: %.2f crores", v.Plan, v.Total)
	}
	line(3, text, d.TopPlan.Err)

	line(4, fmt.Sprintf("%d cities contributed revenue for plan %s", d.PlanCityCount.Value, plan), d.PlanCityCount.Err)

	text = ""
	if v := d.TopCityByBestPlan.Value; v != nil {
		text = fmt.Sprintf("City %d leads on best-plan revenue: %.2f crores", v.CityCode, v.Total)
	}
	line(5, text, d.TopCityByBestPlan.Err)
}

func placeholder(err error) string {
	if errors.Is(err, service.ErrNoData) {
		return "No data available."
	}
	return "Error fetching record."
}
