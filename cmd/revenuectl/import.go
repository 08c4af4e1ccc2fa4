package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shinyyama/revenue-dashboard/internal/db"
	"github.com/shinyyama/revenue-dashboard/internal/repository"
	"github.com/shinyyama/revenue-dashboard/internal/service"
	"github.com/shinyyama/revenue-dashboard/internal/watch"
	"github.com/spf13/cobra"
)

func newImportService(conn db.Conn) service.ImportService {
	return service.NewImportService(
		repository.NewLedgerRepository(conn),
		repository.NewRevenueRepository(conn),
		nil,
	)
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE...",
		Short: "Import one or more CSV files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.provider()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := db.EnsureSchema(ctx, p); err != nil {
				return err
			}

			uploads := make([]service.Upload, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				uploads = append(uploads, service.Upload{Filename: filepath.Base(path), Data: data})
			}

			failed := 0
			for _, o := range newImportService(p).ProcessFiles(ctx, uploads) {
				printOutcome(cmd, o)
				if o.Status == service.ImportFailed {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(uploads))
			}
			return nil
		},
	}
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch DIR",
		Short: "Import CSV files as they land in DIR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.provider()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := db.EnsureSchema(ctx, p); err != nil {
				return err
			}

			w := watch.New(args[0], newImportService(p))
			outcomes, err := w.Backfill(ctx)
			if err != nil {
				return err
			}
			for _, o := range outcomes {
				printOutcome(cmd, o)
			}
			if err := w.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			return nil
		},
	}
}

func printOutcome(cmd *cobra.Command, o service.Outcome) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "[%s] %s\n", o.Status, o.Message)
	if o.Status == service.ImportImported {
		fmt.Fprintf(out, "    inserted=%d rejected=%d duplicates=%d dropped=%d malformed=%d\n",
			o.Inserted, o.Rejected, o.Duplicates, o.Dropped, o.Malformed)
	}
}
