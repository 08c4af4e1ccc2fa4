package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/shinyyama/revenue-dashboard/internal/config"
	"github.com/shinyyama/revenue-dashboard/internal/db"
	"github.com/spf13/cobra"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type rootOptions struct {
	sqlitePath string
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "revenuectl",
		Short:         "Import revenue CSV files and print the revenue report",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.sqlitePath, "sqlite", "", "Use a local SQLite file instead of MySQL")

	cmd.AddCommand(
		newMigrateCmd(&opts),
		newImportCmd(&opts),
		newReportCmd(&opts),
		newWatchCmd(&opts),
	)
	return cmd
}

// provider builds the connection provider from --sqlite or the MySQL config.
func (o *rootOptions) provider() (*db.Provider, error) {
	if o.sqlitePath != "" {
		path := o.sqlitePath
		return db.NewProvider(func() gorm.Dialector { return sqlite.Open(path) }), nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return db.NewProvider(db.MySQL(cfg)), nil
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the revenue and import ledger tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.provider()
			if err != nil {
				return err
			}
			if err := db.EnsureSchema(cmd.Context(), p); err != nil {
				return err
			}
			log.Printf("schema ready")
			return nil
		},
	}
}
