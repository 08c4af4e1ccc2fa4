package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/jszwec/csvutil"
	"github.com/shinyyama/revenue-dashboard/internal/config"
	"github.com/shinyyama/revenue-dashboard/internal/db"
	"github.com/shinyyama/revenue-dashboard/internal/repository"
	"github.com/shinyyama/revenue-dashboard/internal/service"
)

type seedRow struct {
	Date          string `csv:"date"`
	CityCode      string `csv:"city_code"`
	Plan          string `csv:"plans"`
	RevenueCrores string `csv:"plan_revenue_crores"`
}

var (
	seedCities = []int{1, 2, 3, 4, 5, 6}
	seedPlans  = []string{"p1", "p2", "p3", "p4"}
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	months := 3
	if v := os.Getenv("SEED_MONTHS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid SEED_MONTHS %q", v)
		}
		months = n
	}
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	// SEED_OUT only writes the CSV files; nothing touches the database.
	if dir := os.Getenv("SEED_OUT"); dir != "" {
		for m := 0; m < months; m++ {
			name, data, err := buildSeedFile(start.AddDate(0, m, 0))
			if err != nil {
				return err
			}
			if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", name, err)
			}
			log.Printf("wrote %s", name)
		}
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	provider := db.NewProvider(db.MySQL(cfg))
	if err := db.EnsureSchema(ctx, provider); err != nil {
		return err
	}

	revenueRepo := repository.NewRevenueRepository(provider)
	canSeed, err := shouldSeed(ctx, revenueRepo)
	if err != nil {
		return err
	}
	if !canSeed {
		log.Printf("revenue rows already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	svc := service.NewImportService(repository.NewLedgerRepository(provider), revenueRepo, nil)
	for m := 0; m < months; m++ {
		name, data, err := buildSeedFile(start.AddDate(0, m, 0))
		if err != nil {
			return err
		}
		o := svc.ProcessFile(ctx, name, data)
		log.Printf("%s: %s", o.Status, o.Message)
		if o.Status == service.ImportFailed {
			return fmt.Errorf("seed %s: %w", name, o.Err)
		}
	}
	return nil
}

// buildSeedFile renders one month of rows. Values are derived from the date,
// city and plan so reruns produce identical files.
func buildSeedFile(month time.Time) (string, []byte, error) {
	var rows []seedRow
	for d := month; d.Month() == month.Month(); d = d.AddDate(0, 0, 1) {
		for ci, city := range seedCities {
			for pi, plan := range seedPlans {
				cents := 150 + (d.Day()*37+ci*53+pi*71)%900
				rows = append(rows, seedRow{
					Date:          seedDate(d, ci),
					CityCode:      strconv.Itoa(city),
					Plan:          plan,
					RevenueCrores: strconv.FormatFloat(float64(cents)/100, 'f', 2, 64),
				})
			}
		}
	}
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return "", nil, fmt.Errorf("marshal seed rows: %w", err)
	}
	name := fmt.Sprintf("revenue_%s.csv", strings.ReplaceAll(month.Format("2006-01"), "-", "_"))
	return name, data, nil
}

// seedDate mixes the date spellings seen in exported sheets.
func seedDate(d time.Time, i int) string {
	switch i % 3 {
	case 1:
		return d.Format("01/02/2006")
	case 2:
		return d.Format("2 Jan 2006")
	default:
		return d.Format("2006-01-02")
	}
}

func shouldSeed(ctx context.Context, repo repository.RevenueRepository) (bool, error) {
	cnt, err := repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count revenue rows: %w", err)
	}
	if cnt == 0 {
		return true, nil
	}
	force := os.Getenv("FORCE_SEED")
	return strings.EqualFold(force, "true"), nil
}
