package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shinyyama/revenue-dashboard/internal/archive"
	"github.com/shinyyama/revenue-dashboard/internal/config"
	"github.com/shinyyama/revenue-dashboard/internal/db"
	"github.com/shinyyama/revenue-dashboard/internal/handler"
	appmw "github.com/shinyyama/revenue-dashboard/internal/middleware"
	"github.com/shinyyama/revenue-dashboard/internal/repository"
	"github.com/shinyyama/revenue-dashboard/internal/service"
)

// Options carries the optional collaborators. Nil fields switch the feature
// off.
type Options struct {
	Archiver   archive.Archiver
	Summarizer handler.Summarizer
	Auth       *appmw.AuthMiddleware
	SHA        string
	BuildTime  string
}

type Server struct {
	e       *echo.Echo
	imports service.ImportService
	reports service.ReportService
}

func New(cfg *config.Config, conn db.Conn, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc:  allowOrigin(cfg.CORSOrigins),
	}))
	if cfg.MaxUploadMB > 0 {
		e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.MaxUploadMB)))
	}

	ledgerRepo := repository.NewLedgerRepository(conn)
	revenueRepo := repository.NewRevenueRepository(conn)
	reportRepo := repository.NewReportRepository(conn)

	importSvc := service.NewImportService(ledgerRepo, revenueRepo, opts.Archiver)
	reportSvc := service.NewReportService(reportRepo, revenueRepo)

	importHandler := handler.NewImportHandler(importSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	insightHandler := handler.NewInsightHandler(reportSvc, opts.Summarizer)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    opts.SHA,
			"build_time": opts.BuildTime,
		})
	})

	var guard []echo.MiddlewareFunc
	if opts.Auth != nil {
		guard = append(guard, opts.Auth.RequireAuth)
	}

	api := e.Group("/api")
	api.POST("/imports", importHandler.Upload, guard...)
	api.GET("/imports", importHandler.History)
	api.POST("/insights", insightHandler.Create, guard...)

	api.GET("/records", reportHandler.Records)
	reports := api.Group("/reports")
	reports.GET("/total-revenue", reportHandler.TotalRevenue)
	reports.GET("/peak-city-day", reportHandler.PeakCityDay)
	reports.GET("/top-plan", reportHandler.TopPlan)
	reports.GET("/plan-city-count", reportHandler.PlanCityCount)
	reports.GET("/top-city-best-plan", reportHandler.TopCityByBestPlan)
	reports.GET("/charts", reportHandler.Charts)
	reports.GET("/dashboard", reportHandler.Dashboard)

	return &Server{e: e, imports: importSvc, reports: reportSvc}
}

// Imports exposes the pipeline so the inbox watcher shares it with the HTTP
// surface.
func (s *Server) Imports() service.ImportService {
	return s.imports
}

func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func allowOrigin(extra []string) func(origin string) (bool, error) {
	allowed := make(map[string]bool, len(extra))
	for _, o := range extra {
		if o = strings.TrimRight(strings.TrimSpace(strings.ToLower(o)), "/"); o != "" {
			allowed[o] = true
		}
	}
	return func(origin string) (bool, error) {
		low := strings.ToLower(origin)
		if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
			strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
			return true, nil
		}
		u, err := url.Parse(low)
		if err != nil {
			return false, nil
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return false, nil
		}
		return allowed[u.Scheme+"://"+u.Host], nil
	}
}
