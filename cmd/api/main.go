package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shinyyama/revenue-dashboard/internal/ai"
	"github.com/shinyyama/revenue-dashboard/internal/archive"
	"github.com/shinyyama/revenue-dashboard/internal/config"
	"github.com/shinyyama/revenue-dashboard/internal/db"
	appmw "github.com/shinyyama/revenue-dashboard/internal/middleware"
	"github.com/shinyyama/revenue-dashboard/internal/server"
	"github.com/shinyyama/revenue-dashboard/internal/watch"
)

var (
	gitSHA    = "dev"
	buildTime = ""
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider := db.NewProvider(db.MySQL(cfg))
	if err := db.EnsureSchema(ctx, provider); err != nil {
		// Queries keep answering with placeholders until the store is back.
		log.Printf("schema init error: %v", err)
	}

	opts := server.Options{
		Summarizer: ai.NewInsightClient(cfg.GeminiAPIKey, cfg.GeminiModel),
		SHA:        gitSHA,
		BuildTime:  buildTime,
	}
	if cfg.StorageBucket != "" {
		archiver, err := archive.NewGCSArchiver(ctx, cfg.StorageBucket,
			archive.ClientOptions(cfg.StorageCredentialsFile, cfg.StorageEndpoint)...)
		if err != nil {
			log.Printf("archive disabled: %v", err)
		} else {
			defer archiver.Close()
			opts.Archiver = archiver
		}
	}
	authMw, err := appmw.NewAuthMiddleware(ctx, cfg.FirebaseProjectID)
	if err != nil {
		log.Fatalf("failed to init firebase auth: %v", err)
	}
	opts.Auth = authMw

	srv := server.New(cfg, provider, opts)

	if cfg.InboxDir != "" {
		w := watch.New(cfg.InboxDir, srv.Imports())
		if _, err := w.Backfill(ctx); err != nil {
			log.Printf("inbox backfill error: %v", err)
		}
		if err := w.Start(ctx); err != nil {
			log.Printf("inbox watch error: %v", err)
		}
	}

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Printf("starting server on %s", addr)
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server stopped: %v", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}
}
