// Command fleetnoxd serves the fleet NOx analytics HTTP API: CSV upload,
// normalization into analysis sessions, summary/ranking computation, CSV
// exports, and map playback windows.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/fleet-nox-analytics/internal/adapter/httpapi"
	"github.com/couchcryptid/fleet-nox-analytics/internal/config"
	"github.com/couchcryptid/fleet-nox-analytics/internal/ingest"
	"github.com/couchcryptid/fleet-nox-analytics/internal/observability"
	"github.com/couchcryptid/fleet-nox-analytics/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	schema, err := config.LoadSchema(cfg.SchemaConfigPath)
	if err != nil {
		logger.Error("failed to load schema config", "error", err)
		os.Exit(1)
	}
	if cfg.SchemaConfigPath != "" {
		logger.Info("schema overrides loaded", "path", cfg.SchemaConfigPath)
	}

	loader := ingest.NewLoader(schema, logger, metrics)
	store := session.NewStore(cfg.SessionTTL, clockwork.NewRealClock(), metrics)
	srv := httpapi.NewServer(cfg, loader, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
