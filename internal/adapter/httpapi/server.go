// Package httpapi exposes the analysis core over HTTP. It is the
// interface boundary of the presentation layer: every route either loads
// data into a session or reads derived outputs back out; no analytic
// decisions live here.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/fleet-nox-analytics/internal/config"
	"github.com/couchcryptid/fleet-nox-analytics/internal/ingest"
	"github.com/couchcryptid/fleet-nox-analytics/internal/session"
)

// Server exposes the ingestion and analytics routes plus health,
// readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
	loader     *ingest.Loader
	store      *session.Store
}

// NewServer wires the router. The service has no asynchronous
// dependencies, so readiness follows liveness.
func NewServer(cfg *config.Config, loader *ingest.Loader, store *session.Store, logger *slog.Logger) *Server {
	s := &Server{
		logger: logger,
		cfg:    cfg,
		loader: loader,
		store:  store,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteSession)
			r.Get("/summary", s.handleSummary)
			r.Get("/ranking", s.handleRanking)
			r.Get("/ranking.csv", s.handleRankingCSV)
			r.Get("/metrics.csv", s.handleGlobalMetricsCSV)
			r.Get("/records", s.handleRecords)
			r.Get("/charts/vehicle-means", s.handleVehicleMeans)
			r.Get("/charts/hourly-means", s.handleHourlyMeans)
			r.Get("/playback", s.handlePlayback)
		})
	})

	s.httpServer = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// requestLogger logs one line per request with method, path, status, and
// duration.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
