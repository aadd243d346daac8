package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wellshed/wellrisk/internal/domain"
)

// ReadinessChecker reports whether at least one analysis has completed.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// ResultProvider returns the most recent result set, or nil before the
// first run finishes.
type ResultProvider interface {
	Latest() *domain.ResultSet
}

// Server exposes health, readiness, metrics, and scoring result endpoints.
type Server struct {
	httpServer *http.Server
	results    ResultProvider
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// /results, and /results/{id} routes.
func NewServer(addr string, ready ReadinessChecker, results ResultProvider, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		results: results,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /results", s.handleResults)
	mux.HandleFunc("GET /results/{id}", s.handleResultByID)

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

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func (s *Server) handleResults(w http.ResponseWriter, _ *http.Request) {
	rs := s.results.Latest()
	if rs == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no analysis has completed yet"})
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

func (s *Server) handleResultByID(w http.ResponseWriter, r *http.Request) {
	rs := s.results.Latest()
	if rs == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no analysis has completed yet"})
		return
	}

	id := r.PathValue("id")
	for i := range rs.Results {
		if rs.Results[i].Well.ID == id {
			writeJSON(w, http.StatusOK, rs.Results[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown well id: " + id})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}
