package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/health-surveillance-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	errMsgNotArray    = "Expecting a JSON array of reports"
	errMsgInvalidJSON = "Invalid JSON body"
	errMsgUnreadable  = "Could not read request body"
	errMsgTooLarge    = "Request body too large"
)

// Analyzer scores and aggregates a batch of reports.
type Analyzer interface {
	Analyze(ctx context.Context, reports []domain.Report) domain.Analysis
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// ReadinessFunc adapts a function to ReadinessChecker.
type ReadinessFunc func(ctx context.Context) error

func (f ReadinessFunc) CheckReadiness(ctx context.Context) error { return f(ctx) }

// AlwaysReady is used when no background pipeline gates readiness.
var AlwaysReady = ReadinessFunc(func(context.Context) error { return nil })

// Server exposes the analysis API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer   *http.Server
	analyzer     Analyzer
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewServer creates an HTTP server with /analyze, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, analyzer Analyzer, ready ReadinessChecker, maxBodyBytes int64, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		analyzer:     analyzer,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}

	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

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

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, errMsgTooLarge)
			return
		}
		s.logger.WarnContext(r.Context(), "read request body failed", "error", err)
		writeError(w, http.StatusBadRequest, errMsgUnreadable)
		return
	}

	reports, err := domain.DecodeReports(body)
	if err != nil {
		if errors.Is(err, domain.ErrNotArray) {
			writeError(w, http.StatusBadRequest, errMsgNotArray)
			return
		}
		writeError(w, http.StatusBadRequest, errMsgInvalidJSON)
		return
	}

	analysis := s.analyzer.Analyze(r.Context(), reports)
	s.logger.InfoContext(r.Context(), "analysis served",
		"analysis_id", analysis.ID,
		"reports", analysis.TotalReports,
		"overall_risk", analysis.OverallRisk,
	)
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
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

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
