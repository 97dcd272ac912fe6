// Package server serves the rendered report and its analyses over HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rg0now/exam-trend-report/pkg/analyzer"
	"github.com/rg0now/exam-trend-report/pkg/config"
	"github.com/rg0now/exam-trend-report/pkg/export"
	"github.com/rg0now/exam-trend-report/pkg/models"
	"github.com/rg0now/exam-trend-report/pkg/render"
	"go.uber.org/zap"
)

// Server manages the HTTP server and routes. The dataset and config are
// read-only after New, so handlers share them without locking.
type Server struct {
	ds       models.Dataset
	cfg      *config.Config
	analyzer *analyzer.Analyzer
	builder  *render.Builder
	logger   *zap.Logger
	router   *mux.Router
	server   *http.Server
}

// New creates a new HTTP server for ds.
func New(ds models.Dataset, cfg *config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := analyzer.NewAnalyzer(logger)
	s := &Server{
		ds:       ds,
		cfg:      cfg,
		analyzer: a,
		builder:  render.NewBuilder(cfg, a, logger),
		logger:   logger,
	}
	s.router = s.setupRoutes()
	s.server = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.recoveryMiddleware, s.loggingMiddleware)

	router.HandleFunc("/", s.handleReport).Methods("GET")
	router.HandleFunc("/report.xlsx", s.handleWorkbook).Methods("GET")
	router.HandleFunc("/api/analyses", s.handleAnalyses).Methods("GET")
	router.HandleFunc("/api/analyses/{metric}", s.handleAnalysesByMetric).Methods("GET")
	router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	return router
}

// Run listens until ctx is cancelled, then shuts down within the configured
// grace period.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("HTTP server starting",
		zap.String("address", ln.Addr().String()),
		zap.String("student", s.ds.Student))

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server failed: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownGrace())
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return <-errCh
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.builder.Build(s.ds)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}

	var buf bytes.Buffer
	if err := render.WriteHTML(&buf, report); err != nil {
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleWorkbook(w http.ResponseWriter, r *http.Request) {
	report, err := s.builder.Build(s.ds)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, report); err != nil {
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="report.xlsx"`)
	w.Write(buf.Bytes())
}

func (s *Server) handleAnalyses(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.analyzer.AnalyzeAll(s.ds))
}

// handleAnalysesByMetric filters by metric, and by subject when ?subject= is
// given (id or Chinese label).
func (s *Server) handleAnalysesByMetric(w http.ResponseWriter, r *http.Request) {
	metric := models.Metric(mux.Vars(r)["metric"])
	if !metric.Valid() {
		s.respondError(w, http.StatusNotFound, fmt.Errorf("unknown metric %q", metric))
		return
	}

	var subject models.Subject
	if name := r.URL.Query().Get("subject"); name != "" {
		var err error
		if subject, err = models.ParseSubject(name); err != nil {
			s.respondError(w, http.StatusBadRequest, err)
			return
		}
	}

	results := make([]models.AnalysisResult, 0)
	for _, res := range s.analyzer.AnalyzeAll(s.ds) {
		if res.Metric != metric {
			continue
		}
		if subject != "" && res.Subject != subject {
			continue
		}
		results = append(results, res)
	}
	s.respondJSON(w, http.StatusOK, results)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
