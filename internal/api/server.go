package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hindsightlab/hindsight/internal/api/handler"
	"github.com/hindsightlab/hindsight/internal/api/job"
	"github.com/hindsightlab/hindsight/internal/archive"
	"github.com/hindsightlab/hindsight/internal/metrics"
	"github.com/hindsightlab/hindsight/internal/perf"
	"github.com/hindsightlab/hindsight/internal/sim"
)

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	JobTTL      time.Duration
	MaxJobs     int
	MetricsPath string
}

// Options carries the simulation defaults applied to incoming requests,
// including the crossover periods used when a request names only part of a
// strategy.
type Options struct {
	Sim        sim.Options
	Perf       perf.Options
	FastPeriod int
	SlowPeriod int
}

// Server is the HTTP front end for running and retrieving simulations.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
}

// NewServer creates a new HTTP server. The archive store and metrics
// registry are both optional.
func NewServer(cfg Config, opts Options, store archive.Store, reg *metrics.Registry, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	jobStore := job.NewStore(cfg.MaxJobs, cfg.JobTTL)
	bt := handler.NewBacktestHandler(jobStore, handler.Defaults{
		Sim:        opts.Sim,
		Perf:       opts.Perf,
		FastPeriod: opts.FastPeriod,
		SlowPeriod: opts.SlowPeriod,
	}, reg, store, logger)

	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("POST /api/backtest", bt.Create)
	mux.HandleFunc("GET /api/backtest", bt.List)
	mux.HandleFunc("GET /api/backtest/{id}", bt.Get)

	if store != nil {
		runs := handler.NewRunsHandler(store)
		mux.HandleFunc("GET /api/runs", runs.List)
		mux.HandleFunc("GET /api/runs/{id}", runs.Get)
	}

	var root http.Handler = mux
	if reg != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, reg.Handler())
		root = metrics.HTTPMiddleware(reg)(mux)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      root,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		mux:    mux,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
