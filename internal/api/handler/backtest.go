package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hindsightlab/hindsight/internal/api/job"
	"github.com/hindsightlab/hindsight/internal/api/response"
	"github.com/hindsightlab/hindsight/internal/archive"
	"github.com/hindsightlab/hindsight/internal/backtest"
	"github.com/hindsightlab/hindsight/internal/core"
	"github.com/hindsightlab/hindsight/internal/metrics"
	"github.com/hindsightlab/hindsight/internal/perf"
	"github.com/hindsightlab/hindsight/internal/sim"
	"github.com/hindsightlab/hindsight/internal/strategy/crossover"
)

const backtestTimeout = 5 * time.Minute

// BacktestRequest is the request body for starting a simulation.
type BacktestRequest struct {
	Instrument string            `json:"instrument"`
	Points     []core.PricePoint `json:"points"`

	// Optional overrides of the configured defaults.
	InitialCash  *float64 `json:"initial_cash,omitempty"`
	RiskFraction *float64 `json:"risk_fraction,omitempty"`

	// When set, signals in Points are replaced by a moving average
	// crossover rule. A period left out falls back to the configured
	// default.
	FastPeriod *int `json:"fast_period,omitempty"`
	SlowPeriod *int `json:"slow_period,omitempty"`
}

// Defaults carries the configured simulation, analysis and strategy
// parameters requests can override per field.
type Defaults struct {
	Sim        sim.Options
	Perf       perf.Options
	FastPeriod int
	SlowPeriod int
}

// BacktestHandler runs simulations as async jobs.
type BacktestHandler struct {
	jobStore *job.Store
	defaults Defaults
	reg      *metrics.Registry
	store    archive.Store // optional, archives finished runs
	logger   *zap.Logger
}

// NewBacktestHandler creates a new backtest handler. The archive store may
// be nil, in which case results live only in the job store.
func NewBacktestHandler(
	jobStore *job.Store,
	defaults Defaults,
	reg *metrics.Registry,
	store archive.Store,
	logger *zap.Logger,
) *BacktestHandler {
	return &BacktestHandler{
		jobStore: jobStore,
		defaults: defaults,
		reg:      reg,
		store:    store,
		logger:   logger,
	}
}

// Create starts a new simulation job.
func (h *BacktestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrInvalidSeries, err))
		return
	}

	if req.Instrument == "" {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigMissing, nil))
		return
	}
	if len(req.Points) == 0 {
		response.Error(w, http.StatusBadRequest, core.ErrNoData)
		return
	}

	simOpts := h.defaults.Sim
	if req.InitialCash != nil {
		simOpts.InitialCash = *req.InitialCash
	}
	if req.RiskFraction != nil {
		simOpts.RiskFraction = *req.RiskFraction
	}

	series := req.Points
	if req.FastPeriod != nil || req.SlowPeriod != nil {
		fast, slow := h.defaults.FastPeriod, h.defaults.SlowPeriod
		if req.FastPeriod != nil {
			fast = *req.FastPeriod
		}
		if req.SlowPeriod != nil {
			slow = *req.SlowPeriod
		}
		rule, err := crossover.New(fast, slow)
		if err != nil {
			response.Error(w, http.StatusBadRequest, err)
			return
		}
		series, err = rule.Annotate(series)
		if err != nil {
			response.Error(w, response.StatusFor(err), err)
			return
		}
	}

	runner, err := backtest.New(simOpts, h.defaults.Perf)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}
	if h.reg != nil {
		runner.UseMetrics(h.reg)
	}

	j := h.jobStore.Create("backtest")

	go h.run(j.ID, runner, req.Instrument, series)

	response.JSON(w, http.StatusAccepted, map[string]any{
		"job_id": j.ID,
		"status": j.Status,
	})
}

// run executes the simulation and updates job status.
func (h *BacktestHandler) run(jobID string, runner *backtest.Runner, instrument string, series []core.PricePoint) {
	h.update(jobID, func(j *job.Job) {
		j.Status = job.StatusRunning
	})
	h.trackActive()

	ctx, cancel := context.WithTimeout(context.Background(), backtestTimeout)
	defer cancel()

	result, err := runner.Run(ctx, instrument, series)
	if err != nil {
		h.logger.Warn("simulation failed",
			zap.String("job_id", jobID),
			zap.String("instrument", instrument),
			zap.Error(err))
		h.update(jobID, func(j *job.Job) {
			j.Status = job.StatusFailed
			var ce *core.Error
			if !errors.As(err, &ce) {
				ce = core.WrapError(core.ErrSimulationFailed, err)
			}
			j.Error = ce
		})
		h.trackActive()
		return
	}

	if h.store != nil {
		if err := archive.WriteResult(ctx, h.store, result); err != nil {
			h.logger.Warn("archiving run failed",
				zap.String("run_id", result.RunID),
				zap.Error(err))
		}
	}

	h.logger.Info("simulation complete",
		zap.String("job_id", jobID),
		zap.String("run_id", result.RunID),
		zap.Int("trades", len(result.Trades)))

	h.update(jobID, func(j *job.Job) {
		j.Status = job.StatusComplete
		j.Result = result
	})
	h.trackActive()
}

// update applies a job mutation, logging when the job is gone from the
// store instead of dropping the error.
func (h *BacktestHandler) update(jobID string, fn func(*job.Job)) {
	if err := h.jobStore.Update(jobID, fn); err != nil {
		h.logger.Warn("job update dropped",
			zap.String("job_id", jobID),
			zap.Error(err))
	}
}

func (h *BacktestHandler) trackActive() {
	if h.reg != nil {
		h.reg.SetJobsActive("backtest", h.jobStore.ActiveCount())
	}
}

// Get returns the status of a simulation job.
func (h *BacktestHandler) Get(w http.ResponseWriter, r *http.Request) {
	j, err := h.jobStore.Get(r.PathValue("id"))
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	response.JSON(w, http.StatusOK, j)
}

// List returns all live jobs.
func (h *BacktestHandler) List(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.jobStore.List())
}
