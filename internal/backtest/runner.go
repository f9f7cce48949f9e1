package backtest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hindsightlab/hindsight/internal/core"
	"github.com/hindsightlab/hindsight/internal/metrics"
	"github.com/hindsightlab/hindsight/internal/perf"
	"github.com/hindsightlab/hindsight/internal/sim"
)

// Result holds the complete output of one simulation run.
type Result struct {
	RunID      string       `json:"run_id"`
	Instrument string       `json:"instrument"`
	Start      time.Time    `json:"start"`
	End        time.Time    `json:"end"`
	Points     int          `json:"points"`
	Ledger     core.Ledger  `json:"ledger"`
	Trades     []core.Trade `json:"trades"`
	Summary    perf.Summary `json:"summary"`
}

// Runner drives one simulation pass followed by the analysis passes. The
// runner itself is reusable; it creates a fresh simulator for every run since
// simulators are single-use.
type Runner struct {
	simOpts  sim.Options
	perfOpts perf.Options
	metrics  *metrics.Registry
}

// New creates a Runner, validating both option sets up front.
func New(simOpts sim.Options, perfOpts perf.Options) (*Runner, error) {
	if err := simOpts.Validate(); err != nil {
		return nil, err
	}
	if err := perfOpts.Validate(); err != nil {
		return nil, err
	}
	return &Runner{simOpts: simOpts, perfOpts: perfOpts}, nil
}

// UseMetrics attaches a metrics registry; runs are then recorded.
func (r *Runner) UseMetrics(reg *metrics.Registry) {
	r.metrics = reg
}

// Run simulates the annotated series and derives its performance summary.
// The simulation pass must fully complete before either analysis pass reads
// the ledger or the trade log.
func (r *Runner) Run(ctx context.Context, instrument string, series []core.PricePoint) (*Result, error) {
	started := time.Now()

	result, err := r.run(ctx, instrument, series)

	if r.metrics != nil {
		status := "success"
		trades := 0
		if err != nil {
			status = "failed"
		} else {
			trades = len(result.Trades)
		}
		r.metrics.RecordSimulation(status, time.Since(started).Seconds(), len(series), trades)
	}

	return result, err
}

func (r *Runner) run(ctx context.Context, instrument string, series []core.PricePoint) (*Result, error) {
	simulator, err := sim.New(r.simOpts)
	if err != nil {
		return nil, err
	}

	if err := simulator.Run(ctx, instrument, series); err != nil {
		return nil, err
	}

	ledger := simulator.Ledger()
	trades := simulator.Trades()

	summary, err := perf.Summarize(series, ledger, trades, r.perfOpts)
	if err != nil {
		return nil, err
	}

	return &Result{
		RunID:      uuid.NewString(),
		Instrument: instrument,
		Start:      series[0].Time,
		End:        series[len(series)-1].Time,
		Points:     len(series),
		Ledger:     ledger,
		Trades:     trades,
		Summary:    summary,
	}, nil
}
