package backtest

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/hindsightlab/hindsight/internal/core"
	"github.com/hindsightlab/hindsight/internal/metrics"
	"github.com/hindsightlab/hindsight/internal/perf"
	"github.com/hindsightlab/hindsight/internal/sim"
)

func series(closes []float64, signals []core.Signal) []core.PricePoint {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	points := make([]core.PricePoint, len(closes))
	for i := range closes {
		points[i] = core.PricePoint{
			Time:   base.AddDate(0, 0, i),
			Close:  closes[i],
			Signal: signals[i],
		}
	}
	return points
}

func TestRunner_Run(t *testing.T) {
	runner, err := New(
		sim.Options{InitialCash: 1000, RiskFraction: 0.5, AllowNegativeCash: true, LogZeroQuantity: true},
		perf.DefaultOptions(),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	pts := series([]float64{100, 110, 121}, []core.Signal{core.SignalBuy, core.SignalHold, core.SignalSell})
	result, err := runner.Run(context.Background(), "ACME", pts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.RunID == "" {
		t.Error("expected a run ID")
	}
	if result.Instrument != "ACME" {
		t.Errorf("Instrument = %q, want ACME", result.Instrument)
	}
	if result.Points != 3 {
		t.Errorf("Points = %d, want 3", result.Points)
	}
	if !result.Start.Before(result.End) {
		t.Error("Start should precede End")
	}
	if len(result.Trades) != 2 {
		t.Errorf("expected 2 trades, got %d", len(result.Trades))
	}
	if math.Abs(result.Ledger.Cash-1105) > 1e-9 {
		t.Errorf("final cash = %f, want 1105", result.Ledger.Cash)
	}

	// Flat valuation (position closed): summary comes from the trade log.
	if math.Abs(result.Summary.PnL-1.05) > 1e-9 {
		t.Errorf("PnL = %f, want 1.05", result.Summary.PnL)
	}
	if result.Summary.WinRate != 1 {
		t.Errorf("WinRate = %f, want 1", result.Summary.WinRate)
	}
}

func TestRunner_Run_AllHold(t *testing.T) {
	runner, _ := New(sim.DefaultOptions(), perf.DefaultOptions())

	pts := series([]float64{100, 110, 121}, []core.Signal{core.SignalHold, core.SignalHold, core.SignalHold})
	result, err := runner.Run(context.Background(), "ACME", pts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Trades) != 0 {
		t.Errorf("expected empty trade log, got %d", len(result.Trades))
	}
	s := result.Summary
	if s.TotalReturn != 0 || s.PnL != 0 || s.WinRate != 0 {
		t.Errorf("all-hold run should be all zeros, got %+v", s)
	}
}

func TestRunner_Run_ShortSeries(t *testing.T) {
	runner, _ := New(sim.DefaultOptions(), perf.DefaultOptions())

	pts := series([]float64{100}, []core.Signal{core.SignalBuy})
	_, err := runner.Run(context.Background(), "ACME", pts)
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("error = %v, want ErrInsufficientData", err)
	}
}

func TestRunner_Run_EmptySeries(t *testing.T) {
	runner, _ := New(sim.DefaultOptions(), perf.DefaultOptions())

	_, err := runner.Run(context.Background(), "ACME", nil)
	if !errors.Is(err, core.ErrNoData) {
		t.Errorf("error = %v, want ErrNoData", err)
	}
}

func TestRunner_Run_Reusable(t *testing.T) {
	// The runner creates a fresh simulator each time, so back-to-back runs
	// start from the same initial cash.
	runner, _ := New(
		sim.Options{InitialCash: 1000, RiskFraction: 0.5, AllowNegativeCash: true, LogZeroQuantity: true},
		perf.DefaultOptions(),
	)
	pts := series([]float64{100, 110, 121}, []core.Signal{core.SignalBuy, core.SignalHold, core.SignalSell})

	first, err := runner.Run(context.Background(), "ACME", pts)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	second, err := runner.Run(context.Background(), "ACME", pts)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}

	if first.Ledger.Cash != second.Ledger.Cash {
		t.Errorf("runs not independent: %f vs %f", first.Ledger.Cash, second.Ledger.Cash)
	}
	if first.RunID == second.RunID {
		t.Error("runs should get distinct IDs")
	}
	if first.Summary != second.Summary {
		t.Errorf("summaries differ for identical inputs:\n%+v\n%+v", first.Summary, second.Summary)
	}
}

func TestRunner_Run_InvalidOptions(t *testing.T) {
	if _, err := New(sim.Options{InitialCash: 0, RiskFraction: 0.5}, perf.DefaultOptions()); err == nil {
		t.Error("expected error for invalid sim options")
	}
	if _, err := New(sim.DefaultOptions(), perf.Options{TradingDaysPerYear: -1}); err == nil {
		t.Error("expected error for invalid perf options")
	}
}

func TestRunner_Run_RecordsMetrics(t *testing.T) {
	reg := metrics.NewRegistry()
	runner, _ := New(sim.DefaultOptions(), perf.DefaultOptions())
	runner.UseMetrics(reg)

	pts := series([]float64{100, 110}, []core.Signal{core.SignalBuy, core.SignalSell})
	if _, err := runner.Run(context.Background(), "ACME", pts); err != nil {
		t.Fatalf("Run: %v", err)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	found := false
	for _, mf := range mfs {
		if mf.GetName() == "hindsight_simulations_total" {
			found = true
		}
	}
	if !found {
		t.Error("expected simulation metrics to be recorded")
	}
}

func TestRunner_Run_ContextCancellation(t *testing.T) {
	runner, _ := New(sim.DefaultOptions(), perf.DefaultOptions())

	closes := make([]float64, 50)
	signals := make([]core.Signal, 50)
	for i := range closes {
		closes[i] = 100
		signals[i] = core.SignalBuy
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := runner.Run(ctx, "ACME", series(closes, signals)); err == nil {
		t.Error("expected context cancellation error")
	}
}
