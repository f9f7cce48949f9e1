package main

import (
	"testing"
	"time"

	"github.com/hindsightlab/hindsight/internal/config"
	"github.com/hindsightlab/hindsight/internal/core"
)

func testSeries(signals ...core.Signal) []core.PricePoint {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	pts := make([]core.PricePoint, len(signals))
	for i, sig := range signals {
		pts[i] = core.PricePoint{Time: base.AddDate(0, 0, i), Close: 100, Signal: sig}
	}
	return pts
}

func TestSignalRule_FlagsWin(t *testing.T) {
	cfg := config.Defaults()
	series := testSeries(core.SignalBuy, core.SignalHold, core.SignalSell)

	rule, err := signalRule(series, 3, 10, cfg)
	if err != nil {
		t.Fatalf("signalRule: %v", err)
	}
	if rule == nil {
		t.Fatal("explicit periods must produce a rule even when signals exist")
	}
	if rule.Name() != "sma_crossover_3_10" {
		t.Errorf("rule = %q", rule.Name())
	}
}

func TestSignalRule_ConfigFallbackForSignallessSeries(t *testing.T) {
	cfg := config.Defaults()
	cfg.Strategy.FastPeriod = 5
	cfg.Strategy.SlowPeriod = 20
	series := testSeries(core.SignalHold, core.SignalHold, core.SignalHold)

	rule, err := signalRule(series, 0, 0, cfg)
	if err != nil {
		t.Fatalf("signalRule: %v", err)
	}
	if rule == nil {
		t.Fatal("signal-less series must fall back to the configured rule")
	}
	if rule.Name() != "sma_crossover_5_20" {
		t.Errorf("rule = %q, want configured periods", rule.Name())
	}
}

func TestSignalRule_NoRuleWhenSeriesHasSignals(t *testing.T) {
	cfg := config.Defaults()
	series := testSeries(core.SignalBuy, core.SignalHold, core.SignalSell)

	rule, err := signalRule(series, 0, 0, cfg)
	if err != nil {
		t.Fatalf("signalRule: %v", err)
	}
	if rule != nil {
		t.Errorf("series with signals needs no rule, got %q", rule.Name())
	}
}

func TestSignalRule_InvalidFlagPeriods(t *testing.T) {
	cfg := config.Defaults()
	series := testSeries(core.SignalHold)

	if _, err := signalRule(series, 10, 5, cfg); err == nil {
		t.Error("expected error for fast >= slow")
	}
}
