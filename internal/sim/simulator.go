package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/hindsightlab/hindsight/internal/core"
)

// Options configures a simulation run.
type Options struct {
	// InitialCash is the starting balance of the ledger.
	InitialCash float64
	// RiskFraction is the proportion of current cash committed to a single
	// buy order. Must be in (0, 1].
	RiskFraction float64
	// AllowNegativeCash keeps the unlimited-credit model: buys are never
	// rejected, and the ledger cash may go negative. When false, a buy whose
	// cost cannot be covered by non-negative cash is skipped entirely.
	AllowNegativeCash bool
	// LogZeroQuantity controls whether a buy sized to exactly zero units
	// (zero available cash) still appends a trade to the log. Zero-quantity
	// trades change trade-count-dependent metrics, so both behaviors are
	// supported; logging them is the default.
	LogZeroQuantity bool
	// Progress, when set, is called after each processed step.
	Progress func(step, total int)
}

// DefaultOptions returns the standard simulation parameters.
func DefaultOptions() Options {
	return Options{
		InitialCash:       1_000_000,
		RiskFraction:      0.02,
		AllowNegativeCash: true,
		LogZeroQuantity:   true,
	}
}

// Validate checks option bounds.
func (o Options) Validate() error {
	if o.InitialCash <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("initial cash must be positive, got %f", o.InitialCash))
	}
	if o.RiskFraction <= 0 || o.RiskFraction > 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("risk fraction must be in (0, 1], got %f", o.RiskFraction))
	}
	return nil
}

// Simulator walks a signal-annotated price series once and maintains the
// cash/position ledger and the trade log. It has exactly two states, idle and
// completed: a simulator cannot be run twice, use a fresh one per run.
type Simulator struct {
	opts   Options
	ledger core.Ledger
	trades []core.Trade
	done   bool
}

// New creates an idle simulator, validating the options.
func New(opts Options) (*Simulator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{
		opts:   opts,
		ledger: core.NewLedger(opts.InitialCash),
	}, nil
}

// Run executes the single forward pass over the series. Buy orders are sized
// from the cash balance as it stands at each step, so the pass is inherently
// sequential: every step depends on the cumulative cash effect of all prior
// steps. A sell signal closes the full long position and never opens a short;
// with nothing held it is a no-op.
func (s *Simulator) Run(ctx context.Context, instrument string, series []core.PricePoint) error {
	if s.done {
		return core.ErrSimulationDone
	}
	if len(series) == 0 {
		return core.ErrNoData
	}
	if err := core.ValidateSeries(series); err != nil {
		return err
	}

	// The ledger mutates from here on; the simulator is spent either way.
	s.done = true

	for i, p := range series {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		switch p.Signal {
		case core.SignalBuy:
			qty := (s.ledger.Cash * s.opts.RiskFraction) / p.Close
			if !s.opts.AllowNegativeCash && s.ledger.Cash-qty*p.Close < 0 {
				continue
			}
			if qty == 0 && !s.opts.LogZeroQuantity {
				continue
			}
			s.execute(instrument, qty, p.Close, i, p.Time)

		case core.SignalSell:
			held := s.ledger.Position(instrument)
			if held > 0 {
				s.execute(instrument, -held, p.Close, i, p.Time)
			}

		case core.SignalHold:
		}

		if s.opts.Progress != nil {
			s.opts.Progress(i+1, len(series))
		}
	}

	return nil
}

// execute applies a signed-quantity fill to the ledger and appends it to the
// trade log. It always succeeds: solvency is the caller's policy.
func (s *Simulator) execute(instrument string, qty, price float64, index int, at time.Time) {
	s.ledger.Cash -= qty * price
	s.ledger.Positions[instrument] += qty
	s.trades = append(s.trades, core.Trade{
		Instrument: instrument,
		Quantity:   qty,
		Price:      price,
		Index:      index,
		Time:       at,
	})
}

// PortfolioValue returns cash plus positions marked at a single price.
// Pure, no side effects.
func (s *Simulator) PortfolioValue(price float64) float64 {
	return s.ledger.Value(price)
}

// Ledger returns a snapshot of the current ledger state.
func (s *Simulator) Ledger() core.Ledger {
	return s.ledger.Clone()
}

// Trades returns a copy of the trade log in execution order.
func (s *Simulator) Trades() []core.Trade {
	out := make([]core.Trade, len(s.trades))
	copy(out, s.trades)
	return out
}

// Completed reports whether the simulator has consumed its single run.
func (s *Simulator) Completed() bool {
	return s.done
}
