package crossover

import (
	"fmt"

	"github.com/hindsightlab/hindsight/internal/core"
	"github.com/hindsightlab/hindsight/internal/indicator"
	"github.com/hindsightlab/hindsight/internal/strategy"
)

var _ strategy.Rule = (*Crossover)(nil)

// Crossover is the classic moving-average crossover rule: buy while the
// fast SMA sits above the slow SMA, sell while it sits below. Points before
// the slow window has filled carry a hold signal.
type Crossover struct {
	fastPeriod int
	slowPeriod int
}

// New creates a crossover rule with the given window lengths.
func New(fastPeriod, slowPeriod int) (*Crossover, error) {
	if fastPeriod <= 0 || slowPeriod <= 0 {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("periods must be positive, got %d/%d", fastPeriod, slowPeriod))
	}
	if fastPeriod >= slowPeriod {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("fast period %d must be shorter than slow period %d", fastPeriod, slowPeriod))
	}
	return &Crossover{fastPeriod: fastPeriod, slowPeriod: slowPeriod}, nil
}

func (c *Crossover) Name() string {
	return fmt.Sprintf("sma_crossover_%d_%d", c.fastPeriod, c.slowPeriod)
}

// Annotate fills the signal column from the SMA comparison at each point.
func (c *Crossover) Annotate(points []core.PricePoint) ([]core.PricePoint, error) {
	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}

	fastMA := indicator.SMA(closes, c.fastPeriod)
	slowMA := indicator.SMA(closes, c.slowPeriod)

	out := make([]core.PricePoint, len(points))
	copy(out, points)

	for i := range out {
		fast, okFast := indicator.At(fastMA, c.fastPeriod, i)
		slow, okSlow := indicator.At(slowMA, c.slowPeriod, i)
		switch {
		case !okFast || !okSlow:
			out[i].Signal = core.SignalHold
		case fast > slow:
			out[i].Signal = core.SignalBuy
		default:
			out[i].Signal = core.SignalSell
		}
	}

	return out, nil
}
