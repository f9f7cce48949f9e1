package core

import "time"

// Signal is a per-period directional indicator produced by a trading rule.
type Signal int

const (
	SignalSell Signal = -1
	SignalHold Signal = 0
	SignalBuy  Signal = 1
)

// String returns the signal name.
func (s Signal) String() string {
	switch s {
	case SignalBuy:
		return "buy"
	case SignalSell:
		return "sell"
	case SignalHold:
		return "hold"
	}
	return "unknown"
}

// IsValid checks that the signal is one of the three known values.
func (s Signal) IsValid() bool {
	return s == SignalBuy || s == SignalSell || s == SignalHold
}

// PricePoint is a single timestamped observation with its pre-computed signal.
type PricePoint struct {
	Time   time.Time `json:"time"`
	Close  float64   `json:"close"`
	Signal Signal    `json:"signal"`
}

// ValidateSeries checks that a price series is usable for simulation:
// strictly increasing timestamps, positive closes, known signal values.
func ValidateSeries(points []PricePoint) error {
	for i, p := range points {
		if p.Close <= 0 {
			return WrapError(ErrInvalidSeries, seriesErr(i, "close price must be positive"))
		}
		if !p.Signal.IsValid() {
			return WrapError(ErrInvalidSeries, seriesErr(i, "signal must be -1, 0 or +1"))
		}
		if i > 0 && !points[i-1].Time.Before(p.Time) {
			return WrapError(ErrInvalidSeries, seriesErr(i, "timestamps must be strictly increasing"))
		}
	}
	return nil
}

// HasSignals reports whether any point carries a non-hold signal. An
// all-hold series is indistinguishable from one loaded without a signal
// column and usually needs a rule to annotate it.
func HasSignals(points []PricePoint) bool {
	for _, p := range points {
		if p.Signal != SignalHold {
			return true
		}
	}
	return false
}

// Trade is an immutable record of a single execution. Quantity is signed:
// positive for buys, negative for sells.
type Trade struct {
	Instrument string    `json:"instrument"`
	Quantity   float64   `json:"quantity"`
	Price      float64   `json:"price"`
	Index      int       `json:"index"`
	Time       time.Time `json:"time"`
}

// IsBuy returns true for positive-quantity trades.
func (t Trade) IsBuy() bool {
	return t.Quantity > 0
}

// Notional returns the absolute cash value of the trade.
func (t Trade) Notional() float64 {
	n := t.Quantity * t.Price
	if n < 0 {
		return -n
	}
	return n
}

// Ledger is the cash and position state of a simulation. Cash may go
// negative under the unlimited-credit model; quantities may be fractional.
type Ledger struct {
	Cash      float64            `json:"cash"`
	Positions map[string]float64 `json:"positions"`
}

// NewLedger creates a ledger with the given starting cash and no positions.
func NewLedger(cash float64) Ledger {
	return Ledger{
		Cash:      cash,
		Positions: make(map[string]float64),
	}
}

// Position returns the held quantity for an instrument, zero if absent.
func (l Ledger) Position(instrument string) float64 {
	return l.Positions[instrument]
}

// Value returns cash plus the mark-to-market value of every position at a
// single uniform price. Valid because the model holds exactly one instrument.
func (l Ledger) Value(price float64) float64 {
	total := l.Cash
	for _, qty := range l.Positions {
		total += qty * price
	}
	return total
}

// Clone returns a deep copy of the ledger.
func (l Ledger) Clone() Ledger {
	positions := make(map[string]float64, len(l.Positions))
	for k, v := range l.Positions {
		positions[k] = v
	}
	return Ledger{Cash: l.Cash, Positions: positions}
}
