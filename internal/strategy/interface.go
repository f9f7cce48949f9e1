package strategy

import "github.com/hindsightlab/hindsight/internal/core"

// Rule annotates a raw price series with a directional signal per point. The
// simulator consumes the annotated series; rules never see the ledger.
type Rule interface {
	Name() string

	// Annotate returns a copy of the series with the Signal column filled
	// in. The input is never mutated.
	Annotate(points []core.PricePoint) ([]core.PricePoint, error)
}
