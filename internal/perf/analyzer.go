package perf

import (
	"fmt"
	"math"

	"github.com/hindsightlab/hindsight/internal/core"
)

// Options configures the summary statistics.
type Options struct {
	// RiskFreeRate is subtracted from the annualized return in the Sharpe
	// ratio numerator.
	RiskFreeRate float64
	// TradingDaysPerYear is the annualization factor for returns and
	// volatility.
	TradingDaysPerYear int
}

// DefaultOptions returns the standard analysis parameters.
func DefaultOptions() Options {
	return Options{
		RiskFreeRate:       0.02,
		TradingDaysPerYear: 252,
	}
}

// Validate checks option bounds.
func (o Options) Validate() error {
	if o.TradingDaysPerYear <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("trading days per year must be positive, got %d", o.TradingDaysPerYear))
	}
	return nil
}

// Summary is the read-only record of performance metrics derived from one
// completed simulation.
type Summary struct {
	TotalReturn    float64 `json:"total_return"`
	AnnualReturn   float64 `json:"annual_return"`
	Volatility     float64 `json:"volatility"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	PnL            float64 `json:"pnl"`
	AvgTradeReturn float64 `json:"avg_trade_return"`
	WinRate        float64 `json:"win_rate"`
}

// Valuations marks the whole series to market with the ledger as it stands
// after the full simulation. Early points are therefore valued with positions
// acquired later in the pass, a look-ahead artifact of the model kept
// deliberately; see DESIGN.md.
func Valuations(series []core.PricePoint, ledger core.Ledger) []float64 {
	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = ledger.Value(p.Close)
	}
	return values
}

// ReturnSeries derives period-over-period portfolio returns from the
// valuation series: R[i] = (V[i+1]-V[i])/V[i]. A series shorter than two
// points has no defined returns and fails explicitly.
func ReturnSeries(series []core.PricePoint, ledger core.Ledger) ([]float64, error) {
	if len(series) < 2 {
		return nil, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("need at least 2 points, got %d", len(series)))
	}

	values := Valuations(series, ledger)
	returns := make([]float64, len(values)-1)
	for i := 0; i < len(values)-1; i++ {
		returns[i] = (values[i+1] - values[i]) / values[i]
	}
	return returns, nil
}

// Summarize computes the performance record for a completed simulation. It
// never mutates its inputs and is idempotent: the same series, ledger and
// trade log always produce an identical summary.
func Summarize(series []core.PricePoint, ledger core.Ledger, trades []core.Trade, opts Options) (Summary, error) {
	if err := opts.Validate(); err != nil {
		return Summary{}, err
	}

	returns, err := ReturnSeries(series, ledger)
	if err != nil {
		return Summary{}, err
	}

	values := Valuations(series, ledger)
	first, last := values[0], values[len(values)-1]
	days := float64(opts.TradingDaysPerYear)

	totalReturn := (last - first) / first
	// Annualization uses the number of series points, not elapsed calendar
	// days: the model treats each point as one trading day.
	annualReturn := math.Pow(1+totalReturn, days/float64(len(series))) - 1
	volatility := stdDev(returns) * math.Sqrt(days)

	var sharpe float64
	if volatility > 0 {
		sharpe = (annualReturn - opts.RiskFreeRate) / volatility
	}

	s := Summary{
		TotalReturn:  totalReturn,
		AnnualReturn: annualReturn,
		Volatility:   volatility,
		SharpeRatio:  sharpe,
	}
	s.PnL, s.AvgTradeReturn, s.WinRate = tradeMetrics(trades)
	return s, nil
}

// tradeMetrics aggregates the trade log independently of the valuation
// series. Returns are taken between consecutive log entries (any two
// adjacent trades, not matched buy/sell pairs) and each is weighted by the
// earlier trade's quantity. Fewer than two trades means the strategy
// effectively never traded, a valid outcome reported as all zeros.
func tradeMetrics(trades []core.Trade) (pnl, avgReturn, winRate float64) {
	if len(trades) < 2 {
		return 0, 0, 0
	}

	priceReturns := make([]float64, len(trades)-1)
	tradePnl := make([]float64, len(trades)-1)
	wins := 0
	for i := 0; i < len(trades)-1; i++ {
		priceReturns[i] = (trades[i+1].Price - trades[i].Price) / trades[i].Price
		tradePnl[i] = priceReturns[i] * trades[i].Quantity
		pnl += tradePnl[i]
		if tradePnl[i] > 0 {
			wins++
		}
	}

	avgReturn = mean(priceReturns)
	winRate = float64(wins) / float64(len(tradePnl))
	return pnl, avgReturn, winRate
}
