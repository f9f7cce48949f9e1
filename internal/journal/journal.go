package journal

import (
	"time"

	"github.com/hindsightlab/hindsight/internal/backtest"
)

// TradeRecord is one executed trade as persisted, keyed by the run that
// produced it.
type TradeRecord struct {
	RunID      string
	Instrument string
	Quantity   float64
	Price      float64
	Index      int
	Time       time.Time
}

// RunRecord is the persisted summary of one completed simulation run.
type RunRecord struct {
	RunID          string
	Instrument     string
	Start          time.Time
	End            time.Time
	Points         int
	Trades         int
	FinalCash      float64
	TotalReturn    float64
	AnnualReturn   float64
	Volatility     float64
	SharpeRatio    float64
	PnL            float64
	AvgTradeReturn float64
	WinRate        float64
}

// Journal persists trades and run summaries.
type Journal interface {
	RecordTrade(TradeRecord) error
	RecordRun(RunRecord) error
	Close() error
}

// FromResult flattens a run result into its journal records.
func FromResult(res *backtest.Result) (RunRecord, []TradeRecord) {
	run := RunRecord{
		RunID:          res.RunID,
		Instrument:     res.Instrument,
		Start:          res.Start,
		End:            res.End,
		Points:         res.Points,
		Trades:         len(res.Trades),
		FinalCash:      res.Ledger.Cash,
		TotalReturn:    res.Summary.TotalReturn,
		AnnualReturn:   res.Summary.AnnualReturn,
		Volatility:     res.Summary.Volatility,
		SharpeRatio:    res.Summary.SharpeRatio,
		PnL:            res.Summary.PnL,
		AvgTradeReturn: res.Summary.AvgTradeReturn,
		WinRate:        res.Summary.WinRate,
	}

	trades := make([]TradeRecord, len(res.Trades))
	for i, t := range res.Trades {
		trades[i] = TradeRecord{
			RunID:      res.RunID,
			Instrument: t.Instrument,
			Quantity:   t.Quantity,
			Price:      t.Price,
			Index:      t.Index,
			Time:       t.Time,
		}
	}
	return run, trades
}

// Record writes a full run result to the journal, trades first.
func Record(j Journal, res *backtest.Result) error {
	run, trades := FromResult(res)
	for _, t := range trades {
		if err := j.RecordTrade(t); err != nil {
			return err
		}
	}
	return j.RecordRun(run)
}
