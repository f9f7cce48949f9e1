package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/hindsightlab/hindsight/internal/core"
)

// CSVJournal appends trades and run summaries to two CSV files.
type CSVJournal struct {
	trades *csv.Writer
	runs   *csv.Writer
	tf, rf *os.File
}

// NewCSV creates both files and writes their headers.
func NewCSV(tradesPath, runsPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, core.WrapError(core.ErrJournalFailed, err)
	}
	rf, err := os.Create(runsPath)
	if err != nil {
		tf.Close()
		return nil, core.WrapError(core.ErrJournalFailed, err)
	}

	tw := csv.NewWriter(tf)
	rw := csv.NewWriter(rf)

	if err := tw.Write([]string{"run_id", "instrument", "quantity", "price", "index", "time"}); err != nil {
		return nil, core.WrapError(core.ErrJournalFailed, err)
	}
	if err := rw.Write([]string{
		"run_id", "instrument", "start", "end", "points", "trades", "final_cash",
		"total_return", "annual_return", "volatility", "sharpe_ratio",
		"pnl", "avg_trade_return", "win_rate",
	}); err != nil {
		return nil, core.WrapError(core.ErrJournalFailed, err)
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, core.WrapError(core.ErrJournalFailed, err)
	}
	rw.Flush()
	if err := rw.Error(); err != nil {
		return nil, core.WrapError(core.ErrJournalFailed, err)
	}

	return &CSVJournal{trades: tw, runs: rw, tf: tf, rf: rf}, nil
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	j.trades.Write([]string{
		t.RunID,
		t.Instrument,
		f(t.Quantity),
		f(t.Price),
		strconv.Itoa(t.Index),
		t.Time.Format(time.RFC3339),
	})
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return core.WrapError(core.ErrJournalFailed, err)
	}
	return nil
}

func (j *CSVJournal) RecordRun(r RunRecord) error {
	j.runs.Write([]string{
		r.RunID,
		r.Instrument,
		r.Start.Format(time.RFC3339),
		r.End.Format(time.RFC3339),
		strconv.Itoa(r.Points),
		strconv.Itoa(r.Trades),
		f(r.FinalCash),
		f(r.TotalReturn),
		f(r.AnnualReturn),
		f(r.Volatility),
		f(r.SharpeRatio),
		f(r.PnL),
		f(r.AvgTradeReturn),
		f(r.WinRate),
	})
	j.runs.Flush()
	if err := j.runs.Error(); err != nil {
		return core.WrapError(core.ErrJournalFailed, err)
	}
	return nil
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.runs.Flush()
	if err := j.runs.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.rf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
