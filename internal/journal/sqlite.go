package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hindsightlab/hindsight/internal/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	run_id TEXT NOT NULL,
	instrument TEXT NOT NULL,
	quantity REAL NOT NULL,
	price REAL NOT NULL,
	idx INTEGER NOT NULL,
	time DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	instrument TEXT NOT NULL,
	start DATETIME NOT NULL,
	end DATETIME NOT NULL,
	points INTEGER NOT NULL,
	trades INTEGER NOT NULL,
	final_cash REAL NOT NULL,
	total_return REAL NOT NULL,
	annual_return REAL NOT NULL,
	volatility REAL NOT NULL,
	sharpe_ratio REAL NOT NULL,
	pnl REAL NOT NULL,
	avg_trade_return REAL NOT NULL,
	win_rate REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id);
`

// SQLiteJournal persists trades and runs in a local SQLite database.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database and applies the schema.
func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, core.WrapError(core.ErrJournalFailed, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, core.WrapError(core.ErrJournalFailed, err)
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades (run_id, instrument, quantity, price, idx, time)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.RunID, t.Instrument, t.Quantity, t.Price, t.Index, t.Time,
	)
	if err != nil {
		return core.WrapError(core.ErrJournalFailed, err)
	}
	return nil
}

func (j *SQLiteJournal) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs (run_id, instrument, start, end, points, trades, final_cash,
			total_return, annual_return, volatility, sharpe_ratio, pnl, avg_trade_return, win_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Instrument, r.Start, r.End, r.Points, r.Trades, r.FinalCash,
		r.TotalReturn, r.AnnualReturn, r.Volatility, r.SharpeRatio,
		r.PnL, r.AvgTradeReturn, r.WinRate,
	)
	if err != nil {
		return core.WrapError(core.ErrJournalFailed, err)
	}
	return nil
}

// TradesByRun loads the trade log of a run in execution order.
func (j *SQLiteJournal) TradesByRun(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, instrument, quantity, price, idx, time
		FROM trades WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, core.WrapError(core.ErrJournalFailed, err)
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(&t.RunID, &t.Instrument, &t.Quantity, &t.Price, &t.Index, &t.Time); err != nil {
			return nil, core.WrapError(core.ErrJournalFailed, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
