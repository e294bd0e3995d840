package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"

	_ "github.com/mattn/go-sqlite3"

	"github.com/east-empire-trading-company/eetc-utils/sim"
)

// SQLite is the Journal implementation backed by a local SQLite file.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if necessary) the journal database at path and
// applies the schema.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, strategy, symbol, start_date, end_date, initial_cash, final_nav,
		 num_trades, annual_return, annual_vol, sharpe, max_drawdown, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Strategy, r.Symbol, r.Start, r.End, r.InitialCash,
		nullableFloat(r.FinalNAV), r.NumTrades,
		nullableFloat(r.AnnualReturn), nullableFloat(r.AnnualVol),
		nullableFloat(r.Sharpe), nullableFloat(r.MaxDrawdown),
		r.Created,
	)
	return err
}

func (j *SQLite) RecordTrade(runID string, t sim.Trade) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, run_id, order_id, symbol, side, qty, price, timestamp, commission, fill_cost)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, runID, t.OrderID, t.Symbol, string(t.Side),
		t.Qty, t.Price, t.Timestamp, t.Commission, t.FillCost,
	)
	return err
}

func (j *SQLite) RecordEquity(runID string, p sim.EquityPoint) error {
	positions, err := json.Marshal(p.Positions)
	if err != nil {
		return fmt.Errorf("journal: encode positions: %w", err)
	}

	_, err = j.db.Exec(`
		INSERT INTO equity (run_id, timestamp, cash, nav, positions)
		VALUES (?, ?, ?, ?, ?)`,
		runID, p.Timestamp, p.Cash, p.NAV, string(positions),
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

// nullableFloat maps NaN and ±Inf to SQL NULL; REAL columns cannot hold
// non-finite values.
func nullableFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

func floatOrNaN(n sql.NullFloat64) float64 {
	if !n.Valid {
		return math.NaN()
	}
	return n.Float64
}
