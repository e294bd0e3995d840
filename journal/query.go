package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/east-empire-trading-company/eetc-utils/sim"
)

const runColumns = `run_id, strategy, symbol, start_date, end_date, initial_cash,
	final_nav, num_trades, annual_return, annual_vol, sharpe, max_drawdown, created`

// GetRun returns a single run summary by id.
func (j *SQLite) GetRun(runID string) (RunRecord, error) {
	row := j.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)

	rec, err := scanRun(row)
	if err == sql.ErrNoRows {
		return RunRecord{}, fmt.Errorf("journal: run %q not found", runID)
	}
	if err != nil {
		return RunRecord{}, err
	}
	return rec, nil
}

// ListRuns returns the most recent run summaries, newest first. A limit of
// zero or less means 20.
func (j *SQLite) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := j.db.Query(`
		SELECT `+runColumns+`
		FROM runs
		ORDER BY created DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListTrades returns a run's trade log ordered by fill time.
func (j *SQLite) ListTrades(runID string) ([]sim.Trade, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, order_id, symbol, side, qty, price, timestamp, commission, fill_cost
		FROM trades
		WHERE run_id = ?
		ORDER BY timestamp ASC, trade_id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sim.Trade
	for rows.Next() {
		var (
			t    sim.Trade
			side string
		)
		if err := rows.Scan(
			&t.TradeID, &t.OrderID, &t.Symbol, &side,
			&t.Qty, &t.Price, &t.Timestamp, &t.Commission, &t.FillCost,
		); err != nil {
			return nil, err
		}
		t.Side = sim.Side(side)
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListEquity returns a run's equity curve in time order.
func (j *SQLite) ListEquity(runID string) ([]sim.EquityPoint, error) {
	rows, err := j.db.Query(`
		SELECT timestamp, cash, nav, positions
		FROM equity
		WHERE run_id = ?
		ORDER BY timestamp ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sim.EquityPoint
	for rows.Next() {
		var (
			p         sim.EquityPoint
			positions string
		)
		if err := rows.Scan(&p.Timestamp, &p.Cash, &p.NAV, &positions); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(positions), &p.Positions); err != nil {
			return nil, fmt.Errorf("journal: decode positions: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var (
		rec RunRecord

		finalNAV, annRet, annVol, sharpe, maxDD sql.NullFloat64
	)
	err := row.Scan(
		&rec.RunID, &rec.Strategy, &rec.Symbol, &rec.Start, &rec.End,
		&rec.InitialCash, &finalNAV, &rec.NumTrades,
		&annRet, &annVol, &sharpe, &maxDD, &rec.Created,
	)
	if err != nil {
		return RunRecord{}, err
	}

	rec.FinalNAV = floatOrNaN(finalNAV)
	rec.AnnualReturn = floatOrNaN(annRet)
	rec.AnnualVol = floatOrNaN(annVol)
	rec.Sharpe = floatOrNaN(sharpe)
	rec.MaxDrawdown = floatOrNaN(maxDD)
	return rec, nil
}
