// Package journal persists backtest history: run summaries, trade logs and
// equity curves, keyed by run id in a local SQLite database.
package journal

import (
	"time"

	"github.com/east-empire-trading-company/eetc-utils/sim"
)

// RunRecord summarizes one backtest run. The ratio fields are NaN when the
// run produced no defined statistics (for example an empty data window) and
// are stored as SQL NULLs.
type RunRecord struct {
	RunID       string
	Strategy    string
	Symbol      string
	Start       time.Time
	End         time.Time
	InitialCash float64
	FinalNAV    float64
	NumTrades   int

	AnnualReturn float64
	AnnualVol    float64
	Sharpe       float64
	MaxDrawdown  float64

	Created time.Time
}

// Journal records backtest output as it is produced.
type Journal interface {
	RecordRun(RunRecord) error
	RecordTrade(runID string, t sim.Trade) error
	RecordEquity(runID string, p sim.EquityPoint) error
	Close() error
}
