package journal

import (
	"database/sql"
	"math"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/east-empire-trading-company/eetc-utils/sim"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('runs','trades','equity')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())

	assert.True(t, found["runs"])
	assert.True(t, found["trades"])
	assert.True(t, found["equity"])
}

func TestSQLiteRunRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	rec := RunRecord{
		RunID:        "01RUN",
		Strategy:     "buyhold",
		Symbol:       "AAPL",
		Start:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		InitialCash:  10_000,
		FinalNAV:     10_450.25,
		NumTrades:    2,
		AnnualReturn: 0.12,
		AnnualVol:    0.2,
		Sharpe:       0.6,
		MaxDrawdown:  -0.05,
		Created:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, j.RecordRun(rec))

	got, err := j.GetRun("01RUN")
	require.NoError(t, err)

	assert.Equal(t, rec.RunID, got.RunID)
	assert.Equal(t, rec.Strategy, got.Strategy)
	assert.Equal(t, rec.Symbol, got.Symbol)
	assert.WithinDuration(t, rec.Start, got.Start, time.Second)
	assert.WithinDuration(t, rec.End, got.End, time.Second)
	assert.Equal(t, rec.InitialCash, got.InitialCash)
	assert.Equal(t, rec.FinalNAV, got.FinalNAV)
	assert.Equal(t, rec.NumTrades, got.NumTrades)
	assert.Equal(t, rec.Sharpe, got.Sharpe)
}

func TestSQLiteUndefinedStatsStoredAsNull(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	rec := RunRecord{
		RunID:        "01EMPTY",
		Strategy:     "noop",
		Symbol:       "AAPL",
		Start:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		InitialCash:  10_000,
		FinalNAV:     math.NaN(),
		AnnualReturn: math.NaN(),
		AnnualVol:    math.NaN(),
		Sharpe:       math.NaN(),
		MaxDrawdown:  math.NaN(),
		Created:      time.Now().UTC(),
	}
	require.NoError(t, j.RecordRun(rec))

	got, err := j.GetRun("01EMPTY")
	require.NoError(t, err)

	assert.True(t, math.IsNaN(got.FinalNAV))
	assert.True(t, math.IsNaN(got.AnnualReturn))
	assert.True(t, math.IsNaN(got.Sharpe))
}

func TestSQLiteGetRunNotFound(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	_, err := j.GetRun("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteListRunsNewestFirst(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"01A", "01B", "01C"} {
		require.NoError(t, j.RecordRun(RunRecord{
			RunID:    id,
			Strategy: "noop",
			Symbol:   "AAPL",
			Start:    base,
			End:      base,
			Created:  base.Add(time.Duration(i) * time.Hour),
		}))
	}

	runs, err := j.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "01C", runs[0].RunID)
	assert.Equal(t, "01B", runs[1].RunID)
}

func TestSQLiteTradesRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	first := sim.Trade{
		TradeID:    "01T1",
		OrderID:    "01O1",
		Symbol:     "AAPL",
		Side:       sim.Buy,
		Qty:        10,
		Price:      100.05,
		Timestamp:  time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Commission: 0.5,
		FillCost:   1000.5,
	}
	second := sim.Trade{
		TradeID:   "01T2",
		OrderID:   "01O2",
		Symbol:    "AAPL",
		Side:      sim.Sell,
		Qty:       10,
		Price:     104.9,
		Timestamp: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		FillCost:  1049,
	}

	// Insert out of order; reads come back by fill time.
	require.NoError(t, j.RecordTrade("01RUN", second))
	require.NoError(t, j.RecordTrade("01RUN", first))

	trades, err := j.ListTrades("01RUN")
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, "01T1", trades[0].TradeID)
	assert.Equal(t, sim.Buy, trades[0].Side)
	assert.Equal(t, 100.05, trades[0].Price)
	assert.Equal(t, "01T2", trades[1].TradeID)
	assert.Equal(t, sim.Sell, trades[1].Side)

	assert.Empty(t, mustTrades(t, j, "other-run"))
}

func mustTrades(t *testing.T, j *SQLite, runID string) []sim.Trade {
	t.Helper()
	trades, err := j.ListTrades(runID)
	require.NoError(t, err)
	return trades
}

func TestSQLiteEquityRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	p := sim.EquityPoint{
		Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Cash:      9_000,
		NAV:       10_050,
		Positions: map[string]float64{"AAPL": 10},
	}
	require.NoError(t, j.RecordEquity("01RUN", p))

	curve, err := j.ListEquity("01RUN")
	require.NoError(t, err)
	require.Len(t, curve, 1)

	assert.Equal(t, 9_000.0, curve[0].Cash)
	assert.Equal(t, 10_050.0, curve[0].NAV)
	assert.Equal(t, map[string]float64{"AAPL": 10}, curve[0].Positions)
}
