package backtest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/east-empire-trading-company/eetc-utils/metrics"
	"github.com/east-empire-trading-company/eetc-utils/sim"
)

// ArtifactPaths returns where a run's artifacts land inside dir.
func ArtifactPaths(dir, strategyName, symbol string) (trades, equity, perf string) {
	base := fmt.Sprintf("%s__%s__", strategyName, symbol)
	return filepath.Join(dir, base+"trades.json"),
		filepath.Join(dir, base+"equity.csv"),
		filepath.Join(dir, base+"perf.json")
}

func writeArtifacts(dir string, r *Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("backtest: create output dir: %w", err)
	}

	tradesPath, equityPath, perfPath := ArtifactPaths(dir, r.Strategy, r.Symbol)

	if err := writeTradesJSON(tradesPath, r.Trades); err != nil {
		return err
	}
	if err := writeEquityCSV(equityPath, r.Equity); err != nil {
		return err
	}
	return writePerfJSON(perfPath, r.Stats)
}

// writeTradesJSON persists the trade log as a JSON array, `[]` when the
// run never traded.
func writeTradesJSON(path string, trades []sim.Trade) error {
	if trades == nil {
		trades = []sim.Trade{}
	}
	data, err := json.MarshalIndent(trades, "", "  ")
	if err != nil {
		return fmt.Errorf("backtest: encode trades: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("backtest: write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeEquityCSV persists the equity curve with RFC3339 timestamps,
// six-decimal cash and NAV columns and the positions snapshot as a
// compact JSON cell.
func writeEquityCSV(path string, equity []sim.EquityPoint) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"timestamp", "cash", "nav", "positions"}); err != nil {
		return fmt.Errorf("backtest: write equity header: %w", err)
	}
	for _, p := range equity {
		positions, err := json.Marshal(p.Positions)
		if err != nil {
			return fmt.Errorf("backtest: encode positions: %w", err)
		}
		record := []string{
			p.Timestamp.Format(time.RFC3339),
			strconv.FormatFloat(p.Cash, 'f', 6, 64),
			strconv.FormatFloat(p.NAV, 'f', 6, 64),
			string(positions),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("backtest: write equity row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("backtest: flush equity csv: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("backtest: write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writePerfJSON persists the performance stats, `{}` when the run had no
// equity curve to measure.
func writePerfJSON(path string, stats metrics.Stats) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("backtest: encode perf stats: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("backtest: write %s: %w", filepath.Base(path), err)
	}
	return nil
}
