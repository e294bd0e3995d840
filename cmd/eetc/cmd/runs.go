package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/east-empire-trading-company/eetc-utils/journal"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Query past backtest runs",
	Long: `Query and display backtest history from the SQLite journal.

Subcommands:
  list - List recent runs
  show - Show one run with its trade log

Examples:
  eetc runs list --limit 10
  eetc runs show 01J8ZQ5T9V2M4R8XKWB3CDEF6H`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent backtest runs",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its trade log",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var (
	runsDBPath string
	runsLimit  int
)

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)

	runsCmd.PersistentFlags().StringVarP(&runsDBPath, "db", "d", "", "SQLite journal path (default: from config)")
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum number of runs to list")
}

func openJournal() (*journal.SQLite, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	path := cfg.Backtest.JournalPath
	if runsDBPath != "" {
		path = runsDBPath
	}
	if path == "" {
		return nil, fmt.Errorf("no journal path configured (backtest.journal_path in config, or --db)")
	}

	j, err := journal.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return j, nil
}

func runRunsList(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListRuns(runsLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(recs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("%-26s  %-10s  %-6s  %6s  %12s  %7s  %s\n",
		"RUN ID", "STRATEGY", "SYMBOL", "TRADES", "FINAL NAV", "SHARPE", "CREATED")
	for _, r := range recs {
		fmt.Printf("%-26s  %-10s  %-6s  %6d  %12.2f  %7s  %s\n",
			r.RunID, r.Strategy, r.Symbol, r.NumTrades, r.FinalNAV,
			fmtRatio(r.Sharpe), r.Created.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	runID := args[0]
	rec, err := j.GetRun(runID)
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}

	fmt.Printf("Run %s\n", rec.RunID)
	fmt.Printf("  Strategy: %s on %s\n", rec.Strategy, rec.Symbol)
	if !rec.Start.IsZero() || !rec.End.IsZero() {
		fmt.Printf("  Window: %s to %s\n",
			rec.Start.Format("2006-01-02"), rec.End.Format("2006-01-02"))
	}
	fmt.Printf("  Initial Cash: $%.2f\n", rec.InitialCash)
	fmt.Printf("  Final NAV: $%.2f\n", rec.FinalNAV)
	fmt.Printf("  Annual Return: %s  Annual Vol: %s\n",
		fmtPercent(rec.AnnualReturn), fmtPercent(rec.AnnualVol))
	fmt.Printf("  Sharpe: %s  Max Drawdown: %s\n",
		fmtRatio(rec.Sharpe), fmtPercent(rec.MaxDrawdown))

	trades, err := j.ListTrades(runID)
	if err != nil {
		return fmt.Errorf("list trades: %w", err)
	}

	fmt.Printf("\n%d trades\n", len(trades))
	for _, t := range trades {
		fmt.Printf("  %s  %-4s %8.2f %s @ %.4f  commission %.2f\n",
			t.Timestamp.Format("2006-01-02"), t.Side, t.Qty, t.Symbol, t.Price, t.Commission)
	}
	return nil
}

func fmtRatio(f float64) string {
	if math.IsNaN(f) {
		return "-"
	}
	return fmt.Sprintf("%.2f", f)
}

func fmtPercent(f float64) string {
	if math.IsNaN(f) {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", f*100)
}
