package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/spf13/cobra"

	"github.com/east-empire-trading-company/eetc-utils/backtest"
	"github.com/east-empire-trading-company/eetc-utils/config"
	"github.com/east-empire-trading-company/eetc-utils/journal"
	"github.com/east-empire-trading-company/eetc-utils/notify"
	"github.com/east-empire-trading-company/eetc-utils/strategy"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay historical bars through a trading strategy",
	Long: `Backtest fetches daily bars for a symbol, replays them through the chosen
strategy against a simulated broker, and writes the trade log, equity curve
and performance summary to the output directory.

Supported strategies: noop, buyhold, smacross, emacross.

Examples:
  eetc backtest -s AAPL --strategy buyhold --qty 10 --from 2023-01-01
  eetc backtest -s TSLA --strategy smacross --fast 20 --slow 50 --source cache
  eetc backtest -s SPY --strategy emacross --source csv --csv bars/spy.csv`,
	RunE: runBacktestCmd,
}

var (
	btSymbol   string
	btStrategy string
	btFrom     string
	btTo       string
	btSource   string
	btCSVPath  string
	btQty      float64
	btFast     int
	btSlow     int
	btOutDir   string
	btDBPath   string
	btNotify   bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btSymbol, "symbol", "s", "", "ticker symbol (required)")
	backtestCmd.Flags().StringVar(&btStrategy, "strategy", "buyhold", "strategy name (noop, buyhold, smacross, emacross)")
	backtestCmd.Flags().StringVar(&btFrom, "from", "", "start date YYYY-MM-DD (default: all history)")
	backtestCmd.Flags().StringVar(&btTo, "to", "", "end date YYYY-MM-DD (default: latest)")
	backtestCmd.Flags().StringVar(&btSource, "source", "hub", "bar source: hub, cache or csv")
	backtestCmd.Flags().StringVar(&btCSVPath, "csv", "", "bar CSV path (with --source=csv)")
	backtestCmd.Flags().Float64Var(&btQty, "qty", 10, "order quantity in shares")
	backtestCmd.Flags().IntVar(&btFast, "fast", 20, "fast moving average period")
	backtestCmd.Flags().IntVar(&btSlow, "slow", 50, "slow moving average period")
	backtestCmd.Flags().StringVarP(&btOutDir, "out", "o", "", "artifact directory (default: from config)")
	backtestCmd.Flags().StringVar(&btDBPath, "db", "", "SQLite journal path (default: from config)")
	backtestCmd.Flags().BoolVar(&btNotify, "notify", false, "send a Telegram trade update when the run finishes")

	backtestCmd.MarkFlagRequired("symbol")
}

func runBacktestCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	from, to, err := parseDateRange(btFrom, btTo)
	if err != nil {
		return err
	}

	strat, err := strategy.New(btStrategy, strategy.Params{Qty: btQty, Fast: btFast, Slow: btSlow})
	if err != nil {
		return err
	}

	source, err := newBarSource(cfg, btSource, btCSVPath)
	if err != nil {
		return err
	}

	engine := backtest.New(source)
	engine.Broker = cfg.Broker
	engine.OutputDir = cfg.Backtest.OutputDir
	if btOutDir != "" {
		engine.OutputDir = btOutDir
	}

	dbPath := cfg.Backtest.JournalPath
	if btDBPath != "" {
		dbPath = btDBPath
	}
	if dbPath != "" {
		j, err := journal.NewSQLite(dbPath)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer j.Close()
		engine.Journal = j
	}

	result, err := engine.Run(context.Background(), strat, btSymbol, from, to)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Backtest complete: %s on %s\n", result.Strategy, result.Symbol)
	fmt.Printf("  Run ID: %s\n", result.RunID)
	fmt.Printf("  Bars: %d  Trades: %d\n", len(result.Equity), len(result.Trades))
	if nav := result.FinalNAV(); !math.IsNaN(nav) {
		fmt.Printf("  Final NAV: $%.2f\n", nav)
	}
	if result.Stats.Defined() {
		fmt.Printf("  Annual Return: %.2f%%  Annual Vol: %.2f%%\n",
			result.Stats.AnnualReturn*100, result.Stats.AnnualVol*100)
		fmt.Printf("  Sharpe: %.2f  Max Drawdown: %.2f%%\n",
			result.Stats.Sharpe, result.Stats.MaxDrawdown*100)
	}
	if engine.OutputDir != "" {
		fmt.Printf("  Artifacts: %s\n", engine.OutputDir)
	}

	if btNotify {
		if err := sendRunNotification(cfg, result); err != nil {
			slog.Warn("trade update not sent", "error", err)
		}
	}

	return nil
}

func sendRunNotification(cfg *config.Config, result *backtest.Result) error {
	if cfg.Notifications.APIKey == "" {
		return fmt.Errorf("notifications API key is not set (notifications.api_key in config, or EETC_NOTIFICATIONS_API_KEY)")
	}

	var opts []notify.Option
	if cfg.Notifications.BaseURL != "" {
		opts = append(opts, notify.WithBaseURL(cfg.Notifications.BaseURL))
	}
	client := notify.NewClient(cfg.Notifications.APIKey, opts...)

	msg := fmt.Sprintf("Backtest %s on %s: %d trades, final NAV $%.2f",
		result.Strategy, result.Symbol, len(result.Trades), result.FinalNAV())
	return client.SendTradeUpdate(context.Background(), msg)
}
