package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/east-empire-trading-company/eetc-utils/finance"
)

var kellyCmd = &cobra.Command{
	Use:   "kelly <symbol>",
	Short: "Estimate Kelly optimal leverage for a symbol",
	Long: `Kelly estimates the optimal leverage for a position from the symbol's
daily log returns, annualized over 252 trading days. Variance comes from
the sample by default, or from a GARCH(1,1) one-step forecast with --garch.

Examples:
  eetc kelly AAPL --source cache
  eetc kelly TSLA --position short --fraction 0.5
  eetc kelly SPY --garch --regime-start 2021-01-01`,
	Args: cobra.ExactArgs(1),
	RunE: runKelly,
}

var (
	kellyPosition    string
	kellyFraction    float64
	kellyRegimeStart string
	kellyGARCH       bool
	kellySource      string
	kellyCSVPath     string
)

func init() {
	rootCmd.AddCommand(kellyCmd)

	kellyCmd.Flags().StringVar(&kellyPosition, "position", "long", "position direction: long or short")
	kellyCmd.Flags().Float64Var(&kellyFraction, "fraction", 1, "fractional Kelly multiplier (0.5 = half-Kelly)")
	kellyCmd.Flags().StringVar(&kellyRegimeStart, "regime-start", "", "start of the lookback regime YYYY-MM-DD (default: 2020-01-01)")
	kellyCmd.Flags().BoolVar(&kellyGARCH, "garch", false, "forecast variance with GARCH(1,1)")
	kellyCmd.Flags().StringVar(&kellySource, "source", "hub", "bar source: hub, cache or csv")
	kellyCmd.Flags().StringVar(&kellyCSVPath, "csv", "", "bar CSV path (with --source=csv)")
}

func runKelly(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := finance.KellyLeverageOptions{
		Fraction: kellyFraction,
		UseGARCH: kellyGARCH,
	}
	switch strings.ToLower(kellyPosition) {
	case "", "long":
		opts.Position = finance.Long
	case "short":
		opts.Position = finance.Short
	default:
		return fmt.Errorf("unknown position %q (supported: long, short)", kellyPosition)
	}
	if kellyRegimeStart != "" {
		start, err := time.Parse("2006-01-02", kellyRegimeStart)
		if err != nil {
			return fmt.Errorf("bad --regime-start date %q: %w", kellyRegimeStart, err)
		}
		opts.RegimeStart = start
	}

	source, err := newBarSource(cfg, kellySource, kellyCSVPath)
	if err != nil {
		return err
	}

	symbol := args[0]
	bars, err := source.GetPriceData(context.Background(), symbol, opts.RegimeStart, time.Time{})
	if err != nil {
		return fmt.Errorf("fetch bars: %w", err)
	}

	leverage, err := finance.KellyOptimalLeverage(bars, opts)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Kelly optimal leverage for %s %s: %.4f\n",
		strings.ToUpper(kellyPosition), symbol, leverage)
	fmt.Printf("  Bars: %d  Fraction: %.2f  GARCH: %v\n", len(bars), kellyFraction, kellyGARCH)
	return nil
}
