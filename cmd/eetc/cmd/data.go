package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/east-empire-trading-company/eetc-utils/datahub"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Fetch and cache market data",
	Long: `Manage the local parquet bar cache.

Subcommands:
  fetch   - Download daily bars from the EETC Data Hub into the cache
  symbols - List locally cached symbols

Examples:
  eetc data fetch AAPL --from 2020-01-01
  eetc data symbols`,
}

var dataFetchCmd = &cobra.Command{
	Use:   "fetch <symbol>",
	Short: "Download bars from the data hub into the local cache",
	Args:  cobra.ExactArgs(1),
	RunE:  runDataFetch,
}

var dataSymbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "List locally cached symbols",
	Args:  cobra.NoArgs,
	RunE:  runDataSymbols,
}

var (
	dataFrom string
	dataTo   string
)

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataFetchCmd)
	dataCmd.AddCommand(dataSymbolsCmd)

	dataFetchCmd.Flags().StringVar(&dataFrom, "from", "", "start date YYYY-MM-DD (default: all history)")
	dataFetchCmd.Flags().StringVar(&dataTo, "to", "", "end date YYYY-MM-DD (default: latest)")
}

func runDataFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	from, to, err := parseDateRange(dataFrom, dataTo)
	if err != nil {
		return err
	}

	source, err := newHubSource(cfg)
	if err != nil {
		return err
	}

	symbol := args[0]
	bars, err := source.GetPriceData(context.Background(), symbol, from, to)
	if err != nil {
		return fmt.Errorf("fetch bars: %w", err)
	}
	if len(bars) == 0 {
		fmt.Printf("No bars returned for %s\n", symbol)
		return nil
	}

	cache := datahub.NewParquetCache(cfg.DataHub.CacheDir)
	if err := cache.WriteBars(symbol, bars); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}

	fmt.Printf("✓ Cached %d bars for %s (%s to %s)\n", len(bars), symbol,
		bars[0].Date.Format("2006-01-02"), bars[len(bars)-1].Date.Format("2006-01-02"))
	fmt.Printf("  Cache: %s\n", cfg.DataHub.CacheDir)
	return nil
}

func runDataSymbols(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cache := datahub.NewParquetCache(cfg.DataHub.CacheDir)
	symbols, err := cache.Symbols()
	if err != nil {
		return fmt.Errorf("list cache: %w", err)
	}
	if len(symbols) == 0 {
		fmt.Printf("Cache is empty: %s\n", cfg.DataHub.CacheDir)
		return nil
	}

	for _, s := range symbols {
		fmt.Println(s)
	}
	return nil
}
