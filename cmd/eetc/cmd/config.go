package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/east-empire-trading-company/eetc-utils/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage configuration files for the eetc tools.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  eetc config init --output eetc.yaml
  eetc config validate --file eetc.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	RunE:  runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "eetc.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("✓ Created default configuration: %s\n", configInitOutput)
	fmt.Println("\nEdit the file and run with:")
	fmt.Printf("  eetc backtest -s AAPL --config %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("✓ Configuration valid: %s\n", configValidatePath)
	fmt.Printf("  Broker: $%.2f cash, %.4f slippage, $%.4f/share commission\n",
		cfg.Broker.InitialCash, cfg.Broker.Slippage, cfg.Broker.CommissionPerShare)
	fmt.Printf("  Output: %s\n", cfg.Backtest.OutputDir)
	if cfg.Backtest.JournalPath != "" {
		fmt.Printf("  Journal: %s\n", cfg.Backtest.JournalPath)
	}
	return nil
}
