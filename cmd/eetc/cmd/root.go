package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/east-empire-trading-company/eetc-utils/backtest"
	"github.com/east-empire-trading-company/eetc-utils/config"
	"github.com/east-empire-trading-company/eetc-utils/datahub"
)

var rootCmd = &cobra.Command{
	Use:   "eetc",
	Short: "Backtesting and research tools for the EETC trading stack",
	Long: `eetc bundles the East Empire Trading Company research tools into one CLI.

It provides commands for:
  - Backtesting strategies against daily bars with a simulated broker
  - Fetching bars from the EETC Data Hub into a local parquet cache
  - Querying past backtest runs from the SQLite journal
  - Kelly criterion leverage sizing with an optional GARCH volatility model
  - Generating and validating configuration files`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

var (
	cfgFile  string
	logLevel string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file, YAML or JSON (default: built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
}

// loadConfig reads the configured file, or starts from defaults when no
// file was given. The --log-level flag and the EETC_API_KEY and
// EETC_NOTIFICATIONS_API_KEY environment variables override file values.
// It also installs the default slog handler at the configured level.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if key := os.Getenv("EETC_API_KEY"); key != "" && cfg.DataHub.APIKey == "" {
		cfg.DataHub.APIKey = key
	}
	if key := os.Getenv("EETC_NOTIFICATIONS_API_KEY"); key != "" && cfg.Notifications.APIKey == "" {
		cfg.Notifications.APIKey = key
	}

	logger, err := cfg.Logging.NewLogger()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	return cfg, nil
}

func parseDateRange(from, to string) (time.Time, time.Time, error) {
	var f, t time.Time
	var err error
	if from != "" {
		f, err = time.Parse("2006-01-02", from)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad --from date %q: %w", from, err)
		}
	}
	if to != "" {
		t, err = time.Parse("2006-01-02", to)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad --to date %q: %w", to, err)
		}
	}
	return f, t, nil
}

// newBarSource picks where bars come from: the data hub, the local parquet
// cache or a CSV file.
func newBarSource(cfg *config.Config, kind, csvPath string) (backtest.BarSource, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "hub":
		return newHubSource(cfg)
	case "cache":
		return datahub.NewParquetCache(cfg.DataHub.CacheDir), nil
	case "csv":
		if csvPath == "" {
			return nil, fmt.Errorf("--csv is required when --source=csv")
		}
		return &backtest.CSVSource{Path: csvPath}, nil
	default:
		return nil, fmt.Errorf("unknown bar source %q (supported: hub, cache, csv)", kind)
	}
}

func newHubSource(cfg *config.Config) (datahub.Source, error) {
	if cfg.DataHub.APIKey == "" {
		return datahub.Source{}, fmt.Errorf("data hub API key is not set (datahub.api_key in config, or EETC_API_KEY)")
	}
	var opts []datahub.Option
	if cfg.DataHub.BaseURL != "" {
		opts = append(opts, datahub.WithBaseURL(cfg.DataHub.BaseURL))
	}
	return datahub.Source{Client: datahub.NewClient(cfg.DataHub.APIKey, opts...)}, nil
}
