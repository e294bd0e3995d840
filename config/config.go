// Package config loads and validates the settings shared by the CLI
// commands: data hub credentials, broker friction parameters, artifact
// locations and logging.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/east-empire-trading-company/eetc-utils/sim"
)

// Config represents the complete tool configuration
type Config struct {
	DataHub       DataHubConfig       `json:"datahub" yaml:"datahub"`
	Notifications NotificationsConfig `json:"notifications" yaml:"notifications"`
	Broker        sim.Config          `json:"broker" yaml:"broker"`
	Backtest      BacktestConfig      `json:"backtest" yaml:"backtest"`
	Logging       LoggingConfig       `json:"logging" yaml:"logging"`
}

// DataHubConfig contains EETC Data Hub access parameters
type DataHubConfig struct {
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL  string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	CacheDir string `json:"cache_dir,omitempty" yaml:"cache_dir,omitempty"`
}

// NotificationsConfig contains EETC Notifications Manager access parameters
type NotificationsConfig struct {
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// BacktestConfig contains backtest output parameters
type BacktestConfig struct {
	OutputDir   string `json:"output_dir" yaml:"output_dir"`
	JournalPath string `json:"journal_path,omitempty" yaml:"journal_path,omitempty"`
}

// LoggingConfig contains logging parameters
type LoggingConfig struct {
	Level string `json:"level" yaml:"level"` // "debug", "info", "warn" or "error"
}

// NewLogger builds a JSON slog.Logger writing to stderr at the configured
// level.
func (l LoggingConfig) NewLogger() (*slog.Logger, error) {
	level, err := l.SlogLevel()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

// SlogLevel maps the configured level name onto a slog.Level. An empty
// name means info.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level: %s", l.Level)
}

// LoadFromFile loads configuration from a file (JSON or YAML based on content)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Broker.InitialCash <= 0 {
		return fmt.Errorf("broker.initial_cash must be positive")
	}
	if c.Broker.Slippage < 0 || c.Broker.Slippage >= 1 {
		return fmt.Errorf("broker.slippage must be in [0, 1)")
	}
	if c.Broker.CommissionPerShare < 0 {
		return fmt.Errorf("broker.commission_per_share must not be negative")
	}
	if _, err := c.Logging.SlogLevel(); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		DataHub: DataHubConfig{
			CacheDir: "data",
		},
		Broker: sim.DefaultConfig(),
		Backtest: BacktestConfig{
			OutputDir:   "results",
			JournalPath: "backtests.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
