package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10_000.0, cfg.Broker.InitialCash)
	assert.Equal(t, "results", cfg.Backtest.OutputDir)
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
datahub:
  api_key: secret
  cache_dir: /tmp/bars
broker:
  initial_cash: 50000
  slippage: 0.001
backtest:
  output_dir: out
  journal_path: runs.db
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.DataHub.APIKey)
	assert.Equal(t, "/tmp/bars", cfg.DataHub.CacheDir)
	assert.Equal(t, 50_000.0, cfg.Broker.InitialCash)
	assert.Equal(t, 0.001, cfg.Broker.Slippage)
	assert.Equal(t, "out", cfg.Backtest.OutputDir)

	level, err := cfg.Logging.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"config.yaml", "config.json"} {
		path := filepath.Join(t.TempDir(), name)

		cfg := Default()
		cfg.DataHub.APIKey = "key-123"
		cfg.Broker.CommissionPerShare = 0.005
		require.NoError(t, cfg.SaveToFile(path))

		loaded, err := LoadFromFile(path)
		require.NoError(t, err, name)
		assert.Equal(t, cfg, loaded, name)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "zero cash",
			content: "broker:\n  initial_cash: 0\n",
			wantErr: "initial_cash",
		},
		{
			name:    "slippage out of range",
			content: "broker:\n  initial_cash: 1000\n  slippage: 1.5\n",
			wantErr: "slippage",
		},
		{
			name:    "negative commission",
			content: "broker:\n  initial_cash: 1000\n  commission_per_share: -1\n",
			wantErr: "commission",
		},
		{
			name:    "bad log level",
			content: "broker:\n  initial_cash: 1000\nlogging:\n  level: loud\n",
			wantErr: "unknown log level",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))

			_, err := LoadFromFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	logger, err := LoggingConfig{Level: "warn"}.NewLogger()
	require.NoError(t, err)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))

	_, err = LoggingConfig{Level: "shout"}.NewLogger()
	assert.Error(t, err)
}

func TestSlogLevelNames(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]slog.Level{
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		level, err := LoggingConfig{Level: name}.SlogLevel()
		require.NoError(t, err, name)
		assert.Equal(t, want, level, name)
	}
}
