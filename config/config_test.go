package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alejandrodnm/sniperbot/config"
	"github.com/alejandrodnm/sniperbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", cfg.Backtest.Symbol)
	assert.Equal(t, "5m", cfg.Backtest.Interval)
	assert.Equal(t, 200, cfg.Backtest.Limit)
	assert.Equal(t, domain.DefaultFilterConfig(), cfg.Strategy())
	assert.Equal(t, domain.DefaultRiskConfig(), cfg.Risk())
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "https://api.bybit.com", cfg.API.BybitBase)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_SampleFile(t *testing.T) {
	cfg, err := config.Load("config.yaml")
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Backtest.Workers)
	assert.Equal(t, domain.DefaultFilterConfig(), cfg.Strategy())
	assert.Equal(t, "linear", cfg.API.Category)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_PartialYAMLKeepsDefaults(t *testing.T) {
	path := writeYAML(t, `
backtest:
  symbols: [" ethusdt", "solusdt "]
  strategy:
    min_gap_pct: 0
    min_spacing: 8
  risk:
    stop_distance: 15
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"ETHUSDT", "SOLUSDT"}, cfg.Backtest.Symbols)
	s := cfg.Strategy()
	assert.Equal(t, 0.0, s.MinGapPct, "explicit zero is honored")
	assert.Equal(t, 8, s.MinSpacing)
	assert.Equal(t, 2.0, s.MinBOSStrength)

	r := cfg.Risk()
	assert.Equal(t, 15.0, r.StopDistance)
	assert.Equal(t, 20.0, r.RewardDistance)
}

func TestLoad_InvalidRiskFallsBack(t *testing.T) {
	path := writeYAML(t, "backtest:\n  risk:\n    stop_distance: -5\n    lookahead: 0\n")
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultRiskConfig(), cfg.Risk())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OHLCV_CSV", "data/ohlcv.csv")
	t.Setenv("BYBIT_BASE_URL", "https://api-testnet.bybit.com")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("STORAGE_DSN", "postgres://u:p@localhost/sniper?sslmode=disable")

	cfg, err := config.Load(writeYAML(t, "log:\n  level: warn\n"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "data/ohlcv.csv", cfg.Backtest.CSV)
	assert.Equal(t, "https://api-testnet.bybit.com", cfg.API.BybitBase)
	assert.Equal(t, "localhost:6379", cfg.Cache.Addr)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Contains(t, cfg.Storage.DSN, "postgres://")
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = config.Load(writeYAML(t, "backtest: [unclosed"))
	assert.Error(t, err)
}
