package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/sniperbot/config"
	"github.com/alejandrodnm/sniperbot/internal/adapters/bybit"
	"github.com/alejandrodnm/sniperbot/internal/adapters/cache"
	"github.com/alejandrodnm/sniperbot/internal/adapters/csvfile"
	"github.com/alejandrodnm/sniperbot/internal/adapters/storage"
	"github.com/alejandrodnm/sniperbot/internal/adapters/synthetic"
	"github.com/alejandrodnm/sniperbot/internal/application/backtest"
	"github.com/alejandrodnm/sniperbot/internal/ports"
)

// buildSource elige la fuente de velas: CSV local, sintética o Bybit
// (opcionalmente detrás de la cache Redis).
func buildSource(ctx context.Context, cfg *config.Config, useSynthetic bool) (ports.CandleSource, error) {
	switch {
	case cfg.Backtest.CSV != "":
		return csvfile.NewLoader(cfg.Backtest.CSV), nil
	case useSynthetic:
		gen := synthetic.DefaultConfig()
		if d, err := intervalDuration(cfg.Backtest.Interval); err == nil {
			gen.Interval = d
		}
		return synthetic.NewSource(gen), nil
	}

	if _, err := bybit.ParseInterval(cfg.Backtest.Interval); err != nil {
		return nil, err
	}
	client := bybit.NewClient(cfg.API.BybitBase, cfg.API.Category)
	if cfg.Cache.Addr == "" {
		return client, nil
	}

	kv := cache.NewRedisKV(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := kv.Ping(pingCtx); err != nil {
		slog.Warn("redis unavailable, candle cache disabled", "addr", cfg.Cache.Addr, "err", err)
		kv.Close()
		return client, nil
	}
	slog.Info("candle cache enabled", "addr", cfg.Cache.Addr, "ttl", cfg.CacheTTL())
	return cache.NewCandleCache(client, kv, cfg.CacheTTL()), nil
}

func sourceName(cfg *config.Config, useSynthetic bool) string {
	switch {
	case cfg.Backtest.CSV != "":
		return "csv:" + cfg.Backtest.CSV
	case useSynthetic:
		return "synthetic"
	default:
		return "bybit"
	}
}

// storeSet agrupa el store SQL y los CSV append-only.
type storeSet struct {
	sql *storage.SQLStore
	csv *csvfile.Store
}

func openStores(cfg *config.Config) (*storeSet, error) {
	db, err := storage.Open(cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		return nil, err
	}
	return &storeSet{
		sql: db,
		csv: csvfile.NewStore(cfg.Storage.TradeLog, cfg.Storage.SummaryCSV),
	}, nil
}

// results devuelve un ResultStore que escribe en SQL y en los CSV.
func (s *storeSet) results() ports.ResultStore {
	return backtest.FanOut{s.sql, s.csv}
}

func (s *storeSet) Close() error {
	return s.sql.Close()
}

var errUnknownInterval = errors.New("unknown interval")

// intervalDuration traduce "5m", "1h", "1d", "1w" a time.Duration.
func intervalDuration(iv string) (time.Duration, error) {
	switch iv {
	case "1d", "D":
		return 24 * time.Hour, nil
	case "1w", "W":
		return 7 * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(iv)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w %q", errUnknownInterval, iv)
	}
	return d, nil
}
