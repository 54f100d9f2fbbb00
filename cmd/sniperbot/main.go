package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alejandrodnm/sniperbot/config"
	"github.com/alejandrodnm/sniperbot/internal/adapters/csvfile"
	"github.com/alejandrodnm/sniperbot/internal/adapters/httpapi"
	"github.com/alejandrodnm/sniperbot/internal/adapters/notify"
	"github.com/alejandrodnm/sniperbot/internal/adapters/synthetic"
	"github.com/alejandrodnm/sniperbot/internal/application/backtest"
	"github.com/alejandrodnm/sniperbot/internal/ports"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	csvPath := flag.String("csv", "", "load OHLCV data from CSV instead of querying Bybit (overrides OHLCV_CSV)")
	symbol := flag.String("symbol", "", "symbol to backtest (overrides config)")
	symbols := flag.String("symbols", "", "comma-separated symbols, backtested concurrently")
	interval := flag.String("interval", "", "candle interval: 1m|5m|15m|1h|4h|1d... (overrides config)")
	limit := flag.Int("limit", 0, "candles to fetch (overrides config)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	compact := flag.Bool("compact", false, "print a 1-line summary per backtest instead of the trade table")
	serve := flag.Bool("serve", false, "serve the HTTP API instead of running once")
	generate := flag.String("generate", "", "write a synthetic OHLCV CSV to this path and exit")
	useSynthetic := flag.Bool("synthetic", false, "backtest on synthetic candles (offline)")
	noStore := flag.Bool("no-store", false, "do not persist trades and summaries")
	history := flag.Int("history", 0, "print the N most recent stored backtests and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	applyFlagOverrides(cfg, *csvPath, *symbol, *symbols, *interval, *limit)
	setupLogger(cfg.Log)

	if *generate != "" {
		if err := writeSynthetic(*generate, cfg.Backtest.Interval, *limit); err != nil {
			slog.Error("failed to generate synthetic data", "err", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	source, err := buildSource(ctx, cfg, *useSynthetic)
	if err != nil {
		slog.Error("failed to build candle source", "err", err)
		os.Exit(1)
	}

	var stores *storeSet
	if !*noStore || *history > 0 {
		stores, err = openStores(cfg)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "driver", cfg.Storage.Driver)
			os.Exit(1)
		}
		defer stores.Close()
	}

	format := notify.FormatTable
	if *compact {
		format = notify.FormatCompact
	}
	console := notify.NewConsole(format)

	if *history > 0 {
		records, err := stores.sql.RecentSummaries(ctx, *history)
		if err != nil {
			slog.Error("failed to read history", "err", err)
			os.Exit(1)
		}
		console.PrintHistory(records)
		return
	}

	var store ports.ResultStore
	if !*noStore {
		store = stores.results()
	}

	btCfg := backtest.Config{
		Filter:  cfg.Strategy(),
		Risk:    cfg.Risk(),
		Workers: cfg.Backtest.Workers,
	}

	slog.Info("sniperbot starting",
		"config", *configPath,
		"source", sourceName(cfg, *useSynthetic),
		"symbol", cfg.Backtest.Symbol,
		"symbols", cfg.Backtest.Symbols,
		"interval", cfg.Backtest.Interval,
		"limit", cfg.Backtest.Limit,
		"store", store != nil,
		"serve", *serve,
	)

	defaults := ports.CandleQuery{
		Symbol:   cfg.Backtest.Symbol,
		Interval: cfg.Backtest.Interval,
		Limit:    cfg.Backtest.Limit,
	}

	if *serve {
		runner := backtest.New(btCfg, source, store, nil)
		var srv *httpapi.Server
		if stores != nil {
			srv = httpapi.NewServer(runner, stores.sql, stores.sql, defaults)
		} else {
			srv = httpapi.NewServer(runner, nil, nil, defaults)
		}
		if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
			slog.Error("http api exited with error", "err", err)
			os.Exit(1)
		}
		slog.Info("sniperbot stopped cleanly")
		return
	}

	runner := backtest.New(btCfg, source, store, console)

	if len(cfg.Backtest.Symbols) > 0 {
		queries := make([]ports.CandleQuery, 0, len(cfg.Backtest.Symbols))
		for _, s := range cfg.Backtest.Symbols {
			q := defaults
			q.Symbol = s
			queries = append(queries, q)
		}
		failed := 0
		for _, o := range runner.RunMany(ctx, queries) {
			if o.Err != nil {
				failed++
			}
		}
		if failed > 0 {
			slog.Error("some backtests failed", "failed", failed, "total", len(queries))
			os.Exit(1)
		}
		return
	}

	report, err := runner.Run(ctx, defaults)
	if err != nil {
		slog.Error("error fetching data", "err", err)
		os.Exit(1)
	}
	if report.Candles == 0 {
		fmt.Println("No trades executed.")
	}
}

// applyFlagOverrides aplica los flags de línea de comandos sobre la config.
func applyFlagOverrides(cfg *config.Config, csvPath, symbol, symbols, interval string, limit int) {
	if csvPath != "" {
		cfg.Backtest.CSV = csvPath
	}
	if symbol != "" {
		cfg.Backtest.Symbol = strings.ToUpper(symbol)
	}
	if symbols != "" {
		cfg.Backtest.Symbols = nil
		for _, s := range strings.Split(symbols, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.Backtest.Symbols = append(cfg.Backtest.Symbols, strings.ToUpper(s))
			}
		}
	}
	if interval != "" {
		cfg.Backtest.Interval = interval
	}
	if limit > 0 {
		cfg.Backtest.Limit = limit
	}
}

// writeSynthetic genera velas sintéticas y las vuelca a path.
func writeSynthetic(path, interval string, candles int) error {
	gen := synthetic.DefaultConfig()
	if d, err := intervalDuration(interval); err == nil {
		gen.Interval = d
	}
	if candles > 0 {
		gen.Candles = candles
	}
	s := synthetic.Generate(gen)
	if err := csvfile.WriteCandlesFile(path, s); err != nil {
		return err
	}
	fmt.Printf("Generated %d candles to %s\n", s.Len(), path)
	return nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
