package backtest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/sniperbot/internal/domain"
	"github.com/alejandrodnm/sniperbot/internal/ports"
	"github.com/google/uuid"
)

// Config contiene la configuración del runner.
type Config struct {
	Filter  domain.FilterConfig
	Risk    domain.RiskConfig
	Workers int // goroutines para RunMany (0 = NumCPU)
}

// DefaultConfig devuelve los umbrales de referencia de la estrategia.
func DefaultConfig() Config {
	return Config{
		Filter: domain.DefaultFilterConfig(),
		Risk:   domain.DefaultRiskConfig(),
	}
}

// Runner orquesta un backtest: fetch → análisis → persistencia → notificación.
// El análisis es puro; toda la E/S ocurre antes o después de domain.Analyze.
type Runner struct {
	cfg      Config
	source   ports.CandleSource
	store    ports.ResultStore
	notifier ports.Notifier

	now   func() time.Time
	newID func() string
}

// New crea un Runner con todas las dependencias inyectadas.
// store y notifier pueden ser nil.
func New(cfg Config, source ports.CandleSource, store ports.ResultStore, notifier ports.Notifier) *Runner {
	return &Runner{
		cfg:      cfg,
		source:   source,
		store:    store,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.New().String() },
	}
}

// Run ejecuta un backtest completo para la consulta dada.
//
// Si la fuente falla se devuelve un Report vacío junto con el error; si la
// serie llega vacía el Report vacío no lleva error. Los fallos de
// persistencia o notificación se registran y no interrumpen la ejecución.
func (r *Runner) Run(ctx context.Context, q ports.CandleQuery) (ports.Report, error) {
	start := time.Now()
	report := ports.Report{
		RunID:    r.newID(),
		Symbol:   q.Symbol,
		Interval: q.Interval,
	}

	series, err := r.source.FetchCandles(ctx, q)
	if err != nil {
		return report, fmt.Errorf("backtest.Run: fetch %s: %w", q.Symbol, err)
	}
	if series.Len() == 0 {
		slog.Warn("no data retrieved", "symbol", q.Symbol, "interval", q.Interval)
		return report, nil
	}

	analysis, err := domain.Analyze(series, r.cfg.Filter, r.cfg.Risk)
	if err != nil {
		return report, fmt.Errorf("backtest.Run: analyze %s: %w", q.Symbol, err)
	}

	report.Candles = series.Len()
	report.Signals = len(analysis.Signals)
	report.Entries = analysis.Entries
	report.Trades = r.tradeRecords(report.RunID, q.Symbol, series, analysis)
	report.Summary = analysis.Summary
	for _, a := range []domain.Annotation{analysis.BOS, analysis.FVG} {
		if a.Degraded != domain.DegradeNone {
			slog.Warn("detector degraded",
				"symbol", q.Symbol,
				"kind", a.Kind,
				"reason", a.Degraded.String(),
				"missing", series.Missing(),
			)
			report.Degraded = append(report.Degraded, a.Degraded)
		}
	}

	r.persist(ctx, report)

	if r.notifier != nil {
		if err := r.notifier.Notify(ctx, report); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	slog.Info("backtest complete",
		"symbol", q.Symbol,
		"candles", report.Candles,
		"signals", report.Signals,
		"entries", len(report.Entries),
		"net_pips", report.Summary.NetPips,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return report, nil
}

// tradeRecords convierte los outcomes en filas del log de trades.
func (r *Runner) tradeRecords(runID, symbol string, s domain.Series, a domain.Analysis) []ports.TradeRecord {
	out := make([]ports.TradeRecord, 0, len(a.Outcomes))
	for i, o := range a.Outcomes {
		out = append(out, ports.TradeRecord{
			RunID:      runID,
			Timestamp:  s.OpenTimeAt(o.Index),
			Symbol:     symbol,
			Direction:  o.Direction,
			Price:      o.EntryPrice,
			StopLoss:   o.StopLoss,
			TakeProfit: o.TakeProfit,
			Result:     o.Result,
			SignalType: a.Entries[i].SignalType,
		})
	}
	return out
}

// persist guarda trades y resumen si hay store configurado.
func (r *Runner) persist(ctx context.Context, report ports.Report) {
	if r.store == nil {
		return
	}
	if len(report.Trades) > 0 {
		if err := r.store.SaveTrades(ctx, report.Trades); err != nil {
			slog.Warn("storage error", "op", "save_trades", "err", err)
		}
	}
	if err := r.store.SaveSummary(ctx, ports.SummaryRecord{
		RunID:     report.RunID,
		Timestamp: r.now(),
		Symbol:    report.Symbol,
		Interval:  report.Interval,
		Summary:   report.Summary,
	}); err != nil {
		slog.Warn("storage error", "op", "save_summary", "err", err)
	}
}
