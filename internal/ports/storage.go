package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/sniperbot/internal/domain"
)

// TradeRecord es una fila del log de trades simulados.
type TradeRecord struct {
	RunID      string
	Timestamp  time.Time // open time de la vela de entrada
	Symbol     string
	Direction  domain.Direction
	Price      float64
	StopLoss   float64
	TakeProfit float64
	Result     domain.Result
	SignalType domain.SignalType
}

// SummaryRecord es una fila del histórico de resúmenes.
type SummaryRecord struct {
	RunID     string
	Timestamp time.Time
	Symbol    string
	Interval  string
	Summary   domain.Summary
}

// TPPct delega en domain.Summary.
func (r SummaryRecord) TPPct() float64 { return r.Summary.TPPct() }

// SLPct delega en domain.Summary.
func (r SummaryRecord) SLPct() float64 { return r.Summary.SLPct() }

// ResultStore persiste los trades y resúmenes de cada backtest.
type ResultStore interface {
	// SaveTrades añade los trades de una ejecución.
	SaveTrades(ctx context.Context, trades []TradeRecord) error

	// SaveSummary añade el resumen de una ejecución.
	SaveSummary(ctx context.Context, summary SummaryRecord) error
}

// SummaryHistory lee resúmenes guardados, los más recientes primero.
type SummaryHistory interface {
	RecentSummaries(ctx context.Context, limit int) ([]SummaryRecord, error)
}

// TradeHistory lee los trades guardados de una ejecución.
type TradeHistory interface {
	RunTrades(ctx context.Context, runID string) ([]TradeRecord, error)
}
