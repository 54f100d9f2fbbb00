package ports

import (
	"context"

	"github.com/alejandrodnm/sniperbot/internal/domain"
)

// Report es el resultado completo de un backtest listo para presentar.
type Report struct {
	RunID    string
	Symbol   string
	Interval string
	Candles  int
	Signals  int
	Entries  []domain.FilteredEntry
	Trades   []TradeRecord
	Summary  domain.Summary
	Degraded []domain.DegradeReason // razones de degradación de BOS y FVG, si las hay
}

// Notifier presenta el resultado de un backtest al usuario.
type Notifier interface {
	// Notify muestra el resumen y, según la implementación, la tabla de trades.
	Notify(ctx context.Context, report Report) error
}
