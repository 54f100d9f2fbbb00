package backtest

import (
	"context"
	"errors"

	"github.com/alejandrodnm/sniperbot/internal/ports"
)

// FanOut replica cada escritura en varios ResultStore (p.ej. CSV + SQLite).
// Intenta todos los stores y devuelve los errores unidos.
type FanOut []ports.ResultStore

// SaveTrades implementa ports.ResultStore.
func (f FanOut) SaveTrades(ctx context.Context, trades []ports.TradeRecord) error {
	var errs []error
	for _, s := range f {
		if err := s.SaveTrades(ctx, trades); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SaveSummary implementa ports.ResultStore.
func (f FanOut) SaveSummary(ctx context.Context, summary ports.SummaryRecord) error {
	var errs []error
	for _, s := range f {
		if err := s.SaveSummary(ctx, summary); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
