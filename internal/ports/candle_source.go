package ports

import (
	"context"

	"github.com/alejandrodnm/sniperbot/internal/domain"
)

// CandleQuery describe la serie pedida a una fuente de velas.
type CandleQuery struct {
	Symbol   string // p.ej. "BTCUSDT"
	Interval string // intervalo de la vela ("5m", "1h"...)
	Limit    int    // número máximo de velas
}

// CandleSource obtiene una serie OHLCV ordenada (API remota o archivo local).
type CandleSource interface {
	// FetchCandles devuelve la serie pedida. Una serie vacía no es un error;
	// los reintentos, si los hay, son responsabilidad de la fuente.
	FetchCandles(ctx context.Context, q CandleQuery) (domain.Series, error)
}
