package backtest

// Worker pool para backtests independientes.
//
// Cada backtest es una función pura sobre su propia serie, así que varios
// símbolos o intervalos pueden correr en paralelo sin sincronización extra.
// El rate limiter de la fuente sigue limitando las llamadas a la API.

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/alejandrodnm/sniperbot/internal/ports"
)

// Outcome es el resultado de un backtest dentro de RunMany.
type Outcome struct {
	Query  ports.CandleQuery
	Report ports.Report
	Err    error
}

// RunMany ejecuta un backtest por consulta usando un worker pool.
// Los resultados se devuelven en el mismo orden que queries.
//
// Si cfg.Workers <= 0 usa runtime.NumCPU().
func (r *Runner) RunMany(ctx context.Context, queries []ports.CandleQuery) []Outcome {
	workers := r.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(queries))

	type work struct {
		idx   int
		query ports.CandleQuery
	}

	workCh := make(chan work, len(queries))
	results := make([]Outcome, len(queries))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for w := range workCh {
				report, err := r.Run(ctx, w.query)
				if err != nil {
					slog.Warn("backtest failed", "symbol", w.query.Symbol, "err", err)
				}
				// Cada worker escribe en su propio índice.
				results[w.idx] = Outcome{Query: w.query, Report: report, Err: err}
			}
		}()
	}

	for i, q := range queries {
		workCh <- work{idx: i, query: q}
	}
	close(workCh)
	wg.Wait()

	slog.Debug("concurrent backtests complete",
		"queries", len(queries),
		"workers", workers,
	)
	return results
}
