package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/sniperbot/internal/ports"
)

var (
	tradeHeader   = []string{"timestamp", "symbol", "direction", "price", "stop_loss", "take_profit", "result", "signal_type"}
	summaryHeader = []string{"timestamp", "total", "tp", "sl", "tp_pct", "sl_pct", "net_pips"}
)

// Store añade trades y resúmenes a ficheros CSV de solo-append.
// La cabecera se escribe una única vez, cuando el fichero está vacío.
// Un path vacío desactiva el fichero correspondiente. Implementa ports.ResultStore.
type Store struct {
	mu          sync.Mutex
	tradesPath  string
	summaryPath string
}

// NewStore crea un Store. tradesPath y summaryPath pueden ser vacíos.
func NewStore(tradesPath, summaryPath string) *Store {
	return &Store{tradesPath: tradesPath, summaryPath: summaryPath}
}

// SaveTrades añade una fila por trade al trade log.
func (s *Store) SaveTrades(_ context.Context, trades []ports.TradeRecord) error {
	if s.tradesPath == "" || len(trades) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, []string{
			formatTime(t.Timestamp),
			t.Symbol,
			string(t.Direction),
			decimal.NewFromFloat(t.Price).String(),
			decimal.NewFromFloat(t.StopLoss).String(),
			decimal.NewFromFloat(t.TakeProfit).String(),
			string(t.Result),
			string(t.SignalType),
		})
	}
	if err := s.appendRows(s.tradesPath, tradeHeader, rows); err != nil {
		return fmt.Errorf("csvfile.SaveTrades: %w", err)
	}
	return nil
}

// SaveSummary añade una fila al histórico de resúmenes.
// Los porcentajes y los pips se escriben con dos decimales.
func (s *Store) SaveSummary(_ context.Context, r ports.SummaryRecord) error {
	if s.summaryPath == "" {
		return nil
	}
	row := []string{
		formatTime(r.Timestamp),
		fmt.Sprint(r.Summary.Total),
		fmt.Sprint(r.Summary.TPCount),
		fmt.Sprint(r.Summary.SLCount),
		fixed2(r.TPPct()),
		fixed2(r.SLPct()),
		fixed2(r.Summary.NetPips),
	}
	if err := s.appendRows(s.summaryPath, summaryHeader, [][]string{row}); err != nil {
		return fmt.Errorf("csvfile.SaveSummary: %w", err)
	}
	return nil
}

func (s *Store) appendRows(path string, header []string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return err
		}
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func fixed2(f float64) string {
	return decimal.NewFromFloat(f).StringFixed(2)
}
