package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/sniperbot/internal/domain"
	"github.com/alejandrodnm/sniperbot/internal/ports"
)

// Formatos de salida soportados por Console.
const (
	FormatTable   = "table"
	FormatCompact = "compact"
)

// Console implementa ports.Notifier.
// Es seguro para uso concurrente (RunMany notifica desde varios workers).
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	format string
}

// NewConsole crea un notificador que escribe a stdout.
// format es FormatTable (resumen + tabla de trades) o FormatCompact (una línea).
func NewConsole(format string) *Console {
	return &Console{out: os.Stdout, format: format}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, format string) *Console {
	return &Console{out: w, format: format}
}

// Notify imprime el resultado del backtest en el formato configurado.
func (c *Console) Notify(_ context.Context, r ports.Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.format == FormatCompact {
		c.printCompact(r)
		return nil
	}

	fmt.Fprintf(c.out, "\n%s %s: %d candles, %d signals, %d entries\n",
		r.Symbol, r.Interval, r.Candles, r.Signals, len(r.Entries))
	for _, d := range r.Degraded {
		if d != domain.DegradeNone {
			fmt.Fprintf(c.out, "  ! detector degraded: %s\n", d)
		}
	}
	if len(r.Trades) > 0 {
		c.printTrades(r.Trades)
	}
	c.printSummary(r.Summary)
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(r ports.Report) {
	s := r.Summary
	if s.Total == 0 {
		fmt.Fprintf(c.out, "%s %s | No trades executed.\n", r.Symbol, r.Interval)
		return
	}
	fmt.Fprintf(c.out, "%s %s | trades:%d TP:%d (%.2f%%) SL:%d (%.2f%%) net:%.2f pips\n",
		r.Symbol, r.Interval, s.Total, s.TPCount, s.TPPct(), s.SLCount, s.SLPct(), s.NetPips)
}

// printTrades imprime la tabla de trades simulados.
func (c *Console) printTrades(trades []ports.TradeRecord) {
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Time", "Dir", "Entry", "SL", "TP", "Signal", "Result")

	for i, t := range trades {
		table.Append(
			fmt.Sprintf("%d", i+1),
			t.Timestamp.UTC().Format("2006-01-02 15:04"),
			strings.ToUpper(string(t.Direction)),
			fmt.Sprintf("%.2f", t.Price),
			fmt.Sprintf("%.2f", t.StopLoss),
			fmt.Sprintf("%.2f", t.TakeProfit),
			string(t.SignalType),
			string(t.Result),
		)
	}

	table.Render()
}

// printSummary imprime el resumen de la simulación.
func (c *Console) printSummary(s domain.Summary) {
	if s.Total == 0 {
		fmt.Fprintln(c.out, "No trades executed.")
		return
	}
	fmt.Fprintln(c.out, "\nSimulation Summary:")
	fmt.Fprintf(c.out, "Total trades: %d\n", s.Total)
	fmt.Fprintf(c.out, "Take Profit: %d (%.2f%%)\n", s.TPCount, s.TPPct())
	fmt.Fprintf(c.out, "Stop Loss: %d (%.2f%%)\n", s.SLCount, s.SLPct())
	fmt.Fprintf(c.out, "Net result: %.2f pips\n", s.NetPips)
}

// PrintHistory imprime los resúmenes guardados, los más recientes primero.
func (c *Console) PrintHistory(records []ports.SummaryRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(records) == 0 {
		fmt.Fprintln(c.out, "No backtests stored.")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Run", "When", "Symbol", "TF", "Trades", "TP%", "SL%", "Net pips")
	for _, r := range records {
		table.Append(
			shortID(r.RunID),
			r.Timestamp.UTC().Format("2006-01-02 15:04"),
			r.Symbol,
			r.Interval,
			fmt.Sprintf("%d", r.Summary.Total),
			fmt.Sprintf("%.2f", r.TPPct()),
			fmt.Sprintf("%.2f", r.SLPct()),
			fmt.Sprintf("%.2f", r.Summary.NetPips),
		)
	}
	table.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
