package notify_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/sniperbot/internal/adapters/notify"
	"github.com/alejandrodnm/sniperbot/internal/domain"
	"github.com/alejandrodnm/sniperbot/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 0, 10, 0, 0, time.UTC)

func makeReport() ports.Report {
	return ports.Report{
		RunID:    "0b8f3c1e-aaaa-bbbb-cccc-123456789abc",
		Symbol:   "BTCUSDT",
		Interval: "5m",
		Candles:  200,
		Signals:  14,
		Entries:  []domain.FilteredEntry{{Index: 2}, {Index: 9}},
		Trades: []ports.TradeRecord{
			{Timestamp: t0, Symbol: "BTCUSDT", Direction: domain.Long, Price: 42000.5, StopLoss: 41990.5, TakeProfit: 42020.5, Result: domain.ResultTP, SignalType: domain.SignalComposite},
			{Timestamp: t0.Add(35 * time.Minute), Symbol: "BTCUSDT", Direction: domain.Short, Price: 42100, StopLoss: 42110, TakeProfit: 42080, Result: domain.ResultSL, SignalType: domain.SignalComposite},
		},
		Summary: domain.Summary{Total: 2, TPCount: 1, SLCount: 1, NetPips: 10},
	}
}

func TestConsole_Notify_Table(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, notify.FormatTable)

	require.NoError(t, n.Notify(context.Background(), makeReport()))

	out := buf.String()
	assert.Contains(t, out, "BTCUSDT 5m: 200 candles, 14 signals, 2 entries")
	assert.Contains(t, out, "42000.50")
	assert.Contains(t, out, "SHORT")
	assert.Contains(t, out, "BOS+FVG")
	assert.Contains(t, out, "Total trades: 2")
	assert.Contains(t, out, "Take Profit: 1 (50.00%)")
	assert.Contains(t, out, "Stop Loss: 1 (50.00%)")
	assert.Contains(t, out, "Net result: 10.00 pips")
}

func TestConsole_Notify_NoTrades(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, notify.FormatTable)

	err := n.Notify(context.Background(), ports.Report{Symbol: "BTCUSDT", Interval: "5m"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No trades executed.")
	assert.NotContains(t, buf.String(), "Simulation Summary")
}

func TestConsole_Notify_Degraded(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, notify.FormatTable)

	err := n.Notify(context.Background(), ports.Report{
		Symbol:   "BTCUSDT",
		Degraded: []domain.DegradeReason{domain.DegradeMissingColumns, domain.DegradeTooShort},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "detector degraded: missing_columns")
	assert.Contains(t, buf.String(), "detector degraded: too_short")
}

func TestConsole_Notify_Compact(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, notify.FormatCompact)

	require.NoError(t, n.Notify(context.Background(), makeReport()))
	assert.Equal(t, "BTCUSDT 5m | trades:2 TP:1 (50.00%) SL:1 (50.00%) net:10.00 pips\n", buf.String())

	buf.Reset()
	require.NoError(t, n.Notify(context.Background(), ports.Report{Symbol: "ETHUSDT", Interval: "1h"}))
	assert.Equal(t, "ETHUSDT 1h | No trades executed.\n", buf.String())
}

func TestConsole_PrintHistory(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, notify.FormatTable)

	n.PrintHistory([]ports.SummaryRecord{{
		RunID:     "0b8f3c1e-aaaa",
		Timestamp: t0,
		Symbol:    "ETHUSDT",
		Interval:  "15m",
		Summary:   domain.Summary{Total: 4, TPCount: 1, SLCount: 3, NetPips: -10},
	}})

	out := buf.String()
	assert.Contains(t, out, "0b8f3c1e")
	assert.NotContains(t, out, "0b8f3c1e-aaaa")
	assert.Contains(t, out, "25.00")
	assert.Contains(t, out, "-10.00")

	buf.Reset()
	n.PrintHistory(nil)
	assert.Contains(t, buf.String(), "No backtests stored.")
}
