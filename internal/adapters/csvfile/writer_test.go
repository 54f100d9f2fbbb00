package csvfile_test

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alejandrodnm/sniperbot/internal/adapters/csvfile"
	"github.com/alejandrodnm/sniperbot/internal/domain"
	"github.com/alejandrodnm/sniperbot/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ts = time.Date(2024, 1, 1, 0, 10, 0, 0, time.UTC)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestStore_SaveTrades_HeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trade_log.csv")
	store := csvfile.NewStore(path, "")
	trade := ports.TradeRecord{
		Timestamp:  ts,
		Symbol:     "BTCUSDT",
		Direction:  domain.Long,
		Price:      107,
		StopLoss:   97,
		TakeProfit: 127.5,
		Result:     domain.ResultTP,
		SignalType: domain.SignalComposite,
	}

	require.NoError(t, store.SaveTrades(context.Background(), []ports.TradeRecord{trade}))
	require.NoError(t, store.SaveTrades(context.Background(), []ports.TradeRecord{trade, trade}))

	rows := readCSV(t, path)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"timestamp", "symbol", "direction", "price", "stop_loss", "take_profit", "result", "signal_type"}, rows[0])
	assert.Equal(t, []string{"2024-01-01T00:10:00Z", "BTCUSDT", "long", "107", "97", "127.5", "TP", "BOS+FVG"}, rows[1])
}

func TestStore_SaveSummary_FixedDecimals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.csv")
	store := csvfile.NewStore("", path)

	err := store.SaveSummary(context.Background(), ports.SummaryRecord{
		Timestamp: ts,
		Summary:   domain.Summary{Total: 3, TPCount: 1, SLCount: 2, NetPips: 0},
	})
	require.NoError(t, err)
	require.NoError(t, store.SaveSummary(context.Background(), ports.SummaryRecord{Timestamp: ts}))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"timestamp", "total", "tp", "sl", "tp_pct", "sl_pct", "net_pips"}, rows[0])
	assert.Equal(t, []string{"2024-01-01T00:10:00Z", "3", "1", "2", "33.33", "66.67", "0.00"}, rows[1])
	assert.Equal(t, []string{"2024-01-01T00:10:00Z", "0", "0", "0", "0.00", "0.00", "0.00"}, rows[2])
}

func TestStore_EmptyPathsAreNoOps(t *testing.T) {
	store := csvfile.NewStore("", "")

	assert.NoError(t, store.SaveTrades(context.Background(), []ports.TradeRecord{{Symbol: "X"}}))
	assert.NoError(t, store.SaveSummary(context.Background(), ports.SummaryRecord{}))
}

func TestStore_UnwritablePath(t *testing.T) {
	store := csvfile.NewStore(filepath.Join(t.TempDir(), "missing", "trades.csv"), "")

	err := store.SaveTrades(context.Background(), []ports.TradeRecord{{Symbol: "X"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csvfile.SaveTrades")
}

func TestWriteCandles_RoundTripsThroughLoad(t *testing.T) {
	in := domain.NewSeries([]domain.Candle{
		{OpenTime: ts, Open: 100.123, High: 101.456, Low: 99.5, Close: 100.999, Volume: 2.34567},
		{OpenTime: ts.Add(5 * time.Minute), Open: 101, High: 102, Low: 100, Close: 101.5, Volume: 1},
	})

	var b strings.Builder
	require.NoError(t, csvfile.WriteCandles(&b, in))
	assert.True(t, strings.HasPrefix(b.String(), "open_time,open,high,low,close,volume\n"))
	assert.Contains(t, b.String(), "2024-01-01T00:10:00Z,100.12,101.46,99.50,101.00,2.3457")

	out, err := csvfile.Load(strings.NewReader(b.String()))
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, ts, out.At(0).OpenTime)
	assert.Equal(t, 101.5, out.At(1).Close)
}
