package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alejandrodnm/sniperbot/internal/adapters/httpapi"
	"github.com/alejandrodnm/sniperbot/internal/domain"
	"github.com/alejandrodnm/sniperbot/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBacktester struct {
	mock.Mock
}

func (m *mockBacktester) Run(ctx context.Context, q ports.CandleQuery) (ports.Report, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(ports.Report), args.Error(1)
}

type fakeHistory struct {
	records   []ports.SummaryRecord
	trades    map[string][]ports.TradeRecord
	lastLimit int
}

func (f *fakeHistory) RecentSummaries(_ context.Context, limit int) ([]ports.SummaryRecord, error) {
	f.lastLimit = limit
	return f.records, nil
}

func (f *fakeHistory) RunTrades(_ context.Context, runID string) ([]ports.TradeRecord, error) {
	return f.trades[runID], nil
}

var (
	t0       = time.Date(2024, 1, 1, 0, 10, 0, 0, time.UTC)
	defaults = ports.CandleQuery{Symbol: "BTCUSDT", Interval: "5m", Limit: 200}
)

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	h := httpapi.NewServer(&mockBacktester{}, nil, nil, defaults).Router()

	rec := do(t, h, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPostBacktest_UsesBodyOverDefaults(t *testing.T) {
	bt := &mockBacktester{}
	bt.On("Run", mock.Anything, ports.CandleQuery{Symbol: "ETHUSDT", Interval: "1h", Limit: 200}).Return(ports.Report{
		RunID:    "run-1",
		Symbol:   "ETHUSDT",
		Interval: "1h",
		Candles:  200,
		Signals:  3,
		Entries:  []domain.FilteredEntry{{Index: 4}},
		Trades: []ports.TradeRecord{{
			Timestamp: t0, Symbol: "ETHUSDT", Direction: domain.Long,
			Price: 107, StopLoss: 97, TakeProfit: 127, Result: domain.ResultTP, SignalType: domain.SignalComposite,
		}},
		Summary: domain.Summary{Total: 1, TPCount: 1, NetPips: 20},
	}, nil)
	h := httpapi.NewServer(bt, nil, nil, defaults).Router()

	rec := do(t, h, http.MethodPost, "/backtests", `{"symbol":" ethusdt ","interval":"1h"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	bt.AssertExpectations(t)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "run-1", got["run_id"])
	assert.Equal(t, 1.0, got["entries"])
	summary := got["summary"].(map[string]any)
	assert.Equal(t, 100.0, summary["tp_pct"])
	assert.Equal(t, 20.0, summary["net_pips"])
	trades := got["trades"].([]any)
	require.Len(t, trades, 1)
	assert.Equal(t, "BOS+FVG", trades[0].(map[string]any)["signal_type"])
}

func TestPostBacktest_EmptyBodyUsesDefaults(t *testing.T) {
	bt := &mockBacktester{}
	bt.On("Run", mock.Anything, defaults).Return(ports.Report{Symbol: "BTCUSDT"}, nil)
	h := httpapi.NewServer(bt, nil, nil, defaults).Router()

	rec := do(t, h, http.MethodPost, "/backtests", "")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"trades":[]`)
	bt.AssertExpectations(t)
}

func TestPostBacktest_BadRequests(t *testing.T) {
	h := httpapi.NewServer(&mockBacktester{}, nil, nil, ports.CandleQuery{}).Router()

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/backtests", `{not json`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/backtests", `{"interval":"5m"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/backtests", `{"symbol":"X","limit":999999}`).Code)
}

func TestPostBacktest_UpstreamFailure(t *testing.T) {
	bt := &mockBacktester{}
	bt.On("Run", mock.Anything, mock.Anything).Return(ports.Report{}, errors.New("bybit down"))
	h := httpapi.NewServer(bt, nil, nil, defaults).Router()

	rec := do(t, h, http.MethodPost, "/backtests", "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"bybit down"}`, rec.Body.String())
}

func TestGetBacktests_History(t *testing.T) {
	hist := &fakeHistory{records: []ports.SummaryRecord{{
		RunID: "r1", Timestamp: t0, Symbol: "BTCUSDT", Interval: "5m",
		Summary: domain.Summary{Total: 4, TPCount: 1, SLCount: 3, NetPips: -10},
	}}}
	h := httpapi.NewServer(&mockBacktester{}, hist, hist, defaults).Router()

	rec := do(t, h, http.MethodGet, "/backtests?limit=5", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, hist.lastLimit)
	assert.JSONEq(t, `[{
		"run_id":"r1","timestamp":"2024-01-01T00:10:00Z","symbol":"BTCUSDT","interval":"5m",
		"summary":{"total":4,"tp":1,"sl":3,"tp_pct":25,"sl_pct":75,"net_pips":-10}
	}]`, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/backtests?limit=abc", "").Code)
}

func TestGetRunTrades(t *testing.T) {
	hist := &fakeHistory{trades: map[string][]ports.TradeRecord{
		"r1": {{Timestamp: t0, Symbol: "BTCUSDT", Direction: domain.Short, Result: domain.ResultSL}},
	}}
	h := httpapi.NewServer(&mockBacktester{}, hist, hist, defaults).Router()

	rec := do(t, h, http.MethodGet, "/backtests/r1/trades", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"direction":"short"`)

	rec = do(t, h, http.MethodGet, "/backtests/unknown/trades", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestStorageDisabled(t *testing.T) {
	h := httpapi.NewServer(&mockBacktester{}, nil, nil, defaults).Router()

	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/backtests", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/backtests/x/trades", "").Code)
}
