package synthetic_test

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/sniperbot/internal/adapters/synthetic"
	"github.com/alejandrodnm/sniperbot/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var end = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func testConfig(seed uint64) synthetic.Config {
	cfg := synthetic.DefaultConfig()
	cfg.End = end
	cfg.Seed = seed
	return cfg
}

func TestGenerate_ShapeInvariants(t *testing.T) {
	s := synthetic.Generate(testConfig(7))

	require.Equal(t, 1000, s.Len())
	assert.Equal(t, end.Add(-1000*5*time.Minute), s.At(0).OpenTime)
	assert.Equal(t, 10000.0, s.At(0).Open)

	for i := 0; i < s.Len(); i++ {
		c := s.At(i)
		assert.GreaterOrEqual(t, c.High, c.Open)
		assert.GreaterOrEqual(t, c.High, c.Close)
		assert.LessOrEqual(t, c.Low, c.Open)
		assert.LessOrEqual(t, c.Low, c.Close)
		assert.GreaterOrEqual(t, c.Volume, 1.0)
		assert.Less(t, c.Volume, 10.0)
		if i > 0 {
			assert.Equal(t, s.At(i-1).Close, c.Open, "each candle opens at the previous close")
			assert.Equal(t, 5*time.Minute, c.OpenTime.Sub(s.At(i-1).OpenTime))
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := synthetic.Generate(testConfig(42))
	b := synthetic.Generate(testConfig(42))
	c := synthetic.Generate(testConfig(43))

	assert.Equal(t, a.Candles(), b.Candles())
	assert.NotEqual(t, a.Candles(), c.Candles())
}

func TestGenerate_Empty(t *testing.T) {
	cfg := testConfig(1)
	cfg.Candles = 0

	assert.Zero(t, synthetic.Generate(cfg).Len())
}

func TestSource_PerSymbolSeriesAndLimit(t *testing.T) {
	src := synthetic.NewSource(testConfig(5))

	btc, err := src.FetchCandles(context.Background(), ports.CandleQuery{Symbol: "BTCUSDT", Limit: 50})
	require.NoError(t, err)
	eth, err := src.FetchCandles(context.Background(), ports.CandleQuery{Symbol: "ETHUSDT", Limit: 50})
	require.NoError(t, err)
	again, err := src.FetchCandles(context.Background(), ports.CandleQuery{Symbol: "BTCUSDT", Limit: 50})
	require.NoError(t, err)

	assert.Equal(t, 50, btc.Len())
	assert.NotEqual(t, btc.Candles(), eth.Candles())
	assert.Equal(t, btc.Candles(), again.Candles())
}
