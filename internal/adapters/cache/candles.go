package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/sniperbot/internal/domain"
	"github.com/alejandrodnm/sniperbot/internal/ports"
)

type cachedCandle struct {
	OpenTime int64   `json:"t"`
	Open     float64 `json:"o"`
	High     float64 `json:"h"`
	Low      float64 `json:"l"`
	Close    float64 `json:"c"`
	Volume   float64 `json:"v"`
}

type cachedSeries struct {
	Candles []cachedCandle  `json:"candles"`
	Missing []domain.Column `json:"missing,omitempty"`
}

// CandleCache decora un ports.CandleSource guardando cada serie descargada
// por (symbol, interval, limit) durante ttl. Un fallo de la cache nunca
// rompe la descarga: se registra y se consulta la fuente.
type CandleCache struct {
	next ports.CandleSource
	kv   KV
	ttl  time.Duration
}

// NewCandleCache envuelve next.
func NewCandleCache(next ports.CandleSource, kv KV, ttl time.Duration) *CandleCache {
	return &CandleCache{next: next, kv: kv, ttl: ttl}
}

// FetchCandles implementa ports.CandleSource.
func (c *CandleCache) FetchCandles(ctx context.Context, q ports.CandleQuery) (domain.Series, error) {
	key := cacheKey(q)

	data, err := c.kv.Get(ctx, key)
	switch {
	case err == nil:
		s, derr := decode(data)
		if derr == nil {
			slog.Debug("candle cache hit", "key", key, "candles", s.Len())
			return s, nil
		}
		slog.Warn("candle cache entry unreadable", "key", key, "err", derr)
	case !errors.Is(err, ErrMiss):
		slog.Warn("candle cache get failed", "key", key, "err", err)
	}

	s, err := c.next.FetchCandles(ctx, q)
	if err != nil {
		return s, err
	}
	if s.Len() == 0 {
		return s, nil
	}

	if err := c.kv.Set(ctx, key, encode(s), c.ttl); err != nil {
		slog.Warn("candle cache set failed", "key", key, "err", err)
	}
	return s, nil
}

func cacheKey(q ports.CandleQuery) string {
	return fmt.Sprintf("candles:%s:%s:%d", q.Symbol, q.Interval, q.Limit)
}

func encode(s domain.Series) []byte {
	out := cachedSeries{
		Candles: make([]cachedCandle, 0, s.Len()),
		Missing: s.Missing(),
	}
	for i := 0; i < s.Len(); i++ {
		cd := s.At(i)
		out.Candles = append(out.Candles, cachedCandle{
			OpenTime: cd.OpenTime.UnixMilli(),
			Open:     cd.Open,
			High:     cd.High,
			Low:      cd.Low,
			Close:    cd.Close,
			Volume:   cd.Volume,
		})
	}
	data, _ := json.Marshal(out) // solo tipos básicos: no falla
	return data
}

func decode(data []byte) (domain.Series, error) {
	var in cachedSeries
	if err := json.Unmarshal(data, &in); err != nil {
		return domain.Series{}, err
	}
	candles := make([]domain.Candle, 0, len(in.Candles))
	for _, cd := range in.Candles {
		candles = append(candles, domain.Candle{
			OpenTime: time.UnixMilli(cd.OpenTime).UTC(),
			Open:     cd.Open,
			High:     cd.High,
			Low:      cd.Low,
			Close:    cd.Close,
			Volume:   cd.Volume,
		})
	}
	return domain.NewSeries(candles, in.Missing...), nil
}
