package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/sniperbot/internal/domain"
	"github.com/alejandrodnm/sniperbot/internal/ports"
)

const (
	klinePath     = "/v5/market/kline"
	klinePageMax  = 1000 // máximo de velas por request
	defaultLimit  = 200
	klineRowWidth = 6 // startTime, open, high, low, close, volume (turnover opcional)
)

// intervals traduce la notación "5m"/"1h"/"1d" a la de Bybit.
var intervals = map[string]string{
	"1m": "1", "3m": "3", "5m": "5", "15m": "15", "30m": "30",
	"1h": "60", "2h": "120", "4h": "240", "6h": "360", "12h": "720",
	"1d": "D", "1w": "W", "1M": "M",
}

// ParseInterval devuelve el intervalo de Bybit para s ("5m", "1h", "60", "D"...).
func ParseInterval(s string) (string, error) {
	if iv, ok := intervals[s]; ok {
		return iv, nil
	}
	if iv, ok := intervals[strings.ToLower(s)]; ok {
		return iv, nil
	}
	for _, iv := range intervals {
		if iv == s {
			return iv, nil
		}
	}
	return "", fmt.Errorf("bybit: unsupported interval %q", s)
}

type klineResult struct {
	Symbol   string          `json:"symbol"`
	Category string          `json:"category"`
	List     [][]json.Number `json:"list"`
}

// FetchCandles implementa ports.CandleSource usando /v5/market/kline.
//
// Bybit devuelve las velas de la más reciente a la más antigua y como mucho
// 1000 por request; pagina hacia atrás con el parámetro end hasta completar
// q.Limit o agotar el histórico.
func (c *Client) FetchCandles(ctx context.Context, q ports.CandleQuery) (domain.Series, error) {
	iv, err := ParseInterval(q.Interval)
	if err != nil {
		return domain.Series{}, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	var all []domain.Candle
	var end int64 // 0 = hasta ahora
	for len(all) < limit {
		page := min(klinePageMax, limit-len(all))
		params := url.Values{}
		params.Set("category", c.category)
		params.Set("symbol", q.Symbol)
		params.Set("interval", iv)
		params.Set("limit", strconv.Itoa(page))
		if end > 0 {
			params.Set("end", strconv.FormatInt(end, 10))
		}

		var res klineResult
		if err := c.get(ctx, c.base+klinePath+"?"+params.Encode(), &res); err != nil {
			return domain.Series{}, fmt.Errorf("bybit.FetchCandles %s: %w", q.Symbol, err)
		}

		candles := parseRows(res.List)
		if len(candles) == 0 {
			break
		}
		all = append(all, candles...)

		oldest := candles[0].OpenTime
		for _, cd := range candles {
			if cd.OpenTime.Before(oldest) {
				oldest = cd.OpenTime
			}
		}
		end = oldest.UnixMilli() - 1

		slog.Debug("fetched kline page",
			"symbol", q.Symbol,
			"interval", iv,
			"count", len(candles),
			"total", len(all),
		)

		if len(res.List) < page {
			break
		}
	}

	// NewSeries ordena ascendente y elimina duplicados entre páginas.
	return domain.NewSeries(all), nil
}

// parseRows convierte filas [startTime, open, high, low, close, volume, turnover].
// Las filas incompletas o con números inválidos se descartan.
func parseRows(rows [][]json.Number) []domain.Candle {
	out := make([]domain.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < klineRowWidth {
			continue
		}
		ms, err := row[0].Int64()
		if err != nil {
			continue
		}
		vals := make([]float64, 5)
		ok := true
		for i := range vals {
			f, err := row[i+1].Float64()
			if err != nil {
				ok = false
				break
			}
			vals[i] = f
		}
		if !ok {
			continue
		}
		out = append(out, domain.Candle{
			OpenTime: time.UnixMilli(ms).UTC(),
			Open:     vals[0],
			High:     vals[1],
			Low:      vals[2],
			Close:    vals[3],
			Volume:   vals[4],
		})
	}
	return out
}
