// Package synthetic genera series OHLCV artificiales (paseo aleatorio gaussiano)
// para probar la estrategia sin depender de la API.
package synthetic

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/alejandrodnm/sniperbot/internal/domain"
	"github.com/alejandrodnm/sniperbot/internal/ports"
)

// Config parametriza el paseo aleatorio.
type Config struct {
	StartPrice float64
	Candles    int
	Interval   time.Duration
	CloseSigma float64 // desviación del cambio open → close
	WickSigma  float64 // desviación de las mechas
	End        time.Time
	Seed       uint64
}

// DefaultConfig devuelve 1000 velas de 5m desde 10000 terminando ahora.
func DefaultConfig() Config {
	return Config{
		StartPrice: 10000,
		Candles:    1000,
		Interval:   5 * time.Minute,
		CloseSigma: 20,
		WickSigma:  10,
		End:        time.Now().UTC().Truncate(time.Minute),
		Seed:       uint64(time.Now().UnixNano()),
	}
}

// Generate produce cfg.Candles velas consecutivas. Cada vela abre en el close
// anterior; high/low envuelven open y close con una mecha |N(0, WickSigma)|.
// La misma Seed produce siempre la misma serie.
func Generate(cfg Config) domain.Series {
	if cfg.Candles <= 0 {
		return domain.NewSeries(nil)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	start := cfg.End.Add(-time.Duration(cfg.Candles) * cfg.Interval)

	candles := make([]domain.Candle, cfg.Candles)
	closePrice := cfg.StartPrice
	for i := range candles {
		open := closePrice
		closePrice = open + rng.NormFloat64()*cfg.CloseSigma
		candles[i] = domain.Candle{
			OpenTime: start.Add(time.Duration(i) * cfg.Interval),
			Open:     open,
			High:     math.Max(open, closePrice) + math.Abs(rng.NormFloat64()*cfg.WickSigma),
			Low:      math.Min(open, closePrice) - math.Abs(rng.NormFloat64()*cfg.WickSigma),
			Close:    closePrice,
			Volume:   1 + rng.Float64()*9,
		}
	}
	return domain.NewSeries(candles)
}

// Source implementa ports.CandleSource con series sintéticas.
// La semilla se deriva del símbolo para que cada uno tenga su propia serie estable.
type Source struct {
	cfg Config
}

// NewSource crea una fuente sintética basada en cfg.
func NewSource(cfg Config) *Source {
	return &Source{cfg: cfg}
}

// FetchCandles implementa ports.CandleSource. q.Limit sustituye a cfg.Candles si es positivo.
func (s *Source) FetchCandles(_ context.Context, q ports.CandleQuery) (domain.Series, error) {
	cfg := s.cfg
	if q.Limit > 0 {
		cfg.Candles = q.Limit
	}
	cfg.Seed ^= fnv64(q.Symbol)
	return Generate(cfg), nil
}

func fnv64(s string) uint64 {
	h := uint64(14695981039346656037)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}
