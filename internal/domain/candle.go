package domain

import (
	"cmp"
	"slices"
	"time"
)

// Column identifica una columna del contrato OHLCV de entrada.
type Column string

const (
	ColOpenTime Column = "open_time"
	ColOpen     Column = "open"
	ColHigh     Column = "high"
	ColLow      Column = "low"
	ColClose    Column = "close"
	ColVolume   Column = "volume"
)

// AllColumns es el contrato completo que entrega una fuente de velas.
var AllColumns = []Column{ColOpenTime, ColOpen, ColHigh, ColLow, ColClose, ColVolume}

// Candle es una vela OHLCV inmutable.
type Candle struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// Body devuelve |close - open|.
func (c Candle) Body() float64 {
	if c.Close >= c.Open {
		return c.Close - c.Open
	}
	return c.Open - c.Close
}

// Range devuelve high - low.
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// IsStrong devuelve true si el cuerpo ocupa al menos minRatio del rango.
// Una vela de rango cero nunca es fuerte.
func (c Candle) IsStrong(minRatio float64) bool {
	r := c.Range()
	if r <= 0 {
		return false
	}
	return c.Body()/r >= minRatio
}

// Bullish devuelve true si la vela cerró por encima de su apertura.
func (c Candle) Bullish() bool { return c.Close > c.Open }

// Bearish devuelve true si la vela cerró por debajo de su apertura.
func (c Candle) Bearish() bool { return c.Close < c.Open }

// Series es la secuencia ordenada de velas que consumen todos los detectores.
// El índice posicional es el único orden que usan los algoritmos.
type Series struct {
	candles []Candle
	missing map[Column]struct{}
}

// NewSeries construye una Series ordenada ascendentemente por OpenTime.
// Las velas con el mismo OpenTime colapsan en una sola fila (se conserva la primera).
// missing declara columnas ausentes en el origen (p.ej. un CSV sin "high").
func NewSeries(candles []Candle, missing ...Column) Series {
	out := make([]Candle, len(candles))
	copy(out, candles)
	slices.SortStableFunc(out, func(a, b Candle) int {
		return cmp.Compare(a.OpenTime.UnixNano(), b.OpenTime.UnixNano())
	})
	out = slices.CompactFunc(out, func(a, b Candle) bool {
		return a.OpenTime.Equal(b.OpenTime)
	})

	s := Series{candles: out}
	if len(missing) > 0 {
		s.missing = make(map[Column]struct{}, len(missing))
		for _, col := range missing {
			s.missing[col] = struct{}{}
		}
	}
	return s
}

// Len devuelve el número de velas.
func (s Series) Len() int { return len(s.candles) }

// At devuelve la vela en la posición i. Panics si i está fuera de rango.
func (s Series) At(i int) Candle { return s.candles[i] }

// InBounds devuelve true si 0 <= i < Len().
func (s Series) InBounds(i int) bool { return i >= 0 && i < len(s.candles) }

// Candles devuelve una copia de las velas.
func (s Series) Candles() []Candle {
	return slices.Clone(s.candles)
}

// HasColumns devuelve true si ninguna de las columnas dadas falta en el origen.
func (s Series) HasColumns(cols ...Column) bool {
	for _, col := range cols {
		if _, gone := s.missing[col]; gone {
			return false
		}
	}
	return true
}

// Missing devuelve las columnas declaradas como ausentes, en el orden del contrato.
func (s Series) Missing() []Column {
	var out []Column
	for _, col := range AllColumns {
		if _, gone := s.missing[col]; gone {
			out = append(out, col)
		}
	}
	return out
}

// OpenTimeAt devuelve el OpenTime de la vela i, o el zero value si i no es válido.
func (s Series) OpenTimeAt(i int) time.Time {
	if !s.InBounds(i) {
		return time.Time{}
	}
	return s.candles[i].OpenTime
}
