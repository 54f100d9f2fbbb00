package domain

import (
	"math/rand/v2"
	"time"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// bar construye una vela en la posición i (velas de 5m).
func bar(i int, o, h, l, c float64) Candle {
	return Candle{
		OpenTime: t0.Add(time.Duration(i) * 5 * time.Minute),
		Open:     o,
		High:     h,
		Low:      l,
		Close:    c,
		Volume:   1,
	}
}

// flat devuelve n velas neutras alrededor de price (open == close, rango 2).
func flat(n int, price float64) []Candle {
	out := make([]Candle, n)
	for i := range out {
		out[i] = bar(i, price, price+1, price-1, price)
	}
	return out
}

// randomSeries genera un random walk determinista.
func randomSeries(seed uint64, n int) Series {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]Candle, n)
	price := 10_000.0
	for i := range out {
		open := price
		closeP := open + r.NormFloat64()*20
		high := max(open, closeP) + abs(r.NormFloat64()*10)
		low := min(open, closeP) - abs(r.NormFloat64()*10)
		out[i] = bar(i, open, high, low, closeP)
		price = closeP
	}
	return NewSeries(out)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
