package domain

import (
	"errors"
	"fmt"
)

// ErrEntryOutOfRange se devuelve si el índice de la entrada no pertenece a la serie.
var ErrEntryOutOfRange = errors.New("entry index out of range")

// Result es el desenlace de un trade simulado.
type Result string

const (
	ResultTP Result = "TP"
	ResultSL Result = "SL"
)

// RiskConfig fija los offsets de stop/target y la ventana de simulación.
// Son distancias absolutas en unidades de precio, no porcentajes.
type RiskConfig struct {
	StopDistance   float64
	RewardDistance float64
	Lookahead      int // velas posteriores a la entrada que se inspeccionan
}

// DefaultRiskConfig devuelve el 1:2 de referencia (stop 10, target 20, 3 velas).
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		StopDistance:   10,
		RewardDistance: 20,
		Lookahead:      3,
	}
}

// Levels devuelve stop-loss y take-profit para una entrada.
func (r RiskConfig) Levels(price float64, dir Direction) (sl, tp float64, err error) {
	switch dir {
	case Long:
		return price - r.StopDistance, price + r.RewardDistance, nil
	case Short:
		return price + r.StopDistance, price - r.RewardDistance, nil
	default:
		return 0, 0, fmt.Errorf("domain.Levels %q: %w", dir, ErrInvalidDirection)
	}
}

// TradeOutcome es el resultado de simular una entrada.
type TradeOutcome struct {
	Index      int
	Direction  Direction
	EntryPrice float64
	StopLoss   float64
	TakeProfit float64
	Result     Result
}

// SimulateTrade resuelve una entrada a TP o SL recorriendo las velas
// index+1 .. min(index+Lookahead, N-1).
//
// El stop se evalúa antes que el target dentro de la misma vela, así que una
// vela que toca ambos niveles cuenta como SL. Si ningún nivel se toca dentro
// de la ventana el resultado es SL.
func SimulateTrade(s Series, e FilteredEntry, risk RiskConfig) (TradeOutcome, error) {
	sl, tp, err := risk.Levels(e.Price, e.Direction)
	if err != nil {
		return TradeOutcome{}, err
	}
	if !s.InBounds(e.Index) {
		return TradeOutcome{}, fmt.Errorf("domain.SimulateTrade: index %d of %d: %w", e.Index, s.Len(), ErrEntryOutOfRange)
	}

	out := TradeOutcome{
		Index:      e.Index,
		Direction:  e.Direction,
		EntryPrice: e.Price,
		StopLoss:   sl,
		TakeProfit: tp,
		Result:     ResultSL,
	}

	end := min(e.Index+risk.Lookahead, s.Len()-1)
	for i := e.Index + 1; i <= end; i++ {
		c := s.At(i)
		if e.Direction == Long {
			if c.Low <= sl {
				return out, nil
			}
			if c.High >= tp {
				out.Result = ResultTP
				return out, nil
			}
			continue
		}
		if c.High >= sl {
			return out, nil
		}
		if c.Low <= tp {
			out.Result = ResultTP
			return out, nil
		}
	}
	return out, nil
}
