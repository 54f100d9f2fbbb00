package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDirection se devuelve cuando una dirección no es "long" ni "short".
var ErrInvalidDirection = errors.New("direction must be 'long' or 'short'")

// Direction es el lado del trade.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// Valid devuelve true para Long y Short.
func (d Direction) Valid() bool {
	return d == Long || d == Short
}

// ParseDirection normaliza s ("LONG", " short ") a una Direction válida.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("domain.ParseDirection %q: %w", s, ErrInvalidDirection)
	}
	return d, nil
}

// SignalType identifica el patrón que originó una señal o entrada.
type SignalType string

const (
	SignalBOS       SignalType = "BOS"
	SignalFVG       SignalType = "FVG"
	SignalComposite SignalType = "BOS+FVG"
)

// Signal es un evento estructural listo para el filtro.
type Signal struct {
	Index     int
	Price     float64 // close[Index]
	Direction Direction
	Type      SignalType
	Magnitude float64 // bos_strength o fvg_gap
}

// BuildSignals convierte las anotaciones BOS y FVG en una lista ordenada por índice.
// Dentro del mismo índice la señal BOS precede a la FVG.
func BuildSignals(s Series, bos, fvg Annotation) []Signal {
	var out []Signal
	for i := 0; i < s.Len(); i++ {
		if i < len(bos.Labels) && bos.Labels[i] != LabelNone {
			out = append(out, Signal{
				Index:     i,
				Price:     s.At(i).Close,
				Direction: bos.Labels[i].Direction(),
				Type:      SignalBOS,
				Magnitude: bos.Magnitudes[i],
			})
		}
		if i < len(fvg.Labels) && fvg.Labels[i] != LabelNone {
			out = append(out, Signal{
				Index:     i,
				Price:     s.At(i).Close,
				Direction: fvg.Labels[i].Direction(),
				Type:      SignalFVG,
				Magnitude: fvg.Magnitudes[i],
			})
		}
	}
	return out
}

// AnnotatedCandle es una vela con las columnas bos, bos_strength, fvg y fvg_gap.
type AnnotatedCandle struct {
	Candle
	BOS         Label
	BOSStrength float64
	FVG         Label
	FVGGap      float64
}

// Annotate adjunta las anotaciones de ambos detectores a cada vela de la serie.
func Annotate(s Series, bos, fvg Annotation) []AnnotatedCandle {
	out := make([]AnnotatedCandle, s.Len())
	for i := range out {
		out[i].Candle = s.At(i)
		if i < len(bos.Labels) {
			out[i].BOS = bos.Labels[i]
			out[i].BOSStrength = bos.Magnitudes[i]
		}
		if i < len(fvg.Labels) {
			out[i].FVG = fvg.Labels[i]
			out[i].FVGGap = fvg.Magnitudes[i]
		}
	}
	return out
}
