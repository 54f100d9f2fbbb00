package domain

// Label es la etiqueta direccional de un evento estructural en un índice.
type Label int

const (
	LabelNone Label = iota
	LabelBullish
	LabelBearish
)

func (l Label) String() string {
	switch l {
	case LabelBullish:
		return "bullish"
	case LabelBearish:
		return "bearish"
	default:
		return ""
	}
}

// Direction devuelve la dirección de trade asociada (bullish → long, bearish → short).
func (l Label) Direction() Direction {
	switch l {
	case LabelBullish:
		return Long
	case LabelBearish:
		return Short
	default:
		return ""
	}
}

// EventKind distingue los dos patrones detectados.
type EventKind string

const (
	KindBOS EventKind = "BOS"
	KindFVG EventKind = "FVG"
)

// DegradeReason explica por qué un detector devolvió una anotación vacía.
// DegradeNone significa que el escaneo se ejecutó normalmente.
type DegradeReason int

const (
	DegradeNone DegradeReason = iota
	DegradeMissingColumns
	DegradeTooShort
)

func (d DegradeReason) String() string {
	switch d {
	case DegradeMissingColumns:
		return "missing_columns"
	case DegradeTooShort:
		return "too_short"
	default:
		return "none"
	}
}

// StructuralEvent es un BOS o FVG detectado en un índice de la serie.
type StructuralEvent struct {
	Index     int
	Kind      EventKind
	Direction Label
	Magnitude float64 // bos_strength o fvg_gap, en unidades de precio
}

// Annotation es la salida por índice de un detector: una etiqueta y una magnitud
// por vela. Si Degraded != DegradeNone todas las etiquetas son LabelNone y
// todas las magnitudes 0.
type Annotation struct {
	Kind       EventKind
	Labels     []Label
	Magnitudes []float64
	Degraded   DegradeReason
}

func emptyAnnotation(kind EventKind, n int, reason DegradeReason) Annotation {
	return Annotation{
		Kind:       kind,
		Labels:     make([]Label, n),
		Magnitudes: make([]float64, n),
		Degraded:   reason,
	}
}

// Events devuelve los índices etiquetados como eventos, en orden ascendente.
func (a Annotation) Events() []StructuralEvent {
	var out []StructuralEvent
	for i, l := range a.Labels {
		if l == LabelNone {
			continue
		}
		out = append(out, StructuralEvent{
			Index:     i,
			Kind:      a.Kind,
			Direction: l,
			Magnitude: a.Magnitudes[i],
		})
	}
	return out
}

// DetectBreakOfStructure marca cada índice como BOS bullish, bearish o nada.
//
// Recorre la serie una vez manteniendo swingHigh/swingLow sembrados en el índice 0.
// Un high nuevo tiene prioridad sobre un low nuevo. Series con menos de 2 velas
// o sin columnas high/low devuelven una anotación degradada sin error.
func DetectBreakOfStructure(s Series) Annotation {
	n := s.Len()
	if !s.HasColumns(ColHigh, ColLow) {
		return emptyAnnotation(KindBOS, n, DegradeMissingColumns)
	}
	if n < 2 {
		return emptyAnnotation(KindBOS, n, DegradeTooShort)
	}

	out := emptyAnnotation(KindBOS, n, DegradeNone)
	swingHigh := s.At(0).High
	swingLow := s.At(0).Low

	for i := 1; i < n; i++ {
		c := s.At(i)
		switch {
		case c.High > swingHigh:
			out.Labels[i] = LabelBullish
			out.Magnitudes[i] = c.High - swingHigh
			swingHigh = c.High
		case c.Low < swingLow:
			out.Labels[i] = LabelBearish
			out.Magnitudes[i] = swingLow - c.Low
			swingLow = c.Low
		}
	}
	return out
}
