package domain

// FilterConfig contiene los umbrales del filtro BOS+FVG.
type FilterConfig struct {
	// MinBOSStrength descarta BOS más débiles; nunca abren búsqueda de confirmación.
	MinBOSStrength float64
	// ConfirmLookahead es el máximo de señales posteriores (posiciones de la lista,
	// no velas) donde se busca el FVG de confirmación.
	ConfirmLookahead int
	// MinGapPct es el gap mínimo del FVG como fracción del close de su vela (0.005 = 0.5%).
	MinGapPct float64
	// MinBodyRatio es el ratio cuerpo/rango mínimo de la vela del FVG.
	MinBodyRatio float64
	// MinSpacing es la distancia mínima en índices entre dos entradas.
	MinSpacing int
	// CounterTrendWindow es el número de velas previas que, si todas van en contra,
	// bloquean la entrada.
	CounterTrendWindow int
}

// DefaultFilterConfig devuelve los umbrales de referencia de la estrategia.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MinBOSStrength:     2.0,
		ConfirmLookahead:   3,
		MinGapPct:          0.005,
		MinBodyRatio:       0.5,
		MinSpacing:         5,
		CounterTrendWindow: 3,
	}
}

// FilteredEntry es una entrada compuesta BOS+FVG confirmada.
type FilteredEntry struct {
	Index      int
	Price      float64
	Direction  Direction
	SignalType SignalType
}

// FilterEntries combina BOS y FVG en entradas operables con una sola pasada greedy.
//
// Para cada BOS con fuerza >= MinBOSStrength revisa como mucho ConfirmLookahead
// señales siguientes de la lista y se detiene en el primer FVG de la misma
// dirección. Ese candidato se acepta si pasa todos los checks de accepts; si no,
// el BOS no produce entrada. Las entradas salen ordenadas por índice y separadas
// por al menos MinSpacing.
func FilterEntries(s Series, signals []Signal, cfg FilterConfig) []FilteredEntry {
	var entries []FilteredEntry
	lastEntry := -cfg.MinSpacing // cualquier índice >= 0 respeta el spacing

	for i, sig := range signals {
		if sig.Type != SignalBOS || sig.Magnitude < cfg.MinBOSStrength {
			continue
		}

		end := min(i+cfg.ConfirmLookahead, len(signals)-1)
		for j := i + 1; j <= end; j++ {
			cand := signals[j]
			if cand.Type != SignalFVG || cand.Direction != sig.Direction {
				continue
			}
			if accepts(s, cand, sig.Direction, lastEntry, cfg) {
				entries = append(entries, FilteredEntry{
					Index:      cand.Index,
					Price:      s.At(cand.Index).Close,
					Direction:  sig.Direction,
					SignalType: SignalComposite,
				})
				lastEntry = cand.Index
			}
			break
		}
	}
	return entries
}

// accepts aplica los checks de confirmación sobre un FVG candidato.
func accepts(s Series, fvg Signal, dir Direction, lastEntry int, cfg FilterConfig) bool {
	if !s.InBounds(fvg.Index) {
		return false
	}
	c := s.At(fvg.Index)
	if fvg.Magnitude < cfg.MinGapPct*c.Close {
		return false
	}
	if !c.IsStrong(cfg.MinBodyRatio) {
		return false
	}
	if fvg.Index-lastEntry < cfg.MinSpacing {
		return false
	}
	return !counterTrend(s, fvg.Index, dir, cfg.CounterTrendWindow)
}

// counterTrend devuelve true si las window velas anteriores a idx cerraron todas
// en contra de dir. Con menos de window velas previas nunca bloquea.
func counterTrend(s Series, idx int, dir Direction, window int) bool {
	if window <= 0 || idx < window {
		return false
	}
	for k := idx - window; k < idx; k++ {
		c := s.At(k)
		if dir == Long && !c.Bearish() {
			return false
		}
		if dir == Short && !c.Bullish() {
			return false
		}
	}
	return true
}
