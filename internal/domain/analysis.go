package domain

// Analysis agrupa todas las etapas del pipeline sobre una serie.
type Analysis struct {
	BOS      Annotation
	FVG      Annotation
	Signals  []Signal
	Entries  []FilteredEntry
	Outcomes []TradeOutcome
	Summary  Summary
}

// Analyze ejecuta detectores → filtro → simulador → agregador sobre s.
// Es una función pura; no guarda estado entre llamadas.
func Analyze(s Series, filter FilterConfig, risk RiskConfig) (Analysis, error) {
	a := Analysis{
		BOS: DetectBreakOfStructure(s),
		FVG: DetectFairValueGaps(s),
	}
	a.Signals = BuildSignals(s, a.BOS, a.FVG)
	a.Entries = FilterEntries(s, a.Signals, filter)

	a.Outcomes = make([]TradeOutcome, 0, len(a.Entries))
	for _, e := range a.Entries {
		o, err := SimulateTrade(s, e, risk)
		if err != nil {
			return Analysis{}, err
		}
		a.Outcomes = append(a.Outcomes, o)
	}
	a.Summary = SummarizeOutcomes(a.Outcomes, risk)
	return a, nil
}
