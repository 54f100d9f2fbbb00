package domain

// Summary agrega los resultados de un backtest.
type Summary struct {
	Total   int
	TPCount int
	SLCount int
	NetPips float64 // TPCount×RewardDistance − SLCount×StopDistance
}

// Summarize cuenta TP/SL y calcula el neto en pips.
// Cualquier resultado que no sea TP cuenta como SL.
func Summarize(results []Result, risk RiskConfig) Summary {
	var s Summary
	for _, r := range results {
		if r == ResultTP {
			s.TPCount++
		} else {
			s.SLCount++
		}
	}
	s.Total = s.TPCount + s.SLCount
	s.NetPips = float64(s.TPCount)*risk.RewardDistance - float64(s.SLCount)*risk.StopDistance
	return s
}

// SummarizeOutcomes es Summarize sobre TradeOutcomes.
func SummarizeOutcomes(outcomes []TradeOutcome, risk RiskConfig) Summary {
	results := make([]Result, len(outcomes))
	for i, o := range outcomes {
		results[i] = o.Result
	}
	return Summarize(results, risk)
}

// TPPct devuelve el porcentaje de TP (0-100). Devuelve 0 si no hay trades.
func (s Summary) TPPct() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.TPCount) / float64(s.Total) * 100
}

// SLPct devuelve el porcentaje de SL (0-100). Devuelve 0 si no hay trades.
func (s Summary) SLPct() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.SLCount) / float64(s.Total) * 100
}
