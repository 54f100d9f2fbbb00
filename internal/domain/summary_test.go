package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_Counts(t *testing.T) {
	s := Summarize([]Result{ResultTP, ResultSL, ResultSL, ResultTP, ResultTP}, DefaultRiskConfig())

	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 3, s.TPCount)
	assert.Equal(t, 2, s.SLCount)
	assert.Equal(t, 3*20.0-2*10.0, s.NetPips)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, DefaultRiskConfig())

	assert.Equal(t, Summary{}, s)
	assert.Equal(t, 0.0, s.TPPct())
	assert.Equal(t, 0.0, s.SLPct())
}

func TestSummarize_TotalAlwaysSumsCounts(t *testing.T) {
	for n := 0; n < 20; n++ {
		results := make([]Result, n)
		for i := range results {
			if i%3 == 0 {
				results[i] = ResultTP
			} else {
				results[i] = ResultSL
			}
		}
		s := Summarize(results, DefaultRiskConfig())
		assert.Equal(t, s.TPCount+s.SLCount, s.Total)
		assert.Equal(t, float64(s.TPCount)*20-float64(s.SLCount)*10, s.NetPips)
	}
}

func TestSummary_Percentages(t *testing.T) {
	s := Summary{Total: 4, TPCount: 1, SLCount: 3}

	assert.InDelta(t, 25.0, s.TPPct(), 1e-9)
	assert.InDelta(t, 75.0, s.SLPct(), 1e-9)
}

func TestSummarizeOutcomes_UsesRisk(t *testing.T) {
	risk := RiskConfig{StopDistance: 5, RewardDistance: 15, Lookahead: 3}
	s := SummarizeOutcomes([]TradeOutcome{{Result: ResultTP}, {Result: ResultSL}}, risk)

	assert.Equal(t, 10.0, s.NetPips)
}
