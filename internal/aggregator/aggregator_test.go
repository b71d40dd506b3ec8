package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"feedback-insights-go/internal/types"
)

func TestSummarize(t *testing.T) {
	records := []types.ComparisonRecord{
		{
			Cost:       types.CostRecord{PromptTokens: 100, CompletionTokens: 50, CostUSD: 0.00125, Exact: true, Attempts: 1},
			Comparable: true, Agreement: true,
			Timing: types.Timing{AIMs: 300, RuleBasedMs: 1},
		},
		{
			Cost:       types.CostRecord{PromptTokens: 100, CompletionTokens: 50, CostUSD: 0.00125, Exact: true, Attempts: 1},
			Comparable: true, Agreement: false,
			Timing: types.Timing{AIMs: 100, RuleBasedMs: 1},
		},
		{
			AI:     types.AnalysisResult{Sentiment: types.SentimentUnknown, Degraded: true},
			Cost:   types.CostRecord{PromptTokens: 40, CostUSD: 0.0002, Attempts: 3},
			Timing: types.Timing{AIMs: 200, RuleBasedMs: 1},
		},
		{
			AI: types.AnalysisResult{Sentiment: types.SentimentUnknown, Degraded: true},
		},
	}

	s := Summarize(records)
	assert.Equal(t, 4, s.ItemCount)
	assert.InDelta(t, 0.0027, s.TotalCostUSD, 1e-12)
	assert.Equal(t, int64(240), s.TotalPromptTokens)
	assert.Equal(t, int64(100), s.TotalCompletionTokens)
	assert.Equal(t, 2, s.ComparableCount)
	assert.Equal(t, 1, s.AgreementCount)
	assert.Equal(t, 0.5, s.AgreementRate)
	assert.Equal(t, 2, s.DegradedCount)
	assert.Equal(t, 2, s.ExactCostCount)
	assert.Equal(t, 1, s.ApproximateCostCount)
	assert.Equal(t, 150.0, s.MeanAIMs)
	assert.Equal(t, 0.75, s.MeanRuleBasedMs)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.ItemCount)
	assert.Zero(t, s.AgreementRate)
	assert.Zero(t, s.MeanAIMs)
}

func TestSummarize_AllDegraded(t *testing.T) {
	s := Summarize([]types.ComparisonRecord{
		{AI: types.AnalysisResult{Degraded: true}},
		{AI: types.AnalysisResult{Degraded: true}},
	})
	assert.Equal(t, 2, s.DegradedCount)
	assert.Zero(t, s.ComparableCount)
	assert.Zero(t, s.AgreementRate)
}
