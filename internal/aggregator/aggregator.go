package aggregator

import "feedback-insights-go/internal/types"

// Summarize folds records into a BatchSummary. BatchID, WallTimeMs and the
// verdict are left for the caller. Degraded records count toward cost but
// never toward the agreement rate.
func Summarize(records []types.ComparisonRecord) types.BatchSummary {
	s := types.BatchSummary{ItemCount: len(records)}
	var aiMs, ruleMs int64
	for _, r := range records {
		s.TotalCostUSD += r.Cost.CostUSD
		s.TotalPromptTokens += r.Cost.PromptTokens
		s.TotalCompletionTokens += r.Cost.CompletionTokens
		if r.Cost.Attempts > 0 {
			if r.Cost.Exact {
				s.ExactCostCount++
			} else {
				s.ApproximateCostCount++
			}
		}
		if r.AI.Degraded {
			s.DegradedCount++
		}
		if r.Comparable {
			s.ComparableCount++
			if r.Agreement {
				s.AgreementCount++
			}
		}
		aiMs += r.Timing.AIMs
		ruleMs += r.Timing.RuleBasedMs
	}
	if s.ComparableCount > 0 {
		s.AgreementRate = float64(s.AgreementCount) / float64(s.ComparableCount)
	}
	if n := len(records); n > 0 {
		s.MeanAIMs = float64(aiMs) / float64(n)
		s.MeanRuleBasedMs = float64(ruleMs) / float64(n)
	}
	return s
}
