package actionable

import "feedback-insights-go/internal/types"

const (
	WinnerAI        = "AI Analyzer"
	WinnerRuleBased = "Rule-Based Analyzer"
	WinnerTie       = "Both Perform Similarly"
)

// Generate scores the two analyzers over a batch and names the better one.
func Generate(records []types.ComparisonRecord) types.Verdict {
	var v types.Verdict
	for _, r := range records {
		// A genuine AI result has the richer schema; a placeholder does not.
		if r.AI.Degraded {
			v.RuleBasedScore++
		} else {
			v.AIScore++
		}
		if len(r.AI.Recommendations) > 0 {
			v.AIScore++
		}
		if len(r.RuleBased.Recommendations) > 0 {
			v.RuleBasedScore++
		}
		if len(r.AI.Themes) > len(r.RuleBased.Themes) {
			v.AIScore++
		}
	}

	switch {
	case v.AIScore > v.RuleBasedScore:
		v.Winner = WinnerAI
		v.Reason = "The AI analyzer provides deeper insights, contextual reasoning, " +
			"and more structured analysis compared to the rule-based baseline."
	case v.RuleBasedScore > v.AIScore:
		v.Winner = WinnerRuleBased
		v.Reason = "The rule-based analyzer performs well for simple sentiment detection " +
			"with zero cost and minimal latency."
	default:
		v.Winner = WinnerTie
		v.Reason = "Both analyzers show comparable effectiveness on this dataset."
	}
	return v
}
