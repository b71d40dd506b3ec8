package types

import "time"

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
	// SentimentUnknown only ever appears on degraded AI results.
	SentimentUnknown Sentiment = "unknown"
)

// Known reports whether s is one of the three real labels.
func (s Sentiment) Known() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

type Variant string

const (
	VariantAI        Variant = "ai"
	VariantRuleBased Variant = "rule_based"
)

type FeedbackItem struct {
	Index     int        `json:"index"`
	Text      string     `json:"text"`
	Source    string     `json:"source,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type AnalysisResult struct {
	Variant         Variant        `json:"variant"`
	Sentiment       Sentiment      `json:"sentiment"`
	Confidence      float64        `json:"confidence"`
	Themes          []string       `json:"themes"`
	Summary         string         `json:"summary,omitempty"`
	Complaints      []string       `json:"complaints,omitempty"`
	Recommendations []string       `json:"recommendations,omitempty"`
	Degraded        bool           `json:"degraded"`
	Payload         map[string]any `json:"payload,omitempty"`
}

// CostRecord is the token and USD accounting of the AI path for one item.
// Exact is false when token counts were approximated locally.
type CostRecord struct {
	PromptTokens         int64   `json:"prompt_tokens"`
	CompletionTokens     int64   `json:"completion_tokens"`
	PromptPricePer1K     float64 `json:"prompt_price_per_1k"`
	CompletionPricePer1K float64 `json:"completion_price_per_1k"`
	CostUSD              float64 `json:"cost_usd"`
	Exact                bool    `json:"exact"`
	Attempts             int     `json:"attempts"`
}

// Add folds another attempt's accounting into c. The result is exact only
// when every folded record was exact.
func (c CostRecord) Add(o CostRecord) CostRecord {
	if c.Attempts == 0 {
		return o
	}
	if o.Attempts == 0 {
		return c
	}
	return CostRecord{
		PromptTokens:         c.PromptTokens + o.PromptTokens,
		CompletionTokens:     c.CompletionTokens + o.CompletionTokens,
		PromptPricePer1K:     c.PromptPricePer1K,
		CompletionPricePer1K: c.CompletionPricePer1K,
		CostUSD:              c.CostUSD + o.CostUSD,
		Exact:                c.Exact && o.Exact,
		Attempts:             c.Attempts + o.Attempts,
	}
}

type Timing struct {
	AIMs        int64 `json:"ai_ms"`
	RuleBasedMs int64 `json:"rule_based_ms"`
}

type ComparisonRecord struct {
	Item       FeedbackItem   `json:"feedback"`
	AI         AnalysisResult `json:"ai"`
	RuleBased  AnalysisResult `json:"rule_based"`
	Cost       CostRecord     `json:"cost"`
	Agreement  bool           `json:"agreement"`
	Comparable bool           `json:"comparable"`
	Timing     Timing         `json:"timing"`
}

type Verdict struct {
	RuleBasedScore int    `json:"rule_based_score"`
	AIScore        int    `json:"ai_score"`
	Winner         string `json:"winner"`
	Reason         string `json:"reason"`
}

type BatchSummary struct {
	BatchID               string  `json:"batch_id"`
	ItemCount             int     `json:"item_count"`
	TotalCostUSD          float64 `json:"total_cost_usd"`
	TotalPromptTokens     int64   `json:"total_prompt_tokens"`
	TotalCompletionTokens int64   `json:"total_completion_tokens"`
	ComparableCount       int     `json:"comparable_count"`
	AgreementCount        int     `json:"agreement_count"`
	AgreementRate         float64 `json:"agreement_rate"`
	DegradedCount         int     `json:"degraded_count"`
	ExactCostCount        int     `json:"exact_cost_count"`
	ApproximateCostCount  int     `json:"approximate_cost_count"`
	WallTimeMs            int64   `json:"wall_time_ms"`
	MeanAIMs              float64 `json:"mean_ai_ms"`
	MeanRuleBasedMs       float64 `json:"mean_rule_based_ms"`
	Verdict               Verdict `json:"verdict"`
}
