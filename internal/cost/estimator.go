package cost

import (
	"math"
	"strings"

	"feedback-insights-go/internal/types"
)

// Pricing is USD per 1k tokens.
type Pricing struct {
	Prompt     float64 `yaml:"prompt" json:"prompt"`
	Completion float64 `yaml:"completion" json:"completion"`
}

const DefaultTokensPerWord = 1.33

type Estimator struct {
	pricing       Pricing
	tokensPerWord float64
}

// NewEstimator validates the pricing table once. A zero tokensPerWord falls
// back to DefaultTokensPerWord.
func NewEstimator(p Pricing, tokensPerWord float64) (*Estimator, error) {
	if !finite(p.Prompt) || p.Prompt < 0 {
		return nil, types.NewConfigError("pricing.prompt", "must be a finite non-negative price, got %v", p.Prompt)
	}
	if !finite(p.Completion) || p.Completion < 0 {
		return nil, types.NewConfigError("pricing.completion", "must be a finite non-negative price, got %v", p.Completion)
	}
	if p.Prompt == 0 && p.Completion == 0 {
		return nil, types.NewConfigError("pricing", "no prices configured")
	}
	if tokensPerWord == 0 {
		tokensPerWord = DefaultTokensPerWord
	}
	if tokensPerWord < 0 || !finite(tokensPerWord) {
		return nil, types.NewConfigError("tokens_per_word", "must be positive, got %v", tokensPerWord)
	}
	return &Estimator{pricing: p, tokensPerWord: tokensPerWord}, nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func (e *Estimator) Pricing() Pricing { return e.pricing }

// Exact costs token counts reported by the provider.
func (e *Estimator) Exact(promptTokens, completionTokens int64) types.CostRecord {
	rec := Estimate(promptTokens, completionTokens, e.pricing)
	rec.Exact = true
	return rec
}

// Approximate costs a call whose usage was not reported, counting tokens from
// the prompt and reply text.
func (e *Estimator) Approximate(promptText, completionText string) types.CostRecord {
	return Estimate(e.ApproxTokens(promptText), e.ApproxTokens(completionText), e.pricing)
}

// ApproxTokens is ceil(words * tokensPerWord).
func (e *Estimator) ApproxTokens(text string) int64 {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return int64(math.Ceil(float64(words) * e.tokensPerWord))
}

// Estimate is the pure cost function. It always returns Attempts=1 and
// Exact=false; callers mark exact usage themselves.
func Estimate(promptTokens, completionTokens int64, p Pricing) types.CostRecord {
	if promptTokens < 0 {
		promptTokens = 0
	}
	if completionTokens < 0 {
		completionTokens = 0
	}
	usd := float64(promptTokens)/1000*p.Prompt + float64(completionTokens)/1000*p.Completion
	return types.CostRecord{
		PromptTokens:         promptTokens,
		CompletionTokens:     completionTokens,
		PromptPricePer1K:     p.Prompt,
		CompletionPricePer1K: p.Completion,
		CostUSD:              usd,
		Attempts:             1,
	}
}
