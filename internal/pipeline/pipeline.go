// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"time"

	"feedback-insights-go/internal/llm"
	"feedback-insights-go/internal/types"
)

type RuleAnalyzer interface {
	Analyze(text string) types.AnalysisResult
}

type AIAnalyzer interface {
	Analyze(ctx context.Context, text string, client llm.Capability) (types.AnalysisResult, types.CostRecord, *types.AnalysisError)
}

// Process runs both analyzers for one item and joins them into a record.
// The AI call runs on its own goroutine while the rule-based pass runs on
// the caller's; the record is built only after both are done. The returned
// *AnalysisError is informational: the record already carries the degraded
// AI result.
func Process(ctx context.Context, item types.FeedbackItem, rules RuleAnalyzer, ai AIAnalyzer, client llm.Capability) (types.ComparisonRecord, *types.AnalysisError) {
	type aiResult struct {
		res  types.AnalysisResult
		cost types.CostRecord
		err  *types.AnalysisError
		took time.Duration
	}
	aiCh := make(chan aiResult, 1)
	go func() {
		start := time.Now()
		res, rec, err := ai.Analyze(ctx, item.Text, client)
		aiCh <- aiResult{res, rec, err, time.Since(start)}
	}()

	start := time.Now()
	rb := rules.Analyze(item.Text)
	ruleTook := time.Since(start)

	out := <-aiCh
	aiRes := out.res
	if out.err != nil {
		aiRes = Degrade(out.err)
	}

	rec := types.ComparisonRecord{
		Item:      item,
		AI:        aiRes,
		RuleBased: rb,
		Cost:      out.cost,
		Timing: types.Timing{
			AIMs:        out.took.Milliseconds(),
			RuleBasedMs: ruleTook.Milliseconds(),
		},
	}
	rec.Comparable, rec.Agreement = Agreement(rec.AI, rec.RuleBased)
	return rec, out.err
}

// Degrade builds the placeholder AI result for a failed call.
func Degrade(err *types.AnalysisError) types.AnalysisResult {
	return types.AnalysisResult{
		Variant:   types.VariantAI,
		Sentiment: types.SentimentUnknown,
		Themes:    []string{},
		Degraded:  true,
		Payload:   err.Payload(),
	}
}

// Agreement is only defined when both labels are known; otherwise the pair
// is not comparable and agreement is false.
func Agreement(ai, rb types.AnalysisResult) (comparable, agree bool) {
	if !ai.Sentiment.Known() || !rb.Sentiment.Known() {
		return false, false
	}
	return true, ai.Sentiment == rb.Sentiment
}
