package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedback-insights-go/internal/llm"
	"feedback-insights-go/internal/types"
)

type staticRules struct{ s types.Sentiment }

func (r staticRules) Analyze(string) types.AnalysisResult {
	return types.AnalysisResult{Variant: types.VariantRuleBased, Sentiment: r.s, Themes: []string{}}
}

type staticAI struct {
	s    types.Sentiment
	cost types.CostRecord
	err  *types.AnalysisError
}

func (a staticAI) Analyze(context.Context, string, llm.Capability) (types.AnalysisResult, types.CostRecord, *types.AnalysisError) {
	if a.err != nil {
		return types.AnalysisResult{}, a.cost, a.err
	}
	return types.AnalysisResult{Variant: types.VariantAI, Sentiment: a.s, Themes: []string{"x"}}, a.cost, nil
}

func TestProcess_Agreement(t *testing.T) {
	item := types.FeedbackItem{Index: 1, Text: "great"}
	cost := types.CostRecord{PromptTokens: 10, CostUSD: 0.01, Exact: true, Attempts: 1}

	rec, aerr := Process(context.Background(), item, staticRules{types.SentimentPositive}, staticAI{s: types.SentimentPositive, cost: cost}, nil)
	require.Nil(t, aerr)
	assert.Equal(t, item, rec.Item)
	assert.True(t, rec.Comparable)
	assert.True(t, rec.Agreement)
	assert.Equal(t, cost, rec.Cost)
	assert.Equal(t, types.VariantAI, rec.AI.Variant)
	assert.Equal(t, types.VariantRuleBased, rec.RuleBased.Variant)

	rec, _ = Process(context.Background(), item, staticRules{types.SentimentNegative}, staticAI{s: types.SentimentPositive}, nil)
	assert.True(t, rec.Comparable)
	assert.False(t, rec.Agreement)
}

func TestProcess_DegradesFailedAICall(t *testing.T) {
	aerr := &types.AnalysisError{Kind: types.ErrTransportFailure, Retryable: true, Err: errors.New("timeout")}
	cost := types.CostRecord{PromptTokens: 12, CostUSD: 0.0001, Attempts: 3}

	rec, got := Process(context.Background(), types.FeedbackItem{Text: "x"}, staticRules{types.SentimentNeutral}, staticAI{err: aerr, cost: cost}, nil)
	assert.Same(t, aerr, got)
	assert.Equal(t, types.SentimentUnknown, rec.AI.Sentiment)
	assert.True(t, rec.AI.Degraded)
	assert.Empty(t, rec.AI.Themes)
	assert.Equal(t, "transport_failure", rec.AI.Payload["error_kind"])
	assert.Equal(t, true, rec.AI.Payload["retryable"])
	assert.False(t, rec.Comparable)
	assert.False(t, rec.Agreement)
	assert.Equal(t, cost, rec.Cost, "failed calls keep their cost")
}

func TestAgreement(t *testing.T) {
	pos := types.AnalysisResult{Sentiment: types.SentimentPositive}
	unk := types.AnalysisResult{Sentiment: types.SentimentUnknown}

	c, a := Agreement(pos, pos)
	assert.True(t, c)
	assert.True(t, a)

	c, a = Agreement(unk, pos)
	assert.False(t, c)
	assert.False(t, a)
}
