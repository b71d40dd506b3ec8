package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentimentKnown(t *testing.T) {
	assert.True(t, SentimentPositive.Known())
	assert.True(t, SentimentNeutral.Known())
	assert.True(t, SentimentNegative.Known())
	assert.False(t, SentimentUnknown.Known())
	assert.False(t, Sentiment("mixed").Known())
}

func TestCostRecordAdd(t *testing.T) {
	a := CostRecord{PromptTokens: 10, CostUSD: 0.1, Exact: true, Attempts: 1, PromptPricePer1K: 1}
	b := CostRecord{PromptTokens: 5, CompletionTokens: 2, CostUSD: 0.05, Exact: false, Attempts: 1, PromptPricePer1K: 1}

	sum := a.Add(b)
	assert.Equal(t, int64(15), sum.PromptTokens)
	assert.Equal(t, int64(2), sum.CompletionTokens)
	assert.InDelta(t, 0.15, sum.CostUSD, 1e-12)
	assert.False(t, sum.Exact)
	assert.Equal(t, 2, sum.Attempts)

	assert.Equal(t, a, CostRecord{}.Add(a))
	assert.Equal(t, a, a.Add(CostRecord{}))
}

func TestAnalysisErrorPayload(t *testing.T) {
	err := &AnalysisError{Kind: ErrMalformedResponse, Raw: "not json", Err: errors.New("no JSON object")}
	p := err.Payload()
	assert.Equal(t, "malformed_response", p["error_kind"])
	assert.Equal(t, "not json", p["raw_response"])
	assert.Equal(t, false, p["retryable"])

	tf := &AnalysisError{Kind: ErrTransportFailure, Retryable: true, Err: errors.New("timeout")}
	assert.NotContains(t, tf.Payload(), "raw_response")
	assert.Contains(t, tf.Error(), "retryable=true")
	assert.ErrorContains(t, errors.Unwrap(tf), "timeout")
}
