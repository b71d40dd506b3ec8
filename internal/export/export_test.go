package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"feedback-insights-go/internal/processor"
	"feedback-insights-go/internal/types"
)

func sampleBatch() processor.Batch {
	records := []types.ComparisonRecord{
		{
			Item:       types.FeedbackItem{Index: 1, Text: "Great service"},
			AI:         types.AnalysisResult{Variant: types.VariantAI, Sentiment: types.SentimentPositive, Confidence: 0.9, Themes: []string{"Support"}},
			RuleBased:  types.AnalysisResult{Variant: types.VariantRuleBased, Sentiment: types.SentimentPositive, Confidence: 1, Themes: []string{}},
			Cost:       types.CostRecord{PromptTokens: 100, CompletionTokens: 50, CostUSD: 0.00125, Exact: true, Attempts: 1},
			Comparable: true,
			Agreement:  true,
		},
		{
			Item:      types.FeedbackItem{Index: 2, Text: "Slow"},
			AI:        types.AnalysisResult{Variant: types.VariantAI, Sentiment: types.SentimentUnknown, Themes: []string{}, Degraded: true},
			RuleBased: types.AnalysisResult{Variant: types.VariantRuleBased, Sentiment: types.SentimentNegative, Themes: []string{"Performance"}},
		},
	}
	s := processor.Summarize(records)
	s.BatchID = "A1B2C3"
	return processor.Batch{
		ID:          "A1B2C3",
		GeneratedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Records:     records,
		Summary:     s,
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "analysis_results_A1B2C3.json", FileName("A1B2C3"))
	assert.Equal(t, "analysis_results_A1B2C3.xlsx", XLSXFileName("A1B2C3"))
}

func TestEncode_SummaryIsTrailing(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleBatch()))

	dec := json.NewDecoder(&buf)
	tok, err := dec.Token()
	require.NoError(t, err)
	require.Equal(t, json.Delim('{'), tok)

	var keys []string
	for dec.More() {
		k, err := dec.Token()
		require.NoError(t, err)
		keys = append(keys, k.(string))
		var skip json.RawMessage
		require.NoError(t, dec.Decode(&skip))
	}
	assert.Equal(t, []string{"batch_id", "generated_at", "records", "summary"}, keys)
}

func TestWriteJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := WriteJSON(dir, sampleBatch())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "analysis_results_A1B2C3.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		BatchID string                   `json:"batch_id"`
		Records []types.ComparisonRecord `json:"records"`
		Summary types.BatchSummary       `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "A1B2C3", doc.BatchID)
	require.Len(t, doc.Records, 2)
	assert.Equal(t, types.SentimentUnknown, doc.Records[1].AI.Sentiment)
	assert.Equal(t, 2, doc.Summary.ItemCount)
	assert.Equal(t, 1, doc.Summary.DegradedCount)
}

func TestWriteXLSX(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteXLSX(dir, sampleBatch())
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{recordsSheet, summarySheet}, f.GetSheetList())

	rows, err := f.GetRows(recordsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Feedback", rows[0][1])
	assert.Equal(t, "Great service", rows[1][1])
	assert.Equal(t, "unknown", rows[2][2])

	v, err := f.GetCellValue(summarySheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "A1B2C3", v)
}
