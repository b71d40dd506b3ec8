package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"feedback-insights-go/internal/logger"
	"feedback-insights-go/internal/processor"
)

const (
	recordsSheet = "Records"
	summarySheet = "Summary"
)

var recordHeader = []any{
	"Index", "Feedback", "AI Sentiment", "AI Confidence", "AI Themes", "AI Summary",
	"AI Recommendations", "Degraded", "Rule Sentiment", "Rule Confidence", "Rule Themes",
	"Comparable", "Agreement", "Prompt Tokens", "Completion Tokens", "Cost USD",
	"Exact Cost", "AI ms", "Rule ms",
}

// XLSXFileName mirrors FileName for the spreadsheet companion.
func XLSXFileName(batchID string) string {
	return fmt.Sprintf("analysis_results_%s.xlsx", batchID)
}

// WriteXLSX writes a Records sheet (one row per record) and a Summary sheet.
func WriteXLSX(dir string, b processor.Batch) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), recordsSheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}
	if err := setRow(f, recordsSheet, 1, recordHeader); err != nil {
		return "", err
	}
	for i, r := range b.Records {
		row := []any{
			r.Item.Index,
			r.Item.Text,
			string(r.AI.Sentiment),
			r.AI.Confidence,
			strings.Join(r.AI.Themes, ", "),
			r.AI.Summary,
			strings.Join(r.AI.Recommendations, "; "),
			r.AI.Degraded,
			string(r.RuleBased.Sentiment),
			r.RuleBased.Confidence,
			strings.Join(r.RuleBased.Themes, ", "),
			r.Comparable,
			r.Agreement,
			r.Cost.PromptTokens,
			r.Cost.CompletionTokens,
			r.Cost.CostUSD,
			r.Cost.Exact,
			r.Timing.AIMs,
			r.Timing.RuleBasedMs,
		}
		if err := setRow(f, recordsSheet, i+2, row); err != nil {
			return "", err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return "", fmt.Errorf("add summary sheet: %w", err)
	}
	s := b.Summary
	summary := [][]any{
		{"Metric", "Value"},
		{"Batch ID", b.ID},
		{"Generated At", b.GeneratedAt.Format(time.RFC3339)},
		{"Items", s.ItemCount},
		{"Total Cost USD", s.TotalCostUSD},
		{"Prompt Tokens", s.TotalPromptTokens},
		{"Completion Tokens", s.TotalCompletionTokens},
		{"Comparable", s.ComparableCount},
		{"Agreement Rate", s.AgreementRate},
		{"Degraded", s.DegradedCount},
		{"Exact Costs", s.ExactCostCount},
		{"Approximate Costs", s.ApproximateCostCount},
		{"Wall Time ms", s.WallTimeMs},
		{"Mean AI ms", s.MeanAIMs},
		{"Mean Rule ms", s.MeanRuleBasedMs},
		{"AI Score", s.Verdict.AIScore},
		{"Rule-Based Score", s.Verdict.RuleBasedScore},
		{"Winner", s.Verdict.Winner},
		{"Reason", s.Verdict.Reason},
	}
	for i, row := range summary {
		if err := setRow(f, summarySheet, i+1, row); err != nil {
			return "", err
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, XLSXFileName(b.ID))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	logger.New().WithBatch(b.ID, len(b.Records)).WithField("path", path).Info("xlsx export written")
	return path, nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
