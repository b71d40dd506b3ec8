// internal/processor/engine.go
package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"feedback-insights-go/internal/actionable"
	"feedback-insights-go/internal/aggregator"
	"feedback-insights-go/internal/llm"
	"feedback-insights-go/internal/logger"
	"feedback-insights-go/internal/pipeline"
	"feedback-insights-go/internal/types"
)

const DefaultConcurrency = 4

// ErrBatchCancelled wraps the context error when a batch is cut short.
var ErrBatchCancelled = errors.New("batch cancelled")

// Engine is the dual-analysis comparison engine.
type Engine struct {
	rules       pipeline.RuleAnalyzer
	ai          pipeline.AIAnalyzer
	concurrency int
}

func NewEngine(rules pipeline.RuleAnalyzer, ai pipeline.AIAnalyzer, concurrency int) (*Engine, error) {
	if rules == nil || ai == nil {
		return nil, types.NewConfigError("engine", "both analyzers are required")
	}
	if concurrency < 1 {
		return nil, types.NewConfigError("concurrency", "must be >= 1, got %d", concurrency)
	}
	return &Engine{rules: rules, ai: ai, concurrency: concurrency}, nil
}

// Batch is one engine run: records in input order plus their summary.
type Batch struct {
	ID          string                   `json:"batch_id"`
	GeneratedAt time.Time                `json:"generated_at"`
	Records     []types.ComparisonRecord `json:"records"`
	Summary     types.BatchSummary       `json:"summary"`
}

// Compare analyzes every item with both analyzers. The returned slice always
// has one record per item, in input order. Per-item AI failures are
// recorded as degraded results; the only error is ErrBatchCancelled, returned
// when at least one record carries a cancelled AI result. A context that is
// cancelled after every item finished does not fail the batch.
func (e *Engine) Compare(ctx context.Context, items []types.FeedbackItem, client llm.Capability) ([]types.ComparisonRecord, error) {
	log := logger.New().WithField("component", "comparison-engine")
	out := make([]types.ComparisonRecord, len(items))
	if len(items) == 0 {
		return out, nil
	}

	jobs := make(chan int, len(items))
	for i := range items {
		jobs <- i
	}
	close(jobs)

	workers := e.concurrency
	if workers > len(items) {
		workers = len(items)
	}

	var (
		wg        sync.WaitGroup
		cancelled atomic.Bool
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				rec, aerr := pipeline.Process(ctx, items[idx], e.rules, e.ai, client)
				// Each slot has exactly one writer.
				out[idx] = rec
				if aerr != nil && aerr.Kind == types.ErrCancelled {
					cancelled.Store(true)
				} else if aerr != nil {
					log.WithField("item", items[idx].Index).
						WithField("error_kind", string(aerr.Kind)).
						WithField("error", aerr.Error()).
						Warn("ai analysis degraded")
				}
			}
		}()
	}
	wg.Wait()

	if cancelled.Load() {
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		log.WithField("error", err.Error()).Warn("batch cancelled")
		return out, fmt.Errorf("%w: %w", ErrBatchCancelled, err)
	}
	return out, nil
}

// Summarize aggregates records and attaches the verdict.
func Summarize(records []types.ComparisonRecord) types.BatchSummary {
	s := aggregator.Summarize(records)
	s.Verdict = actionable.Generate(records)
	return s
}

// Run is Compare plus Summarize under a fresh batch id.
func (e *Engine) Run(ctx context.Context, items []types.FeedbackItem, client llm.Capability) (Batch, error) {
	id := NewBatchID()
	log := logger.New().WithBatch(id, len(items)).WithField("component", "comparison-engine")
	log.WithField("concurrency", e.concurrency).Info("batch started")

	start := time.Now()
	records, err := e.Compare(ctx, items, client)
	summary := Summarize(records)
	summary.BatchID = id
	summary.WallTimeMs = time.Since(start).Milliseconds()

	log.WithField("total_cost_usd", summary.TotalCostUSD).
		WithField("agreement_rate", summary.AgreementRate).
		WithField("degraded", summary.DegradedCount).
		WithField("duration_ms", summary.WallTimeMs).
		Info("batch finished")

	return Batch{
		ID:          id,
		GeneratedAt: time.Now().UTC(),
		Records:     records,
		Summary:     summary,
	}, err
}

// NewBatchID is six upper-case hex characters.
func NewBatchID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}
