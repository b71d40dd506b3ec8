package extractor

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"feedback-insights-go/internal/cost"
	"feedback-insights-go/internal/llm"
	"feedback-insights-go/internal/logger"
	"feedback-insights-go/internal/types"
)

type Options struct {
	// CallTimeout bounds a single attempt.
	CallTimeout time.Duration
	// MaxRetries counts retries after the first attempt.
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func DefaultOptions() Options {
	return Options{
		CallTimeout:    30 * time.Second,
		MaxRetries:     2,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
	}
}

// Adapter is the AI analyzer: prompt, call, parse, cost.
type Adapter struct {
	est  *cost.Estimator
	opts Options
	log  *logrus.Entry
}

func NewAdapter(est *cost.Estimator, opts Options) (*Adapter, error) {
	if est == nil {
		return nil, types.NewConfigError("pricing", "cost estimator is required")
	}
	if opts.CallTimeout <= 0 {
		return nil, types.NewConfigError("call_timeout", "must be positive, got %s", opts.CallTimeout)
	}
	if opts.MaxRetries < 0 {
		return nil, types.NewConfigError("max_retries", "must be >= 0, got %d", opts.MaxRetries)
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = DefaultOptions().InitialBackoff
	}
	if opts.MaxBackoff < opts.InitialBackoff {
		opts.MaxBackoff = opts.InitialBackoff
	}
	return &Adapter{
		est:  est,
		opts: opts,
		log:  logger.New().WithField("component", "ai-adapter"),
	}, nil
}

func (a *Adapter) Variant() types.Variant { return types.VariantAI }

// Analyze runs one feedback item through the model. The CostRecord accounts
// for every attempt that reached the provider, including failed ones; it is
// zero only when no call was made. A non-nil *AnalysisError means the result
// is unusable.
func (a *Adapter) Analyze(ctx context.Context, text string, client llm.Capability) (types.AnalysisResult, types.CostRecord, *types.AnalysisError) {
	log := a.log

	if err := ctx.Err(); err != nil {
		return types.AnalysisResult{}, types.CostRecord{}, &types.AnalysisError{Kind: types.ErrCancelled, Err: err}
	}

	prompt := BuildPrompt(text)
	var (
		total   types.CostRecord
		reply   llm.Completion
		lastErr *types.AnalysisError
	)

	op := func() error {
		if err := ctx.Err(); err != nil {
			lastErr = &types.AnalysisError{Kind: types.ErrCancelled, Err: err}
			return backoff.Permanent(lastErr)
		}
		callCtx, cancel := context.WithTimeout(ctx, a.opts.CallTimeout)
		defer cancel()

		c, err := client.Send(callCtx, prompt)
		total = total.Add(a.attemptCost(prompt, c, err))
		if err == nil {
			reply = c
			lastErr = nil
			return nil
		}
		lastErr = classify(ctx, err)
		log.WithField("attempt", total.Attempts).
			WithField("retryable", lastErr.Retryable).
			WithField("error", lastErr.Error()).
			Warn("llm call failed")
		if !lastErr.Retryable {
			return backoff.Permanent(lastErr)
		}
		return lastErr
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = a.opts.InitialBackoff
	b.MaxInterval = a.opts.MaxBackoff
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(a.opts.MaxRetries)), ctx)

	if err := backoff.Retry(op, policy); err != nil {
		if ctx.Err() != nil && (lastErr == nil || lastErr.Kind != types.ErrCancelled) {
			// Cancelled while waiting between attempts.
			lastErr = &types.AnalysisError{Kind: types.ErrCancelled, Err: ctx.Err()}
		}
		if lastErr == nil {
			lastErr = &types.AnalysisError{Kind: types.ErrTransportFailure, Err: err}
		}
		return types.AnalysisResult{}, total, lastErr
	}

	res, err := parseReply(reply.Text)
	if err != nil {
		log.WithField("error", err.Error()).Debug("malformed reply: " + reply.Text)
		return types.AnalysisResult{}, total, &types.AnalysisError{
			Kind: types.ErrMalformedResponse,
			Raw:  reply.Text,
			Err:  err,
		}
	}
	if reply.Model != "" {
		res.Payload["model"] = reply.Model
	}
	res.Payload["attempts"] = total.Attempts
	return res, total, nil
}

// attemptCost bills exact usage when reported, otherwise approximates from
// the prompt and whatever reply came back.
func (a *Adapter) attemptCost(p llm.Prompt, c llm.Completion, err error) types.CostRecord {
	if err == nil && c.Usage != nil {
		return a.est.Exact(c.Usage.PromptTokens, c.Usage.CompletionTokens)
	}
	return a.est.Approximate(p.Text(), c.Text)
}

// classify maps a provider error onto the analysis error taxonomy. parent is
// the batch context, used to tell cancellation from a per-call timeout.
func classify(parent context.Context, err error) *types.AnalysisError {
	if parent.Err() != nil {
		return &types.AnalysisError{Kind: types.ErrCancelled, Err: parent.Err()}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &types.AnalysisError{Kind: types.ErrTransportFailure, Retryable: true, Err: err}
	}
	var te *llm.TransportError
	if errors.As(err, &te) {
		return &types.AnalysisError{Kind: types.ErrTransportFailure, Retryable: te.Retryable, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &types.AnalysisError{Kind: types.ErrCancelled, Err: err}
	}
	return &types.AnalysisError{Kind: types.ErrTransportFailure, Err: err}
}
