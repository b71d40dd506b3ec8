// Package app wires configuration into a ready comparison engine.
package app

import (
	"feedback-insights-go/internal/config"
	"feedback-insights-go/internal/cost"
	"feedback-insights-go/internal/dataset"
	"feedback-insights-go/internal/extractor"
	"feedback-insights-go/internal/llm"
	"feedback-insights-go/internal/logger"
	"feedback-insights-go/internal/processor"
	"feedback-insights-go/internal/rules"
	"feedback-insights-go/internal/types"
)

type App struct {
	Config config.Config
	Engine *processor.Engine
	Client llm.Capability
}

// New validates cfg, configures logging and builds both analyzers.
func New(cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Configure(logger.Options{Environment: cfg.Environment, Level: cfg.LogLevel})

	lx, err := rules.LoadLexicon(cfg.LexiconPath)
	if err != nil {
		return nil, err
	}
	rb, err := rules.New(lx)
	if err != nil {
		return nil, err
	}

	est, err := cost.NewEstimator(cfg.Pricing, cfg.TokensPerWord)
	if err != nil {
		return nil, err
	}
	opts := extractor.DefaultOptions()
	opts.CallTimeout = cfg.CallTimeout
	opts.MaxRetries = cfg.MaxRetries
	ai, err := extractor.NewAdapter(est, opts)
	if err != nil {
		return nil, err
	}

	client, err := llm.New(cfg.LLM)
	if err != nil {
		return nil, err
	}
	engine, err := processor.NewEngine(rb, ai, cfg.Concurrency)
	if err != nil {
		return nil, err
	}

	logger.New().WithField("component", "app").
		WithField("provider", cfg.LLM.Provider).
		WithField("concurrency", cfg.Concurrency).
		WithField("max_retries", cfg.MaxRetries).
		Info("engine ready")
	return &App{Config: cfg, Engine: engine, Client: client}, nil
}

func (a *App) DatasetOptions() dataset.Options {
	return dataset.Options{TextMode: a.Config.TextMode}
}

// Cap applies the configured MaxItems on top of a per-request limit.
func (a *App) Cap(items []types.FeedbackItem, requested int) []types.FeedbackItem {
	n := requested
	if limit := a.Config.MaxItems; limit > 0 && (n <= 0 || n > limit) {
		n = limit
	}
	return dataset.Limit(items, n)
}
