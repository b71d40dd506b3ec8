// Command compare runs a feedback file through both analyzers and writes the
// batch report.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"feedback-insights-go/internal/app"
	"feedback-insights-go/internal/config"
	"feedback-insights-go/internal/dataset"
	"feedback-insights-go/internal/export"
	"feedback-insights-go/internal/logger"
	"feedback-insights-go/internal/processor"
)

func main() {
	in := flag.String("in", "", "feedback file (.csv, .json, .txt, .xlsx)")
	out := flag.String("out", "", "output directory (default OUTPUT_DIR)")
	xlsx := flag.Bool("xlsx", false, "also write an .xlsx report")
	maxN := flag.Int("max", 0, "analyze at most this many items (0 = MAX_ITEMS or all)")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: compare -in <file> [-out dir] [-xlsx] [-max n]")
		os.Exit(2)
	}

	if err := run(*in, *out, *xlsx, *maxN); err != nil {
		logger.New().WithError(err).Error("compare failed")
		if errors.Is(err, processor.ErrBatchCancelled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

func run(in, outDir string, xlsx bool, maxItems int) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	if outDir == "" {
		outDir = cfg.OutputDir
	}

	items, _, err := dataset.Load(in, a.DatasetOptions())
	if err != nil {
		return fmt.Errorf("load %s: %w", in, err)
	}
	items = a.Cap(items, maxItems)
	if len(items) == 0 {
		return fmt.Errorf("%s: no feedback items", in)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	batch, runErr := a.Engine.Run(ctx, items, a.Client)

	// A cancelled batch is still written so finished items are not lost.
	path, err := export.WriteJSON(outDir, batch)
	if err != nil {
		return err
	}
	if xlsx {
		if _, err := export.WriteXLSX(outDir, batch); err != nil {
			return err
		}
	}

	s := batch.Summary
	logger.New().WithBatch(batch.ID, s.ItemCount).
		WithField("report", path).
		WithField("total_cost_usd", s.TotalCostUSD).
		WithField("agreement_rate", s.AgreementRate).
		WithField("degraded", s.DegradedCount).
		WithField("winner", s.Verdict.Winner).
		Info("comparison complete")
	return runErr
}
