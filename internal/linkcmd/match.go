package linkcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/lehigh-university-libraries/booklink/internal/config"
	"github.com/lehigh-university-libraries/booklink/internal/history"
	"github.com/lehigh-university-libraries/booklink/internal/matching"
	"github.com/lehigh-university-libraries/booklink/internal/record"
	"github.com/lehigh-university-libraries/booklink/internal/report"
	"github.com/lehigh-university-libraries/booklink/internal/tableio"
)

type matchOptions struct {
	Left       string
	Right      string
	Output     string
	ConfigPath string
	SummaryDir string
	Samples    int
}

// runResult is a finished run with everything needed to report on it
type runResult struct {
	Left    *record.Table
	Right   *record.Table
	Set     *matching.MatchSet
	Summary *report.Summary
}

func loadTables(leftPath, rightPath string) (*record.Table, *record.Table, error) {
	left, err := tableio.NewLoader(leftPath).Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load left table: %w", err)
	}
	right, err := tableio.NewLoader(rightPath).Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load right table: %w", err)
	}
	slog.Info("Tables loaded",
		"left", leftPath, "left_records", len(left.Records), "left_key", left.KeyColumn,
		"right", rightPath, "right_records", len(right.Records), "right_key", right.KeyColumn)
	return left, right, nil
}

func runMatch(ctx context.Context, cfg *config.Config, leftPath, rightPath string) (*runResult, error) {
	left, right, err := loadTables(leftPath, rightPath)
	if err != nil {
		return nil, err
	}

	strategy, err := cfg.NewStrategy()
	if err != nil {
		return nil, err
	}

	slog.Info("Matching", "strategy", strategy.Name(), "metric", cfg.Metric, "workers", cfg.Workers)
	start := time.Now()
	set, err := matching.NewEngine(strategy, cfg.Workers).Run(ctx, left, right)
	if err != nil {
		return nil, fmt.Errorf("matching failed: %w", err)
	}

	summary := report.Summarize(set, left, right)
	summary.Duration = time.Since(start)
	slog.Info("Matching complete", "matches", set.Len(), "duration", summary.Duration)

	return &runResult{Left: left, Right: right, Set: set, Summary: summary}, nil
}

func executeMatch(ctx context.Context, w io.Writer, cfg *config.Config, opts matchOptions) error {
	result, err := runMatch(ctx, cfg, opts.Left, opts.Right)
	if err != nil {
		return err
	}

	headers, rows := matching.Rows(result.Set, result.Left, result.Right)
	if err := tableio.WriteTable(opts.Output, headers, rows); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	slog.Info("Output written", "path", opts.Output, "rows", len(rows))

	result.Summary.PrintSummary(w)
	if opts.Samples > 0 {
		if samples := report.RenderSamples(result.Set, result.Left, result.Right, opts.Samples); samples != "" {
			fmt.Fprintln(w, "\nSample matches:")
			fmt.Fprintln(w, samples)
		}
	}

	run := report.Run{
		Timestamp: time.Now(),
		Config: report.RunConfig{
			Strategy: cfg.Strategy,
			Metric:   cfg.Metric,
			Workers:  cfg.Workers,
			Left:     opts.Left,
			Right:    opts.Right,
			Output:   opts.Output,
		},
		Summary: result.Summary,
	}

	if cfg.HistoryDB != "" {
		id, err := recordRun(ctx, cfg.HistoryDB, run, result.Set)
		if err != nil {
			return err
		}
		run.ID = id
		fmt.Fprintf(w, "\nRun recorded as %s in %s\n", id, cfg.HistoryDB)
	}

	if opts.SummaryDir != "" {
		path, err := report.SaveYAML(opts.SummaryDir, run)
		if err != nil {
			return fmt.Errorf("failed to save run record: %w", err)
		}
		fmt.Fprintf(w, "\nRun record saved to: %s\n", path)
	}

	fmt.Fprintf(w, "\nFound %d matching record pairs\n", result.Set.Len())
	return nil
}

func recordRun(ctx context.Context, dbPath string, run report.Run, set *matching.MatchSet) (string, error) {
	store, err := history.Open(dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	id, err := store.SaveRun(ctx, run, set)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return id, nil
}
