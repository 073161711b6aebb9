// Package matching links records of two catalogs with a pluggable scoring
// strategy and a greedy, order-preserving aggregator.
package matching

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/lehigh-university-libraries/booklink/internal/record"
)

// Strategy proposes accepted right-hand candidates for a left record.
// Propose must be safe for concurrent use once Prepare has returned.
type Strategy interface {
	Name() string
	Prepare(right []record.Record)
	Propose(left *record.Record) iter.Seq[Proposal]
}

// Engine runs a strategy over two tables
type Engine struct {
	Strategy Strategy
	// Workers > 1 scores left records concurrently. Results are always
	// reduced in left input order. Each worker keeps a record's proposals up to
	// the first one that no earlier pair can suppress; when left IDs repeat or
	// double as right IDs, that can mean every accepted candidate.
	Workers int
}

// NewEngine creates an engine for strategy
func NewEngine(strategy Strategy, workers int) *Engine {
	return &Engine{Strategy: strategy, Workers: workers}
}

// Run links left against right. Each left record contributes at most one
// result: the first proposal whose pair is not already in the set.
func (e *Engine) Run(ctx context.Context, left, right *record.Table) (*MatchSet, error) {
	if e.Strategy == nil {
		return nil, fmt.Errorf("no matching strategy configured")
	}

	slog.Debug("Preparing strategy", "strategy", e.Strategy.Name(), "right_records", len(right.Records))
	e.Strategy.Prepare(right.Records)

	if e.Workers > 1 {
		return e.runParallel(ctx, left)
	}

	set := NewMatchSet()
	for i := range left.Records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := &left.Records[i]
		for p := range e.Strategy.Propose(rec) {
			if _, added := set.Add(rec, p); added {
				break
			}
		}
		logProgress(i+1, len(left.Records), set.Len())
	}
	return set, nil
}

func (e *Engine) runParallel(ctx context.Context, left *record.Table) (*MatchSet, error) {
	proposals := make([][]Proposal, len(left.Records))

	leftIDs := make(map[string]int, len(left.Records))
	for i := range left.Records {
		leftIDs[left.Records[i].ID]++
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Workers)
	for i := range left.Records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec := &left.Records[i]
			for p := range e.Strategy.Propose(rec) {
				proposals[i] = append(proposals[i], p)
				if !suppressible(leftIDs, rec.ID, p.Right.ID) {
					break
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := NewMatchSet()
	for i := range left.Records {
		rec := &left.Records[i]
		for _, p := range proposals[i] {
			if _, added := set.Add(rec, p); added {
				break
			}
		}
	}
	slog.Debug("Parallel scoring complete", "workers", e.Workers, "left_records", len(left.Records), "matches", set.Len())
	return set, nil
}

// suppressible reports whether an earlier left record could have claimed the
// unordered pair {leftID, rightID}: either another left record shares leftID,
// or some left record is keyed rightID.
func suppressible(leftIDs map[string]int, leftID, rightID string) bool {
	if leftIDs[leftID] > 1 {
		return true
	}
	if rightID == leftID {
		return false
	}
	return leftIDs[rightID] > 0
}

func logProgress(done, total, matches int) {
	if done%1000 == 0 || done == total {
		slog.Debug("Matching progress", "processed", done, "total", total, "matches", matches)
	}
}
