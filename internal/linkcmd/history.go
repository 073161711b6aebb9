package linkcmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/booklink/internal/history"
	"github.com/lehigh-university-libraries/booklink/internal/report"
)

func executeHistory(ctx context.Context, w io.Writer, dbPath, runID string, limit int) error {
	store, err := history.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	if runID != "" {
		matches, err := store.Matches(ctx, runID)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(matches))
		for _, m := range matches {
			rows = append(rows, []string{
				strconv.Itoa(m.MatchID),
				m.LeftID,
				m.RightID,
				m.Method,
				strconv.FormatFloat(m.Score, 'f', 3, 64),
				strings.Join(m.Fields, ", "),
			})
		}
		fmt.Fprintln(w, report.RenderTable(
			[]string{"ID", "Left", "Right", "Method", "Score", "Fields"}, rows,
			report.AlignRight, report.AlignLeft, report.AlignLeft, report.AlignLeft, report.AlignRight))
		return nil
	}

	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID,
			r.CreatedAt.Local().Format(time.DateTime),
			r.Strategy,
			r.LeftPath,
			r.RightPath,
			strconv.Itoa(r.Matches),
			fmt.Sprintf("%.1f%%", r.Overlap),
		})
	}
	fmt.Fprintln(w, report.RenderTable(
		[]string{"Run", "Created", "Strategy", "Left", "Right", "Matches", "Overlap"}, rows,
		report.AlignLeft, report.AlignLeft, report.AlignLeft, report.AlignLeft, report.AlignLeft, report.AlignRight, report.AlignRight))
	return nil
}
