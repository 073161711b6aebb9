package linkcmd

import (
	"context"
	"fmt"
	"io"

	"github.com/lehigh-university-libraries/booklink/internal/config"
	"github.com/lehigh-university-libraries/booklink/internal/matching"
	"github.com/lehigh-university-libraries/booklink/internal/report"
)

func executeAnalyze(ctx context.Context, w io.Writer, cfg *config.Config, leftPath, rightPath string, samples int) error {
	result, err := runMatch(ctx, cfg, leftPath, rightPath)
	if err != nil {
		return err
	}
	s := result.Summary

	fmt.Fprintln(w, "Dataset sizes:")
	fmt.Fprintf(w, "  %s: %d books\n", s.Left, s.LeftRecords)
	fmt.Fprintf(w, "  %s: %d books\n", s.Right, s.RightRecords)
	fmt.Fprintf(w, "\nFound %d matching books\n", s.Matches)
	fmt.Fprintf(w, "Overlap percentage: %.1f%%\n", s.Overlap)

	if len(s.Methods) > 0 {
		fmt.Fprintln(w)
		for _, method := range []string{matching.MethodISBN, matching.MethodTitleAuthor} {
			if n := s.Methods[method]; n > 0 {
				fmt.Fprintf(w, "  via %s: %d\n", method, n)
			}
		}
	}
	if len(s.MultiClaimed) > 0 {
		fmt.Fprintf(w, "\n%d %s records were linked more than once\n", len(s.MultiClaimed), s.Right)
	}

	if samples > 0 {
		if out := report.RenderSamples(result.Set, result.Left, result.Right, samples); out != "" {
			fmt.Fprintln(w, "\nSample matches:")
			fmt.Fprintln(w, out)
		}
	}
	return nil
}
