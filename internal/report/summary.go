// Package report aggregates a match run into summary statistics and renders
// them for terminals and YAML run records.
package report

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/booklink/internal/matching"
	"github.com/lehigh-university-libraries/booklink/internal/record"
)

// ScoreStats describes the distribution of match scores
type ScoreStats struct {
	Average float64 `yaml:"average"`
	Median  float64 `yaml:"median"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
}

// Claim is a right record accepted for more than one left record
type Claim struct {
	RightID string   `yaml:"right_id"`
	LeftIDs []string `yaml:"left_ids"`
}

// Summary represents aggregated statistics of a match run
type Summary struct {
	Left         string  `yaml:"left"`
	Right        string  `yaml:"right"`
	LeftRecords  int     `yaml:"left_records"`
	RightRecords int     `yaml:"right_records"`
	Matches      int     `yaml:"matches"`
	Overlap      float64 `yaml:"overlap_percent"`

	Methods map[string]int `yaml:"methods"`
	Fields  map[string]int `yaml:"fields"`
	Scores  ScoreStats     `yaml:"scores"`

	// MultiClaimed lists right records matched by several left records
	MultiClaimed []Claim `yaml:"multi_claimed,omitempty"`

	Duration time.Duration `yaml:"duration"`
}

// Summarize aggregates set against its input tables
func Summarize(set *matching.MatchSet, left, right *record.Table) *Summary {
	s := &Summary{
		Left:         left.Name,
		Right:        right.Name,
		LeftRecords:  len(left.Records),
		RightRecords: len(right.Records),
		Matches:      set.Len(),
		Methods:      make(map[string]int),
		Fields:       make(map[string]int),
	}

	if smaller := min(s.LeftRecords, s.RightRecords); smaller > 0 {
		s.Overlap = float64(s.Matches) / float64(smaller) * 100
	}

	scores := make([]float64, 0, set.Len())
	claims := make(map[string][]string)
	var order []string
	for _, m := range set.Results() {
		s.Methods[m.Method]++
		for _, f := range m.Fields {
			s.Fields[f]++
		}
		scores = append(scores, m.Score)

		if _, seen := claims[m.Right.ID]; !seen {
			order = append(order, m.Right.ID)
		}
		claims[m.Right.ID] = append(claims[m.Right.ID], m.Left.ID)
	}
	s.Scores = scoreStats(scores)

	for _, id := range order {
		if len(claims[id]) > 1 {
			s.MultiClaimed = append(s.MultiClaimed, Claim{RightID: id, LeftIDs: claims[id]})
		}
	}
	sort.SliceStable(s.MultiClaimed, func(i, j int) bool {
		return len(s.MultiClaimed[i].LeftIDs) > len(s.MultiClaimed[j].LeftIDs)
	})
	return s
}

func scoreStats(scores []float64) ScoreStats {
	if len(scores) == 0 {
		return ScoreStats{}
	}
	sorted := slices.Clone(scores)
	slices.Sort(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}

	n := len(sorted)
	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return ScoreStats{
		Average: sum / float64(n),
		Median:  median,
		Min:     sorted[0],
		Max:     sorted[n-1],
	}
}

// PrintSummary writes a human-readable summary of the run to w
func (s *Summary) PrintSummary(w io.Writer) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 70))
	fmt.Fprintln(w, "BOOKLINK MATCH SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "Left (%s): %d records\n", s.Left, s.LeftRecords)
	fmt.Fprintf(w, "Right (%s): %d records\n", s.Right, s.RightRecords)
	fmt.Fprintf(w, "Matches: %d\n", s.Matches)
	fmt.Fprintf(w, "Overlap: %.1f%%\n", s.Overlap)
	if s.Duration > 0 {
		fmt.Fprintf(w, "Duration: %s\n", s.Duration.Round(time.Millisecond))
	}
	fmt.Fprintln(w)

	if len(s.Methods) > 0 {
		fmt.Fprintln(w, "METHODS")
		fmt.Fprintln(w, strings.Repeat("-", 70))
		fmt.Fprintln(w, renderCounts("Method", s.Methods))
		fmt.Fprintln(w)
	}
	if len(s.Fields) > 0 {
		fmt.Fprintln(w, "AGREEING FIELDS")
		fmt.Fprintln(w, strings.Repeat("-", 70))
		fmt.Fprintln(w, renderCounts("Field", s.Fields))
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "SCORES")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "Average: %.3f  Median: %.3f  Min: %.3f  Max: %.3f\n",
		s.Scores.Average, s.Scores.Median, s.Scores.Min, s.Scores.Max)

	if len(s.MultiClaimed) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Right records matched more than once: %d\n", len(s.MultiClaimed))
		for _, c := range s.MultiClaimed {
			fmt.Fprintf(w, "  %s <- %s\n", c.RightID, strings.Join(c.LeftIDs, ", "))
		}
	}
	fmt.Fprintln(w, strings.Repeat("=", 70))
}
