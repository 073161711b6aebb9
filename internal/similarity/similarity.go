// Package similarity holds the field comparators used to score candidate pairs.
package similarity

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lehigh-university-libraries/booklink/internal/normalize"
)

const (
	// DefaultFieldThreshold is the weighted-mode per-field threshold
	DefaultFieldThreshold = 0.85
	// DefaultTitleThreshold is the multi-strategy sequence fallback threshold
	DefaultTitleThreshold = 0.4
	// DefaultAuthorThreshold applies to author token pairs
	DefaultAuthorThreshold = 0.6
	// DefaultYearTolerance is the accepted publication year drift
	DefaultYearTolerance = 3

	minPrefixLength = 5
	minTokenOverlap = 0.5
)

// Strategy is the check that made two strings similar
type Strategy string

const (
	None         Strategy = ""
	Exact        Strategy = "exact"
	Substring    Strategy = "substring"
	Prefix       Strategy = "prefix"
	TokenOverlap Strategy = "token_overlap"
	Sequence     Strategy = "sequence"
)

// Comparator evaluates string similarity under a metric
type Comparator struct {
	Metric Metric
}

// Default uses the Ratcliff/Obershelp ratio
var Default = Comparator{Metric: RatcliffObershelp}

// IsSimilar reports whether the Text forms of a and b are non-empty and have a
// ratio of at least threshold.
func (c Comparator) IsSimilar(a, b string, threshold float64) bool {
	na, nb := normalize.Text(a), normalize.Text(b)
	if na == "" || nb == "" {
		return false
	}
	return c.Metric.Ratio(na, nb) >= threshold
}

// Compare runs the multi-strategy check on the stop-word free forms of a and b
// and returns the first strategy that holds, or None. Checks run in order:
// exact, substring, prefix, token overlap, sequence ratio above threshold.
func (c Comparator) Compare(a, b string, threshold float64) Strategy {
	return c.CompareNormalized(normalize.Title(a), normalize.Title(b), threshold)
}

// CompareNormalized is Compare for strings already in normalize.Title form
func (c Comparator) CompareNormalized(na, nb string, threshold float64) Strategy {
	if na == "" || nb == "" {
		return None
	}

	if na == nb {
		return Exact
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return Substring
	}
	if utf8.RuneCountInString(na) > minPrefixLength && utf8.RuneCountInString(nb) > minPrefixLength {
		if strings.HasPrefix(na, nb) || strings.HasPrefix(nb, na) {
			return Prefix
		}
	}
	if tokenOverlap(na, nb) > minTokenOverlap {
		return TokenOverlap
	}
	if c.Metric.Ratio(na, nb) > threshold {
		return Sequence
	}
	return None
}

// Similar reports whether Compare finds any strategy that holds
func (c Comparator) Similar(a, b string, threshold float64) bool {
	return c.Compare(a, b, threshold) != None
}

// AuthorsMatch reports whether any author token of a is Similar to any of b
func (c Comparator) AuthorsMatch(a, b []string, threshold float64) bool {
	for _, x := range a {
		for _, y := range b {
			if c.Similar(x, y, threshold) {
				return true
			}
		}
	}
	return false
}

// IsSimilar uses the Default comparator
func IsSimilar(a, b string, threshold float64) bool {
	return Default.IsSimilar(a, b, threshold)
}

// Similar uses the Default comparator
func Similar(a, b string, threshold float64) bool {
	return Default.Similar(a, b, threshold)
}

// YearsMatch reports whether two publication years are compatible. A missing
// year on either side is an unknown and matches; non-numeric years never match.
func YearsMatch(a, b string, tolerance int) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return true
	}
	ya, err := strconv.Atoi(a)
	if err != nil {
		return false
	}
	yb, err := strconv.Atoi(b)
	if err != nil {
		return false
	}
	diff := ya - yb
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

// tokenOverlap is |A ∩ B| / min(|A|, |B|) over word sets
func tokenOverlap(a, b string) float64 {
	wa := wordSet(a)
	wb := wordSet(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	shared := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			shared++
		}
	}
	return float64(shared) / float64(min(len(wa), len(wb)))
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(s)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
