package similarity

import (
	"fmt"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/pmezard/go-difflib/difflib"
)

// Metric names a string similarity ratio in [0, 1]
type Metric string

const (
	// RatcliffObershelp is 2*M/T over matching blocks, the reference metric.
	RatcliffObershelp Metric = "ratcliff-obershelp"
	// JaroWinkler favours shared prefixes. Using it moves acceptance
	// boundaries, so it is never a silent substitute for RatcliffObershelp.
	JaroWinkler Metric = "jaro-winkler"
)

// ParseMetric validates a metric name. Empty selects RatcliffObershelp.
func ParseMetric(name string) (Metric, error) {
	switch Metric(strings.ToLower(strings.TrimSpace(name))) {
	case "", RatcliffObershelp:
		return RatcliffObershelp, nil
	case JaroWinkler:
		return JaroWinkler, nil
	}
	return "", fmt.Errorf("unknown similarity metric: %s (supported: %s, %s)", name, RatcliffObershelp, JaroWinkler)
}

// Ratio computes the similarity of a and b under m
func (m Metric) Ratio(a, b string) float64 {
	if m == JaroWinkler {
		if a == b {
			return 1.0
		}
		return float64(edlib.JaroWinklerSimilarity(a, b))
	}
	return Ratio(a, b)
}

// Ratio is the Ratcliff/Obershelp sequence ratio over runes:
// twice the number of matched runes divided by the total rune count.
// Two empty strings have ratio 1.
func Ratio(a, b string) float64 {
	m := difflib.NewMatcher(splitRunes(a), splitRunes(b))
	return m.Ratio()
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
