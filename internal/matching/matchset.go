package matching

import (
	"github.com/lehigh-university-libraries/booklink/internal/record"
)

// Acceptance methods
const (
	MethodWeighted    = "weighted"
	MethodISBN        = "isbn"
	MethodTitleAuthor = "title_author_year"
)

// Proposal is an accepted candidate pair that has not yet been checked
// against duplicate suppression
type Proposal struct {
	Right  *record.Record
	Score  float64
	Fields []string // fields whose signal agreed
	Method string
}

// MatchResult is an accepted pair with its output identifier
type MatchResult struct {
	ID     int
	Left   *record.Record
	Right  *record.Record
	Score  float64
	Fields []string
	Method string
}

// PairKey identifies an unordered pair of record identifiers
type PairKey struct {
	A, B string
}

// NewPairKey orders x and y so that (x, y) and (y, x) share a key
func NewPairKey(x, y string) PairKey {
	if y < x {
		x, y = y, x
	}
	return PairKey{A: x, B: y}
}

// MatchSet accumulates results in emission order. Each unordered identifier
// pair appears at most once and IDs are assigned sequentially from 0.
//
// Suppression is per pair: one right record can be claimed by several left
// records within a run.
type MatchSet struct {
	results []MatchResult
	seen    map[PairKey]struct{}
}

// NewMatchSet creates an empty match set
func NewMatchSet() *MatchSet {
	return &MatchSet{seen: make(map[PairKey]struct{})}
}

// Contains reports whether the pair was already accepted
func (s *MatchSet) Contains(leftID, rightID string) bool {
	_, ok := s.seen[NewPairKey(leftID, rightID)]
	return ok
}

// Add records p for left unless the pair is already present. It returns the
// stored result and whether it was added.
func (s *MatchSet) Add(left *record.Record, p Proposal) (MatchResult, bool) {
	key := NewPairKey(left.ID, p.Right.ID)
	if _, dup := s.seen[key]; dup {
		return MatchResult{}, false
	}
	s.seen[key] = struct{}{}

	result := MatchResult{
		ID:     len(s.results),
		Left:   left,
		Right:  p.Right,
		Score:  p.Score,
		Fields: p.Fields,
		Method: p.Method,
	}
	s.results = append(s.results, result)
	return result, true
}

// Len returns the number of results
func (s *MatchSet) Len() int {
	return len(s.results)
}

// Results returns the results in emission order
func (s *MatchSet) Results() []MatchResult {
	return s.results
}
