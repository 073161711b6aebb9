package matching

import (
	"iter"

	"github.com/lehigh-university-libraries/booklink/internal/blocking"
	"github.com/lehigh-university-libraries/booklink/internal/record"
	"github.com/lehigh-university-libraries/booklink/internal/similarity"
)

// scoreEpsilon absorbs float error in weight sums so a score of exactly the
// threshold is accepted
const scoreEpsilon = 1e-9

// DefaultAcceptThreshold is the weighted-mode aggregate acceptance threshold
const DefaultAcceptThreshold = 0.8

// FieldWeight is the importance of a field in the weighted aggregate
type FieldWeight struct {
	Field  string
	Weight float64
}

// DefaultFieldWeights favours title and author over ISBN
var DefaultFieldWeights = []FieldWeight{
	{Field: "Title", Weight: 0.4},
	{Field: "Author", Weight: 0.4},
	{Field: "ISBN", Weight: 0.2},
}

// WeightedStrategy blocks right-hand records on title/author prefixes and
// scores each candidate with a weighted vote of per-field similarity.
type WeightedStrategy struct {
	Weights         []FieldWeight
	FieldThreshold  float64
	AcceptThreshold float64
	BlockingFields  []string
	PrefixLength    int
	Comparator      similarity.Comparator

	index *blocking.Index
}

// NewWeightedStrategy returns a strategy with the default configuration
func NewWeightedStrategy() *WeightedStrategy {
	return &WeightedStrategy{
		Weights:         DefaultFieldWeights,
		FieldThreshold:  similarity.DefaultFieldThreshold,
		AcceptThreshold: DefaultAcceptThreshold,
		BlockingFields:  blocking.DefaultFields,
		PrefixLength:    blocking.DefaultPrefixLength,
		Comparator:      similarity.Default,
	}
}

func (s *WeightedStrategy) Name() string { return MethodWeighted }

// Prepare builds the blocking index over right
func (s *WeightedStrategy) Prepare(right []record.Record) {
	s.index = blocking.Build(right, s.BlockingFields, s.PrefixLength)
}

// Propose yields accepted candidates from left's blocking bucket in bucket order
func (s *WeightedStrategy) Propose(left *record.Record) iter.Seq[Proposal] {
	return func(yield func(Proposal) bool) {
		if s.index == nil {
			return
		}
		for _, right := range s.index.Candidates(left) {
			score, fields, ok := s.Score(left, right)
			if !ok || !accepts(score, s.AcceptThreshold) {
				continue
			}
			if !yield(Proposal{Right: right, Score: score, Fields: fields, Method: MethodWeighted}) {
				return
			}
		}
	}
}

// Score computes the weighted aggregate for a pair: the weight of fields that
// are similar divided by the weight of fields present and non-empty on both
// sides. ok is false when no weighted field can be compared.
func (s *WeightedStrategy) Score(left, right *record.Record) (score float64, fields []string, ok bool) {
	var matched, total float64
	for _, fw := range s.Weights {
		lv, rv := left.Field(fw.Field), right.Field(fw.Field)
		if lv.Empty() || rv.Empty() {
			continue
		}
		total += fw.Weight
		if s.Comparator.IsSimilar(lv.Value, rv.Value, s.FieldThreshold) {
			matched += fw.Weight
			fields = append(fields, fw.Field)
		}
	}
	if total <= 0 {
		return 0, nil, false
	}
	return clamp(matched / total), fields, true
}

func accepts(score, threshold float64) bool {
	return score+scoreEpsilon >= threshold
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
