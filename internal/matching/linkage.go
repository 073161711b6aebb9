package matching

import (
	"iter"

	"github.com/lehigh-university-libraries/booklink/internal/blocking"
	"github.com/lehigh-university-libraries/booklink/internal/isbn"
	"github.com/lehigh-university-libraries/booklink/internal/normalize"
	"github.com/lehigh-university-libraries/booklink/internal/record"
	"github.com/lehigh-university-libraries/booklink/internal/similarity"
)

// Linkage signal names reported in MatchResult.Fields
const (
	SignalISBN   = "isbn"
	SignalTitle  = "title"
	SignalAuthor = "author"
	SignalYear   = "year"
)

const linkageSignals = 4

// LinkageStrategy links records on ISBN equivalence, or on a similar title
// with a similar author and a compatible year. Candidates come from the ISBN
// variant index, then the exact title index, then a scan of every right
// record whose title is similar.
type LinkageStrategy struct {
	TitleThreshold  float64
	AuthorThreshold float64
	YearTolerance   int
	Comparator      similarity.Comparator

	right  []record.Record
	views  []normalize.Normalized
	byPtr  map[*record.Record]int
	isbns  blocking.ISBNIndex
	titles blocking.TitleIndex
}

// NewLinkageStrategy returns a strategy with the default thresholds
func NewLinkageStrategy() *LinkageStrategy {
	return &LinkageStrategy{
		TitleThreshold:  similarity.DefaultTitleThreshold,
		AuthorThreshold: similarity.DefaultAuthorThreshold,
		YearTolerance:   similarity.DefaultYearTolerance,
		Comparator:      similarity.Default,
	}
}

func (s *LinkageStrategy) Name() string { return "linkage" }

// Prepare indexes right by ISBN variant and title and caches normalized views
func (s *LinkageStrategy) Prepare(right []record.Record) {
	s.right = right
	s.views = make([]normalize.Normalized, len(right))
	s.byPtr = make(map[*record.Record]int, len(right))
	for i := range right {
		s.views[i] = normalize.Record(&right[i])
		s.byPtr[&right[i]] = i
	}
	s.isbns = blocking.BuildISBNIndex(right)
	s.titles = blocking.BuildTitleIndex(right)
}

// Propose yields accepted candidates in index-then-scan order
func (s *LinkageStrategy) Propose(left *record.Record) iter.Seq[Proposal] {
	return func(yield func(Proposal) bool) {
		if s.byPtr == nil {
			return
		}
		lv := normalize.Record(left)
		visited := make(map[int]struct{})

		visit := func(i int) bool {
			if _, done := visited[i]; done {
				return true
			}
			visited[i] = struct{}{}
			p, ok := s.evaluate(lv, i)
			if !ok {
				return true
			}
			return yield(p)
		}

		for _, rec := range s.isbns.Lookup(isbn.Variants(left.ISBN.Value)) {
			if !visit(s.byPtr[rec]) {
				return
			}
		}

		if lv.TitleWords == "" {
			return
		}
		for _, rec := range s.titles[lv.TitleWords] {
			if !visit(s.byPtr[rec]) {
				return
			}
		}
		for i := range s.views {
			if _, done := visited[i]; done {
				continue
			}
			if s.Comparator.CompareNormalized(lv.TitleWords, s.views[i].TitleWords, s.TitleThreshold) == similarity.None {
				continue
			}
			if !visit(i) {
				return
			}
		}
	}
}

// Evaluate scores a pair outside of candidate generation
func (s *LinkageStrategy) Evaluate(left, right *record.Record) (Proposal, bool) {
	lv := normalize.Record(left)
	rv := normalize.Record(right)
	return s.decide(lv, rv, right)
}

func (s *LinkageStrategy) evaluate(lv normalize.Normalized, i int) (Proposal, bool) {
	return s.decide(lv, s.views[i], &s.right[i])
}

// decide accepts on ISBN variant intersection, or on title, author and year
// all agreeing. Score is the fraction of the four signals that agree.
func (s *LinkageStrategy) decide(lv, rv normalize.Normalized, right *record.Record) (Proposal, bool) {
	var fields []string

	isbnOK := lv.ISBNs.Intersects(rv.ISBNs)
	if isbnOK {
		fields = append(fields, SignalISBN)
	}
	titleOK := s.Comparator.CompareNormalized(lv.TitleWords, rv.TitleWords, s.TitleThreshold) != similarity.None
	if titleOK {
		fields = append(fields, SignalTitle)
	}
	authorOK := s.Comparator.AuthorsMatch(lv.Authors, rv.Authors, s.AuthorThreshold)
	if authorOK {
		fields = append(fields, SignalAuthor)
	}
	yearOK := similarity.YearsMatch(lv.Year, rv.Year, s.YearTolerance)
	if yearOK {
		fields = append(fields, SignalYear)
	}

	p := Proposal{
		Right:  right,
		Score:  float64(len(fields)) / linkageSignals,
		Fields: fields,
	}
	switch {
	case isbnOK:
		p.Method = MethodISBN
	case titleOK && authorOK && yearOK:
		p.Method = MethodTitleAuthor
	default:
		return Proposal{}, false
	}
	return p, true
}
