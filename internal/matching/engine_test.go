package matching

import (
	"context"
	"fmt"
	"iter"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/booklink/internal/record"
)

var bookHeaders = []string{"ID", "Title", "Author", "Year", "ISBN", "URL"}

func table(name string, rows ...[]string) *record.Table {
	t := record.NewTable(name, bookHeaders)
	for _, row := range rows {
		t.AppendRow(row)
	}
	return t
}

func pairs(set *MatchSet) [][2]string {
	out := make([][2]string, 0, set.Len())
	for _, m := range set.Results() {
		out = append(out, [2]string{m.Left.ID, m.Right.ID})
	}
	return out
}

func TestLinkageScenarioISBNAcrossFormats(t *testing.T) {
	left := table("left", []string{"ol_1", "The Great Gatsby", "F. Scott Fitzgerald", "", "9780743273565", ""})
	right := table("right", []string{"gb_1", "Great Gatsby", "Fitzgerald, F. Scott", "", "0743273567", ""})

	set, err := NewEngine(NewLinkageStrategy(), 1).Run(context.Background(), left, right)
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())

	m := set.Results()[0]
	assert.Equal(t, 0, m.ID)
	assert.Equal(t, "gb_1", m.Right.ID)
	assert.Equal(t, MethodISBN, m.Method)
	assert.Contains(t, m.Fields, SignalISBN)
}

func TestLinkageISBNIgnoresTitleAndAuthorWording(t *testing.T) {
	left := table("left", []string{"ol_1", "The Great Gatsby", "F. Scott Fitzgerald", "1925", "9780743273565", ""})
	right := table("right", []string{"gb_9", "Collected Works Vol 2", "Anonymous", "1990", "0743273567", ""})

	set, err := NewEngine(NewLinkageStrategy(), 1).Run(context.Background(), left, right)
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
	assert.Equal(t, MethodISBN, set.Results()[0].Method)
	assert.Equal(t, []string{SignalISBN}, set.Results()[0].Fields)
	assert.InDelta(t, 0.25, set.Results()[0].Score, 1e-9)
}

func TestLinkageYearOutsideToleranceRejected(t *testing.T) {
	left := table("left", []string{"ol_1", "Digital Fortress", "Dan Brown", "2001", "", ""})
	far := table("right", []string{"gb_1", "Digital Fortress", "Dan Brown", "2010", "", ""})
	near := table("right", []string{"gb_1", "Digital Fortress", "Dan Brown", "2003", "", ""})

	set, err := NewEngine(NewLinkageStrategy(), 1).Run(context.Background(), left, far)
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len(), "years 9 apart must not match")

	set, err = NewEngine(NewLinkageStrategy(), 1).Run(context.Background(), left, near)
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
	assert.Equal(t, MethodTitleAuthor, set.Results()[0].Method)
	assert.InDelta(t, 0.75, set.Results()[0].Score, 1e-9)
}

func TestLinkageEmptyTitleMatchesByISBN(t *testing.T) {
	left := table("left", []string{"ol_1", "", "Homer", "", "978-0-14-044913-6", ""})
	right := table("right",
		[]string{"gb_1", "The Odyssey", "Homer", "", "0140449132", ""},
		[]string{"gb_2", "", "Homer", "", "", ""},
	)

	set, err := NewEngine(NewLinkageStrategy(), 1).Run(context.Background(), left, right)
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
	assert.Equal(t, "gb_1", set.Results()[0].Right.ID)
}

func TestLinkageMissingAuthorRejectsTitlePath(t *testing.T) {
	left := table("left", []string{"ol_1", "Dracula", "", "1897", "", ""})
	right := table("right", []string{"gb_1", "Dracula", "Bram Stoker", "1897", "", ""})

	set, err := NewEngine(NewLinkageStrategy(), 1).Run(context.Background(), left, right)
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

func TestLinkageFirstAcceptableCandidateWins(t *testing.T) {
	left := table("left", []string{"ol_1", "Dune", "Frank Herbert", "1965", "", ""})
	right := table("right",
		[]string{"gb_1", "Dune Messiah", "Frank Herbert", "1969", "", ""},
		[]string{"gb_2", "Dune", "Frank Herbert", "1965", "", ""},
	)

	set, err := NewEngine(NewLinkageStrategy(), 1).Run(context.Background(), left, right)
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
	// exact title index is consulted before the scan
	assert.Equal(t, "gb_2", set.Results()[0].Right.ID)
}

func TestRightRecordCanBeClaimedTwice(t *testing.T) {
	left := table("left",
		[]string{"ol_1", "Emma", "Jane Austen", "1815", "", ""},
		[]string{"ol_2", "Emma", "Jane Austen", "1816", "", ""},
	)
	right := table("right", []string{"gb_1", "Emma", "Jane Austen", "1815", "", ""})

	set, err := NewEngine(NewLinkageStrategy(), 1).Run(context.Background(), left, right)
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"ol_1", "gb_1"}, {"ol_2", "gb_1"}}, pairs(set))
}

func TestDuplicatePairSuppressed(t *testing.T) {
	left := table("left",
		[]string{"ol_1", "Emma", "Jane Austen", "1815", "", ""},
		[]string{"ol_1", "Emma", "Jane Austen", "1815", "", ""},
	)
	right := table("right", []string{"gb_1", "Emma", "Jane Austen", "1815", "", ""})

	for _, strategy := range []Strategy{NewLinkageStrategy(), NewWeightedStrategy()} {
		t.Run(strategy.Name(), func(t *testing.T) {
			set, err := NewEngine(strategy, 1).Run(context.Background(), left, right)
			require.NoError(t, err)
			assert.Equal(t, [][2]string{{"ol_1", "gb_1"}}, pairs(set))
		})
	}
}

func TestWeightedThresholdBoundary(t *testing.T) {
	left := table("left", []string{"ol_1", "The Shining", "Stephen King", "", "0385121679", ""})
	right := table("right", []string{"gb_1", "The Shining", "Stephen King", "", "0450040186", ""})

	exact := NewWeightedStrategy()
	exact.Weights = []FieldWeight{{Field: "Title", Weight: 0.8}, {Field: "ISBN", Weight: 0.2}}
	set, err := NewEngine(exact, 1).Run(context.Background(), left, right)
	require.NoError(t, err)
	require.Equal(t, 1, set.Len(), "aggregate of exactly 0.8 is accepted")
	assert.InDelta(t, 0.8, set.Results()[0].Score, 1e-12)
	assert.Equal(t, []string{"Title"}, set.Results()[0].Fields)

	under := NewWeightedStrategy()
	under.Weights = []FieldWeight{{Field: "Title", Weight: 0.7999}, {Field: "ISBN", Weight: 0.2001}}
	set, err = NewEngine(under, 1).Run(context.Background(), left, right)
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len(), "aggregate of 0.7999 is rejected")
}

func TestWeightedDefaultWeights(t *testing.T) {
	tests := []struct {
		name     string
		left     []string
		right    []string
		accepted bool
		score    float64
	}{
		{
			name:     "title and author agree, isbn differs",
			left:     []string{"ol_1", "The Shining", "Stephen King", "", "0385121679", ""},
			right:    []string{"gb_1", "The Shining", "Stephen King", "", "0450040186", ""},
			accepted: true,
			score:    0.8,
		},
		{
			name:     "empty isbn carries no weight",
			left:     []string{"ol_1", "The Shining", "Stephen King", "", "", ""},
			right:    []string{"gb_1", "The Shining!", "Stephen King", "", "0450040186", ""},
			accepted: true,
			score:    1.0,
		},
		{
			name:     "author differs",
			left:     []string{"ol_1", "The Stand", "Stephen King", "", "", ""},
			right:    []string{"gb_1", "The Stand", "Steve Kingsley-Brown", "", "", ""},
			accepted: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := NewEngine(NewWeightedStrategy(), 1).Run(context.Background(), table("l", tt.left), table("r", tt.right))
			require.NoError(t, err)
			if !tt.accepted {
				assert.Equal(t, 0, set.Len())
				return
			}
			require.Equal(t, 1, set.Len())
			assert.InDelta(t, tt.score, set.Results()[0].Score, 1e-9)
		})
	}
}

func TestWeightedScoreSkipsIncomparablePairs(t *testing.T) {
	s := NewWeightedStrategy()
	left := record.FromCells("ID", map[string]string{"ID": "ol_1", "Year": "1999"})
	right := record.FromCells("ID", map[string]string{"ID": "gb_1", "Title": "Emma", "Year": "1999"})

	_, _, ok := s.Score(&left, &right)
	assert.False(t, ok)
}

func syntheticTables() (*record.Table, *record.Table) {
	titles := []string{
		"The Shining", "Misery", "Carrie", "It", "Emma", "Persuasion", "Dune",
		"Dune Messiah", "The Hobbit", "Dracula", "Rebecca", "The Stand",
	}
	authors := []string{"Stephen King", "Jane Austen", "Frank Herbert", "J. R. R. Tolkien", "Bram Stoker", "Daphne du Maurier"}

	left := record.NewTable("left", bookHeaders)
	right := record.NewTable("right", bookHeaders)
	for i := 0; i < 60; i++ {
		title := titles[i%len(titles)]
		author := authors[i%len(authors)]
		year := fmt.Sprintf("%d", 1950+i%7)
		left.AppendRow([]string{fmt.Sprintf("ol_%d", i), title, author, year, "", ""})
		if i%3 != 0 {
			right.AppendRow([]string{fmt.Sprintf("gb_%d", i), title + ":", author, year, "", ""})
		}
	}
	return left, right
}

func TestEngineDeterministicAndParallelEquivalent(t *testing.T) {
	for _, newStrategy := range []func() Strategy{
		func() Strategy { return NewLinkageStrategy() },
		func() Strategy { return NewWeightedStrategy() },
	} {
		left, right := syntheticTables()
		first, err := NewEngine(newStrategy(), 1).Run(context.Background(), left, right)
		require.NoError(t, err)
		second, err := NewEngine(newStrategy(), 1).Run(context.Background(), left, right)
		require.NoError(t, err)
		parallel, err := NewEngine(newStrategy(), 8).Run(context.Background(), left, right)
		require.NoError(t, err)

		require.NotZero(t, first.Len())
		assert.Equal(t, pairs(first), pairs(second))
		assert.Equal(t, pairs(first), pairs(parallel))

		seen := make(map[PairKey]struct{})
		for i, m := range parallel.Results() {
			assert.Equal(t, i, m.ID)
			assert.GreaterOrEqual(t, m.Score, 0.0)
			assert.LessOrEqual(t, m.Score, 1.0)
			key := NewPairKey(m.Left.ID, m.Right.ID)
			_, dup := seen[key]
			assert.False(t, dup, "pair %v repeated", key)
			seen[key] = struct{}{}
		}
	}
}

func TestEngineHonorsCancellation(t *testing.T) {
	left, right := syntheticTables()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(NewLinkageStrategy(), 1).Run(ctx, left, right)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewEngine(NewLinkageStrategy(), 4).Run(ctx, left, right)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngineRequiresStrategy(t *testing.T) {
	_, err := (&Engine{}).Run(context.Background(), table("l"), table("r"))
	assert.Error(t, err)
}

// everyRight accepts every right record in input order and counts proposals
type everyRight struct {
	right   []record.Record
	yielded atomic.Int64
}

func (s *everyRight) Name() string { return "every" }

func (s *everyRight) Prepare(right []record.Record) { s.right = right }

func (s *everyRight) Propose(left *record.Record) iter.Seq[Proposal] {
	return func(yield func(Proposal) bool) {
		for i := range s.right {
			s.yielded.Add(1)
			if !yield(Proposal{Right: &s.right[i], Score: 1, Method: "every"}) {
				return
			}
		}
	}
}

func TestParallelStopsAtFirstUnsuppressibleProposal(t *testing.T) {
	var leftRows, rightRows [][]string
	for i := 0; i < 20; i++ {
		leftRows = append(leftRows, []string{fmt.Sprintf("ol_%d", i), "", "", "", "", ""})
	}
	for i := 0; i < 30; i++ {
		rightRows = append(rightRows, []string{fmt.Sprintf("gb_%d", i), "", "", "", "", ""})
	}
	left, right := table("left", leftRows...), table("right", rightRows...)

	strategy := &everyRight{}
	set, err := NewEngine(strategy, 4).Run(context.Background(), left, right)
	require.NoError(t, err)
	assert.Equal(t, 20, set.Len())
	assert.Equal(t, int64(20), strategy.yielded.Load(), "one proposal per left record")
}

func TestParallelKeepsProposalsWhenIDsCollide(t *testing.T) {
	left := table("left",
		[]string{"a", "", "", "", "", ""},
		[]string{"a", "", "", "", "", ""},
		[]string{"b", "", "", "", "", ""},
	)
	right := table("right",
		[]string{"a", "", "", "", "", ""},
		[]string{"b", "", "", "", "", ""},
		[]string{"c", "", "", "", "", ""},
	)

	sequential, err := NewEngine(&everyRight{}, 1).Run(context.Background(), left, right)
	require.NoError(t, err)
	parallel, err := NewEngine(&everyRight{}, 3).Run(context.Background(), left, right)
	require.NoError(t, err)

	expected := [][2]string{{"a", "a"}, {"a", "b"}, {"b", "b"}}
	assert.Equal(t, expected, pairs(sequential))
	assert.Equal(t, expected, pairs(parallel))
}
