// Package blocking groups right-hand records by coarse keys so that each left
// record is only compared against a bounded candidate set.
package blocking

import (
	"sort"
	"strings"

	"github.com/lehigh-university-libraries/booklink/internal/isbn"
	"github.com/lehigh-university-libraries/booklink/internal/normalize"
	"github.com/lehigh-university-libraries/booklink/internal/record"
)

const (
	// DefaultPrefixLength is the number of runes taken from each key field
	DefaultPrefixLength = 3
	// Separator joins key segments
	Separator = "_"
)

// DefaultFields are the blocking key fields, in order
var DefaultFields = []string{"Title", "Author"}

// Key derives the blocking key of rec. A missing field contributes an empty
// segment, so records lacking the same fields still block together.
func Key(rec *record.Record, fields []string, prefixLen int) string {
	segments := make([]string, len(fields))
	for i, field := range fields {
		v, _ := rec.Get(field)
		segments[i] = prefix(normalize.Text(v), prefixLen)
	}
	return strings.Join(segments, Separator)
}

func prefix(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Index maps blocking keys to the right-hand records sharing them
type Index struct {
	fields    []string
	prefixLen int
	buckets   map[string][]*record.Record
}

// Build indexes records by their blocking key. Records are referenced, not
// copied, and keep their input order within a bucket.
func Build(records []record.Record, fields []string, prefixLen int) *Index {
	if len(fields) == 0 {
		fields = DefaultFields
	}
	if prefixLen <= 0 {
		prefixLen = DefaultPrefixLength
	}
	idx := &Index{
		fields:    fields,
		prefixLen: prefixLen,
		buckets:   make(map[string][]*record.Record),
	}
	for i := range records {
		rec := &records[i]
		key := Key(rec, fields, prefixLen)
		idx.buckets[key] = append(idx.buckets[key], rec)
	}
	return idx
}

// Key computes rec's key with the index configuration
func (idx *Index) Key(rec *record.Record) string {
	return Key(rec, idx.fields, idx.prefixLen)
}

// Candidates returns the bucket for rec's own key, nil when there is none
func (idx *Index) Candidates(rec *record.Record) []*record.Record {
	return idx.buckets[idx.Key(rec)]
}

// Len returns the number of buckets
func (idx *Index) Len() int {
	return len(idx.buckets)
}

// Keys returns the bucket keys in lexical order
func (idx *Index) Keys() []string {
	keys := make([]string, 0, len(idx.buckets))
	for k := range idx.buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ISBNIndex maps each ISBN variant to a right-hand record. When several
// records share a variant the last one indexed wins.
type ISBNIndex map[string]*record.Record

// BuildISBNIndex indexes every ISBN variant of every record
func BuildISBNIndex(records []record.Record) ISBNIndex {
	idx := make(ISBNIndex)
	for i := range records {
		for _, v := range isbn.Variants(records[i].ISBN.Value) {
			idx[v] = &records[i]
		}
	}
	return idx
}

// Lookup returns the records found for variants, in variant order, skipping
// repeats of the same record.
func (idx ISBNIndex) Lookup(variants []string) []*record.Record {
	var out []*record.Record
	seen := make(map[*record.Record]struct{})
	for _, v := range variants {
		rec, ok := idx[v]
		if !ok {
			continue
		}
		if _, dup := seen[rec]; dup {
			continue
		}
		seen[rec] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// TitleIndex maps stop-word free titles to records in input order
type TitleIndex map[string][]*record.Record

// BuildTitleIndex indexes records by normalize.Title, skipping empty titles
func BuildTitleIndex(records []record.Record) TitleIndex {
	idx := make(TitleIndex)
	for i := range records {
		key := normalize.Title(records[i].Title.Value)
		if key == "" {
			continue
		}
		idx[key] = append(idx[key], &records[i])
	}
	return idx
}
