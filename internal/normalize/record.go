package normalize

import (
	"strings"

	"github.com/lehigh-university-libraries/booklink/internal/isbn"
	"github.com/lehigh-university-libraries/booklink/internal/record"
)

// Normalized is a read-only comparison view of a record
type Normalized struct {
	Title      string   // Text form
	TitleWords string   // Title form, stop words removed
	Authors    []string // full names and surnames
	ISBNs      isbn.Set
	Year       string // raw, trimmed
}

// Record derives the comparison view of rec
func Record(rec *record.Record) Normalized {
	return Normalized{
		Title:      Text(rec.Title.Value),
		TitleWords: Title(rec.Title.Value),
		Authors:    Author(rec.Author.Value),
		ISBNs:      isbn.Canonicalize(rec.ISBN.Value),
		Year:       strings.TrimSpace(rec.Year.Value),
	}
}
