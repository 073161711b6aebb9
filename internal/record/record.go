// Package record holds the book record model shared by loaders and matchers.
package record

import (
	"maps"
	"slices"
	"strings"
)

// KeyColumnCandidates lists the accepted key column names in order of preference
var KeyColumnCandidates = []string{"ID", "Id", "id", "KEY", "Key", "key"}

// DefaultKeyColumn is used when no candidate key column is present
const DefaultKeyColumn = "ID"

// Field is a single column value. Present is false when the column was absent
// from the source row, which is distinct from an empty string.
type Field struct {
	Value   string
	Present bool
}

// NewField returns a present field
func NewField(v string) Field {
	return Field{Value: v, Present: true}
}

// Empty reports whether the field is absent or blank
func (f Field) Empty() bool {
	return !f.Present || strings.TrimSpace(f.Value) == ""
}

// Record is a book record from one catalog
type Record struct {
	ID        string
	Title     Field
	Author    Field
	Year      Field
	ISBN      Field
	Publisher Field
	Format    Field
	Language  Field

	// Extra holds every column that does not own a named field (URL, a second
	// Authors column, etc.)
	Extra map[string]string
}

// FromCells builds a record from a column -> value mapping. Columns missing from
// cells stay absent. Columns are visited in sorted order, so when two columns
// resolve to the same named field the result does not depend on map order.
func FromCells(keyColumn string, cells map[string]string) Record {
	headers := slices.Sorted(maps.Keys(cells))
	return fromRow(keyColumn, headers, namedColumns(headers, keyColumn), cells)
}

// fromRow fills the first header that resolves to each named field; later
// headers resolving to the same field are kept in Extra under their own name.
func fromRow(keyColumn string, headers []string, named map[string]bool, cells map[string]string) Record {
	rec := Record{}
	for _, col := range headers {
		v, ok := cells[col]
		if !ok {
			continue
		}
		if col == keyColumn {
			rec.ID = v
			continue
		}
		if named[col] {
			*rec.field(col) = NewField(v)
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]string)
		}
		rec.Extra[col] = v
	}
	return rec
}

// namedColumns reports which headers own a named field
func namedColumns(headers []string, keyColumn string) map[string]bool {
	named := make(map[string]bool, len(headers))
	claimed := make(map[string]bool)
	for _, h := range headers {
		if h == keyColumn {
			continue
		}
		name := fieldName(h)
		if name == "" || claimed[name] {
			continue
		}
		claimed[name] = true
		named[h] = true
	}
	return named
}

// Get resolves a column name to its value. Known book fields are matched
// case-insensitively; everything else is looked up in Extra.
func (r *Record) Get(column string) (string, bool) {
	if f := r.field(column); f != nil {
		return f.Value, f.Present
	}
	v, ok := r.Extra[column]
	return v, ok
}

// Field returns the named field for a column, or an absent field
func (r *Record) Field(column string) Field {
	if f := r.field(column); f != nil {
		return *f
	}
	if v, ok := r.Extra[column]; ok {
		return NewField(v)
	}
	return Field{}
}

func (r *Record) field(column string) *Field {
	switch fieldName(column) {
	case "title":
		return &r.Title
	case "author":
		return &r.Author
	case "year":
		return &r.Year
	case "isbn":
		return &r.ISBN
	case "publisher":
		return &r.Publisher
	case "format":
		return &r.Format
	case "language":
		return &r.Language
	}
	return nil
}

// fieldName returns the canonical named field of a column, "" for none
func fieldName(column string) string {
	switch name := strings.ToLower(strings.TrimSpace(column)); name {
	case "title", "year", "isbn", "publisher", "format", "language":
		return name
	case "author", "authors":
		return "author"
	}
	return ""
}

// KeyColumn determines the key column name from headers
func KeyColumn(headers []string) string {
	for _, name := range KeyColumnCandidates {
		for _, h := range headers {
			if h == name {
				return name
			}
		}
	}
	return DefaultKeyColumn
}

// Table is an ordered record stream with its header
type Table struct {
	Name      string
	Headers   []string
	KeyColumn string
	Records   []Record

	named map[string]bool
}

// NewTable creates an empty table and resolves its key column
func NewTable(name string, headers []string) *Table {
	key := KeyColumn(headers)
	return &Table{
		Name:      name,
		Headers:   headers,
		KeyColumn: key,
		named:     namedColumns(headers, key),
	}
}

// HasKey reports whether the key column is one of the headers
func (t *Table) HasKey() bool {
	return slices.Contains(t.Headers, t.KeyColumn)
}

// Append adds a row given as column -> value cells. Cells outside the header
// are ignored.
func (t *Table) Append(cells map[string]string) {
	t.Records = append(t.Records, fromRow(t.KeyColumn, t.Headers, t.named, cells))
}

// AppendRow adds a row given in header order. Cells beyond the row length are
// treated as absent.
func (t *Table) AppendRow(row []string) {
	cells := make(map[string]string, len(row))
	for i, h := range t.Headers {
		if i < len(row) {
			cells[h] = row[i]
		}
	}
	t.Append(cells)
}

// Value returns the cell of rec under header, "" when absent. Headers that
// do not own a named field read their own column.
func (t *Table) Value(rec *Record, header string) string {
	if header == t.KeyColumn {
		return rec.ID
	}
	if t.named[header] {
		return rec.field(header).Value
	}
	return rec.Extra[header]
}

// OtherHeaders returns the headers except the key column, in table order
func (t *Table) OtherHeaders() []string {
	out := make([]string, 0, len(t.Headers))
	for _, h := range t.Headers {
		if h != t.KeyColumn {
			out = append(out, h)
		}
	}
	return out
}
