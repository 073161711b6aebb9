package normalize

import (
	"reflect"
	"testing"

	"github.com/lehigh-university-libraries/booklink/internal/record"
)

func TestText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases and strips punctuation", "The Great Gatsby!", "the great gatsby"},
		{"collapses whitespace", "  Harry   Potter\tand\nthe Stone ", "harry potter and the stone"},
		{"drops apostrophes inside words", "Ender's Game", "enders game"},
		{"keeps digits", "1984: A Novel", "1984 a novel"},
		{"keeps accented letters", "Cien Años de Soledad", "cien años de soledad"},
		{"empty", "", ""},
		{"only punctuation", "?!...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestTextIdempotent(t *testing.T) {
	inputs := []string{
		"The Great Gatsby",
		"  F. Scott   Fitzgerald ",
		"Ça m'est égal — vraiment?",
		"İstanbul Hatırası",
		"A Game of Thrones (A Song of Ice and Fire, Book 1)",
		"",
		"___",
	}
	for _, in := range inputs {
		once := Text(in)
		if twice := Text(once); twice != once {
			t.Errorf("Text not idempotent for %q: %q != %q", in, twice, once)
		}
	}
}

func TestTitleRemovesStopWords(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"The Lord of the Rings", "lord rings"},
		{"Harry Potter and the Sorcerer's Stone", "harry potter sorcerer s stone"},
		{"The", ""},
		{"Gone with the Wind", "gone wind"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Title(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestAuthor(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"single name", "F. Scott Fitzgerald", []string{"f scott fitzgerald", "fitzgerald"}},
		{"inverted name", "Fitzgerald, F. Scott", []string{"fitzgerald", "f scott", "scott"}},
		{"multiple authors", "Neil Gaiman & Terry Pratchett", []string{"neil gaiman", "gaiman", "terry pratchett", "pratchett"}},
		{"honorifics", "Dr. Martin Luther King Jr.", []string{"martin luther king", "king"}},
		{"roman numeral suffix", "John Smith III; Mrs. Jane Doe", []string{"john smith", "smith", "jane doe", "doe"}},
		{"degrees", "Oliver Sacks MD", []string{"oliver sacks", "sacks"}},
		{"single word", "Homer", []string{"homer"}},
		{"empty", "", nil},
		{"only separators", " ; & ,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Author(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestRecordView(t *testing.T) {
	rec := record.FromCells("ID", map[string]string{
		"ID":     "ol_1",
		"Title":  "The Great Gatsby",
		"Author": "F. Scott Fitzgerald",
		"ISBN":   "978-0-7432-7356-5",
		"Year":   " 1925 ",
	})

	view := Record(&rec)

	if view.Title != "the great gatsby" {
		t.Errorf("Expected title text form, got %q", view.Title)
	}
	if view.TitleWords != "great gatsby" {
		t.Errorf("Expected stop-word free title, got %q", view.TitleWords)
	}
	if view.Year != "1925" {
		t.Errorf("Expected trimmed year, got %q", view.Year)
	}
	if !view.ISBNs.Contains("0743273567") {
		t.Errorf("Expected ISBN-10 variant in %v", view.ISBNs.Sorted())
	}
	if len(view.Authors) != 2 {
		t.Errorf("Expected 2 author tokens, got %v", view.Authors)
	}
}
