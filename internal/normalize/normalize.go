// Package normalize canonicalizes titles, author names and free text for comparison.
package normalize

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// StopWords are dropped from titles before multi-strategy comparison
var StopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "of": {}, "for": {}, "with": {}, "by": {},
	"from": {}, "up": {}, "about": {}, "into": {}, "over": {}, "after": {},
}

var (
	// honorifics and name suffixes, removed as whole words with an optional period
	honorificRe = regexp.MustCompile(`\b(dr|mr|mrs|ms|jr|sr|i{2,}|iii|iv|phd|md|esq)\b\.?`)

	// casers are stateful and must not be shared between goroutines
	lowerPool = sync.Pool{
		New: func() any { return cases.Lower(language.Und) },
	}
)

func lower(s string) string {
	c := lowerPool.Get().(cases.Caser)
	defer lowerPool.Put(c)
	c.Reset()
	return c.String(s)
}

func isWord(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

// replaceNonWord replaces every rune that is neither alphanumeric nor whitespace.
// An empty replacement drops the rune.
func replaceNonWord(s, replacement string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isWord(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteString(replacement)
	}
	return b.String()
}

// Text lowercases s, strips punctuation and collapses whitespace.
// Text(Text(s)) == Text(s).
func Text(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(replaceNonWord(lower(s), "")), " ")
}

// Title is the stop-word free form used by the multi-strategy comparator.
// Punctuation becomes a word break instead of being dropped.
func Title(s string) string {
	if s == "" {
		return ""
	}
	words := strings.Fields(replaceNonWord(lower(s), " "))
	kept := words[:0]
	for _, w := range words {
		if _, stop := StopWords[w]; !stop {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// Author splits an author string on , ; and & and normalizes each name.
// Multi-word names also yield their surname as a separate token.
func Author(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '&'
	})

	var names []string
	for _, part := range parts {
		name := honorificRe.ReplaceAllString(lower(strings.TrimSpace(part)), "")
		name = strings.Join(strings.Fields(replaceNonWord(name, "")), " ")
		if name == "" {
			continue
		}
		names = append(names, name)
		if words := strings.Fields(name); len(words) > 1 {
			names = append(names, words[len(words)-1])
		}
	}
	return names
}
