// Package isbn derives the equivalent identifier strings of an ISBN so records
// carrying the same book in different formats can be joined.
package isbn

import (
	"fmt"
	"sort"
	"strings"
)

// PartialKeyLength is the size of the leading and trailing partial keys
const PartialKeyLength = 5

// Set is a set of ISBN variant strings
type Set map[string]struct{}

// Contains reports whether v is in the set
func (s Set) Contains(v string) bool {
	_, ok := s[v]
	return ok
}

// Intersects reports whether s and other share at least one variant
func (s Set) Intersects(other Set) bool {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	for v := range small {
		if large.Contains(v) {
			return true
		}
	}
	return false
}

// Sorted returns the variants in lexical order
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Clean upper-cases s and keeps only digits and the check character X
func Clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToUpper(s) {
		if (r >= '0' && r <= '9') || r == 'X' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Variants returns the cleaned ISBN followed by its converted form (10 <-> 13)
// and the leading/trailing partial keys. Order is stable and duplicates are
// removed. A conversion that hits a non-digit is skipped.
func Variants(s string) []string {
	cleaned := Clean(s)
	if cleaned == "" {
		return nil
	}

	out := []string{cleaned}
	switch {
	case len(cleaned) == 13 && strings.HasPrefix(cleaned, "978"):
		if v, err := To10(cleaned); err == nil {
			out = append(out, v)
		}
	case len(cleaned) == 10:
		if v, err := To13(cleaned); err == nil {
			out = append(out, v)
		}
	}

	if len(cleaned) >= PartialKeyLength {
		out = append(out, cleaned[:PartialKeyLength], cleaned[len(cleaned)-PartialKeyLength:])
	}

	return dedupe(out)
}

// Canonicalize returns the variant set of s. Empty input yields an empty set.
func Canonicalize(s string) Set {
	vs := Variants(s)
	set := make(Set, len(vs))
	for _, v := range vs {
		set[v] = struct{}{}
	}
	return set
}

// To10 converts a cleaned 978-prefixed ISBN-13 into ISBN-10
func To10(isbn13 string) (string, error) {
	if len(isbn13) != 13 || !strings.HasPrefix(isbn13, "978") {
		return "", fmt.Errorf("not a 978 ISBN-13: %q", isbn13)
	}
	body := isbn13[3:12]
	check, err := CheckDigit10(body)
	if err != nil {
		return "", err
	}
	return body + string(check), nil
}

// To13 converts a cleaned ISBN-10 into a 978-prefixed ISBN-13
func To13(isbn10 string) (string, error) {
	if len(isbn10) != 10 {
		return "", fmt.Errorf("not an ISBN-10: %q", isbn10)
	}
	body := "978" + isbn10[:9]
	check, err := CheckDigit13(body)
	if err != nil {
		return "", err
	}
	return body + string(check), nil
}

// CheckDigit10 computes the ISBN-10 check character for nine digits:
// weights 10..2, the check makes the weighted sum divisible by 11, 10 is X.
// The bare remainder of the weighted sum is not used as the check: it yields
// 0140449139 for 9780140449136, whose published ISBN-10 is 0140449132.
func CheckDigit10(nine string) (byte, error) {
	if len(nine) != 9 {
		return 0, fmt.Errorf("ISBN-10 body must have 9 digits, got %d", len(nine))
	}
	sum := 0
	for i := 0; i < 9; i++ {
		d, err := digit(nine[i])
		if err != nil {
			return 0, err
		}
		sum += (10 - i) * d
	}
	check := (11 - sum%11) % 11
	if check == 10 {
		return 'X', nil
	}
	return byte('0' + check), nil
}

// CheckDigit13 computes the ISBN-13 check digit for twelve digits using
// alternating weights 1 and 3.
func CheckDigit13(twelve string) (byte, error) {
	if len(twelve) != 12 {
		return 0, fmt.Errorf("ISBN-13 body must have 12 digits, got %d", len(twelve))
	}
	sum := 0
	for i := 0; i < 12; i++ {
		d, err := digit(twelve[i])
		if err != nil {
			return 0, err
		}
		if i%2 == 0 {
			sum += d
		} else {
			sum += 3 * d
		}
	}
	return byte('0' + (10-sum%10)%10), nil
}

func digit(c byte) (int, error) {
	if c < '0' || c > '9' {
		return 0, fmt.Errorf("invalid ISBN digit %q", c)
	}
	return int(c - '0'), nil
}

func dedupe(vs []string) []string {
	seen := make(map[string]struct{}, len(vs))
	out := vs[:0]
	for _, v := range vs {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
