package matching

import (
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/booklink/internal/record"
)

// Output column prefixes
const (
	LeftPrefix  = "ltable_"
	RightPrefix = "rtable_"
)

// Headers returns the output columns: ID, both key columns lowercased, then
// every other left and right column in source order.
func Headers(left, right *record.Table) []string {
	headers := []string{
		"ID",
		LeftPrefix + strings.ToLower(left.KeyColumn),
		RightPrefix + strings.ToLower(right.KeyColumn),
	}
	for _, h := range left.OtherHeaders() {
		headers = append(headers, LeftPrefix+h)
	}
	for _, h := range right.OtherHeaders() {
		headers = append(headers, RightPrefix+h)
	}
	return headers
}

// Rows projects set into output rows aligned with Headers
func Rows(set *MatchSet, left, right *record.Table) (headers []string, rows [][]string) {
	headers = Headers(left, right)
	leftCols := left.OtherHeaders()
	rightCols := right.OtherHeaders()

	rows = make([][]string, 0, set.Len())
	for _, m := range set.Results() {
		row := make([]string, 0, len(headers))
		row = append(row, strconv.Itoa(m.ID), m.Left.ID, m.Right.ID)
		for _, h := range leftCols {
			row = append(row, left.Value(m.Left, h))
		}
		for _, h := range rightCols {
			row = append(row, right.Value(m.Right, h))
		}
		rows = append(rows, row)
	}
	return headers, rows
}
