package report

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/lehigh-university-libraries/booklink/internal/matching"
	"github.com/lehigh-university-libraries/booklink/internal/record"
)

// Align is a column alignment for RenderTable
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// RenderTable renders rows under headers with rounded borders
func RenderTable(headers []string, rows [][]string, aligns ...Align) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == AlignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			WidthMax:    48,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func renderCounts(label string, counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, strconv.Itoa(counts[k])})
	}
	return RenderTable([]string{label, "Count"}, rows, AlignLeft, AlignRight)
}

// RenderSamples renders the first n matches side by side, one row per record
func RenderSamples(set *matching.MatchSet, left, right *record.Table, n int) string {
	results := set.Results()
	if n < len(results) {
		results = results[:n]
	}
	if len(results) == 0 {
		return ""
	}

	rows := make([][]string, 0, 2*len(results))
	for _, m := range results {
		match := fmt.Sprintf("%d (%s %.2f)", m.ID+1, m.Method, m.Score)
		rows = append(rows,
			sampleRow(match, left.Name, m.Left),
			sampleRow("", right.Name, m.Right),
		)
	}
	return RenderTable([]string{"Match", "Source", "ID", "Title", "Author", "Year", "ISBN"}, rows)
}

func sampleRow(match, source string, rec *record.Record) []string {
	return []string{match, source, rec.ID, rec.Title.Value, rec.Author.Value, rec.Year.Value, rec.ISBN.Value}
}
