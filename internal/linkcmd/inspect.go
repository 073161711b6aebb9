package linkcmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/lehigh-university-libraries/booklink/internal/normalize"
	"github.com/lehigh-university-libraries/booklink/internal/record"
	"github.com/lehigh-university-libraries/booklink/internal/tableio"
)

func executeInspect(w io.Writer, tablePath, column string, limit int) error {
	loader := tableio.NewLoader(tablePath)

	var table *record.Table
	var err error
	if limit > 0 && column == "" {
		table, err = loader.LoadSample(limit)
	} else {
		table, err = loader.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load table: %w", err)
	}

	if column != "" {
		return printColumn(w, table, column, limit)
	}

	fmt.Fprintf(w, "Table: %s (%d records, key column %q)\n", table.Name, len(table.Records), table.KeyColumn)
	fmt.Fprintf(w, "Columns: %s\n", strings.Join(table.Headers, ", "))

	separator := strings.Repeat("=", 80)
	dash := strings.Repeat("-", 80)
	for i := range table.Records {
		rec := &table.Records[i]
		view := normalize.Record(rec)

		fmt.Fprintf(w, "\n%s\nRECORD %d: %s\n%s\n", separator, i+1, rec.ID, dash)
		fmt.Fprintf(w, "Title: %s\n", rec.Title.Value)
		fmt.Fprintf(w, "Author: %s\n", rec.Author.Value)
		fmt.Fprintf(w, "Year: %s\n", rec.Year.Value)
		fmt.Fprintf(w, "ISBN: %s\n", rec.ISBN.Value)
		fmt.Fprintf(w, "\nNormalized title: %s\n", view.TitleWords)
		fmt.Fprintf(w, "Author forms: %s\n", strings.Join(view.Authors, " | "))
		fmt.Fprintf(w, "ISBN variants: %s\n", strings.Join(view.ISBNs.Sorted(), ", "))
	}
	return nil
}

// printColumn prints the non-empty values of column, comma separated
func printColumn(w io.Writer, table *record.Table, column string, limit int) error {
	found := false
	for _, h := range table.Headers {
		if h == column {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("column %q not found in %s (columns: %s)", column, table.Name, strings.Join(table.Headers, ", "))
	}

	var values []string
	for i := range table.Records {
		if limit > 0 && len(values) >= limit {
			break
		}
		if v := table.Value(&table.Records[i], column); strings.TrimSpace(v) != "" {
			values = append(values, v)
		}
	}
	fmt.Fprintln(w, strings.Join(values, ","))
	return nil
}
