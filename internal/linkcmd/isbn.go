package linkcmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/lehigh-university-libraries/booklink/internal/isbn"
	"github.com/lehigh-university-libraries/booklink/internal/report"
)

func executeISBN(w io.Writer, args []string) error {
	rows := make([][]string, 0, len(args))
	for _, arg := range args {
		cleaned := isbn.Clean(arg)
		var isbn10, isbn13 string
		switch len(cleaned) {
		case 10:
			isbn10 = cleaned
			isbn13, _ = isbn.To13(cleaned)
		case 13:
			isbn13 = cleaned
			isbn10, _ = isbn.To10(cleaned)
		}
		rows = append(rows, []string{arg, cleaned, isbn10, isbn13, strings.Join(isbn.Variants(arg), ", ")})
	}

	fmt.Fprintln(w, report.RenderTable([]string{"Input", "Cleaned", "ISBN-10", "ISBN-13", "Variants"}, rows))
	return nil
}
