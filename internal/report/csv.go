package report

import (
	"io"
	"strings"

	"billing/internal/analytics"
)

// WriteCSV writes the report as CSV. Every cell is double quoted and rows
// are joined by "\n" without a trailing newline.
//
// encoding/csv only quotes cells that need it, and downstream spreadsheets
// expect every value quoted, so rows are encoded here.
func WriteCSV(w io.Writer, r *analytics.AnalyticsReport, startDate, endDate string) error {
	rows := Rows(r, startDate, endDate)

	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, cell := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quote(cell))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func quote(cell string) string {
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}
