// Package export writes resolved table views to files.
//
// Exports contain the visible columns in display order and the visible data
// rows in display order. Group headings are skipped.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/tableview/internal/core"
)

// WriteCSV writes the view as comma-separated text, one line per row.
//
// Values made only of letters, digits, space and . - _ : + ( ) are written
// as-is. Anything else is quoted, with backslash and double quote escaped by
// a backslash.
func WriteCSV(w io.Writer, m core.Model, res core.Results) error {
	bw := bufio.NewWriter(w)

	writeLine := func(cell func(col int) string) {
		for i, j := range res.ColumnIndices {
			if i > 0 {
				bw.WriteByte(',')
			}
			writeValue(bw, cell(j))
		}
		bw.WriteByte('\n')
	}

	writeLine(m.HeaderText)
	for _, row := range res.DataRows() {
		writeLine(func(col int) string { return m.CellText(row, col) })
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// ExportCSV returns the view as CSV text.
func ExportCSV(m core.Model, res core.Results) string {
	var b strings.Builder
	_ = WriteCSV(&b, m, res)
	return b.String()
}

func writeValue(w *bufio.Writer, value string) {
	if isSafe(value) {
		w.WriteString(value)
		return
	}

	w.WriteByte('"')
	for i := 0; i < len(value); i++ {
		switch c := value[i]; c {
		case '\\':
			w.WriteString(`\\`)
		case '"':
			w.WriteString(`\"`)
		default:
			w.WriteByte(c)
		}
	}
	w.WriteByte('"')
}

func isSafe(value string) bool {
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == ' ', c == '.', c == '-', c == '_', c == ':', c == '+', c == '(', c == ')':
		default:
			return false
		}
	}
	return true
}
