package core

import "fmt"

// Model is the data source a table view resolves against.
//
// Ref must change after any mutation observable through Columns, Rows,
// HeaderText or CellText. Equal Ref values mean nothing changed.
type Model interface {
	Columns() int
	Rows() int
	HeaderText(col int) string
	CellText(row, col int) string

	// Key returns the ordered key-column indices. The cells at these columns
	// uniquely identify a row across mutations. May be empty.
	Key() []int

	Ref() int64

	SetCellText(row, col int, text string)
}

// HeaderIndex returns the index of the column with the given header text,
// or -1 if no column matches.
func HeaderIndex(m Model, header string) int {
	for j := 0; j < m.Columns(); j++ {
		if m.HeaderText(j) == header {
			return j
		}
	}
	return -1
}

// AllHeaders returns the header text of every column in model order.
func AllHeaders(m Model) []string {
	headers := make([]string, m.Columns())
	for j := range headers {
		headers[j] = m.HeaderText(j)
	}
	return headers
}

// RowKey returns the key-column values of a row, or nil for a keyless model.
func RowKey(m Model, row int) []string {
	key := m.Key()
	if len(key) == 0 {
		return nil
	}
	cols := m.Columns()
	values := make([]string, len(key))
	for i, j := range key {
		mustColumn(j, cols, "key column")
		values[i] = m.CellText(row, j)
	}
	return values
}

// FindRowByKey scans the model for the row whose key-column values equal key.
// Returns -1 when no row matches. The scan is O(rows × len(key)).
func FindRowByKey(m Model, key []string) int {
	cols := m.Key()
	if len(cols) != len(key) {
		panic(fmt.Sprintf("core: row key has %d values, model key has %d columns", len(key), len(cols)))
	}
	n := m.Columns()
	for _, j := range cols {
		mustColumn(j, n, "key column")
	}

rows:
	for i := 0; i < m.Rows(); i++ {
		for k, j := range cols {
			if m.CellText(i, j) != key[k] {
				continue rows
			}
		}
		return i
	}
	return -1
}

// mustColumn panics when col is outside [0, n).
func mustColumn(col, n int, what string) {
	if col < 0 || col >= n {
		panic(fmt.Sprintf("core: %s %d out of range [0, %d)", what, col, n))
	}
}
