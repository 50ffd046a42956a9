package core

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// BasicModel is an in-memory Model backed by a slice of rows.
//
// Rows inserted with a key matching an existing row replace that row.
type BasicModel struct {
	headers []string
	key     []int
	data    [][]string
	version int64

	// index maps a row's encoded key to its row. nil means stale; it is
	// rebuilt on the next keyed insert.
	index map[string]int
}

// NewBasicModel creates an empty model with the given headers. keyHeaders
// names the columns that identify a row; each must be present in headers.
func NewBasicModel(headers []string, keyHeaders ...string) (*BasicModel, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("new model: %w", ErrNoHeaders)
	}

	m := &BasicModel{
		headers: append([]string(nil), headers...),
		version: 1,
	}

	for _, h := range keyHeaders {
		idx := HeaderIndex(m, h)
		if idx == -1 {
			return nil, fmt.Errorf("new model: key header %q: %w", h, ErrUnknownColumn)
		}
		m.key = append(m.key, idx)
	}

	return m, nil
}

// InsertRow appends a row, or replaces the existing row with the same key.
func (m *BasicModel) InsertRow(row []string) error {
	if len(row) != len(m.headers) {
		return fmt.Errorf("insert row: got %d values for %d columns: %w",
			len(row), len(m.headers), ErrRowWidth)
	}

	m.version++
	row = append([]string(nil), row...)

	if len(m.key) > 0 {
		m.buildIndex()
		k := m.encodeKey(row)
		if idx, ok := m.index[k]; ok {
			m.data[idx] = row
			return nil
		}
		m.index[k] = len(m.data)
	}

	m.data = append(m.data, row)
	return nil
}

// buildIndex rebuilds a stale key index. The first of several rows sharing
// a key wins, as with FindRowByKey.
func (m *BasicModel) buildIndex() {
	if m.index != nil {
		return
	}
	m.index = make(map[string]int, len(m.data))
	for i, row := range m.data {
		k := m.encodeKey(row)
		if _, ok := m.index[k]; !ok {
			m.index[k] = i
		}
	}
}

// encodeKey joins the key values of row with length prefixes so that
// distinct keys never encode alike.
func (m *BasicModel) encodeKey(row []string) string {
	var b strings.Builder
	for _, j := range m.key {
		b.WriteString(strconv.Itoa(len(row[j])))
		b.WriteByte(':')
		b.WriteString(row[j])
	}
	return b.String()
}


// Clone returns an independent copy with the same revision.
func (m *BasicModel) Clone() *BasicModel {
	c := &BasicModel{
		headers: append([]string(nil), m.headers...),
		key:     append([]int(nil), m.key...),
		data:    make([][]string, len(m.data)),
		version: m.version,
	}
	for i, row := range m.data {
		c.data[i] = append([]string(nil), row...)
	}
	return c
}

// DeleteRow removes the row at index i.
func (m *BasicModel) DeleteRow(i int) {
	mustRow(i, len(m.data))
	m.version++
	m.data = append(m.data[:i], m.data[i+1:]...)
	m.index = nil
}

// MoveRow moves the row at index from to index to, shifting rows between.
func (m *BasicModel) MoveRow(from, to int) {
	mustRow(from, len(m.data))
	mustRow(to, len(m.data))
	if from == to {
		return
	}
	m.version++
	row := m.data[from]
	m.data = append(m.data[:from], m.data[from+1:]...)
	m.data = append(m.data[:to], append([][]string{row}, m.data[to:]...)...)
	m.index = nil
}

// SetHeaders replaces the header row. Existing rows keep their values and
// must already have the same width.
func (m *BasicModel) SetHeaders(headers []string) error {
	if len(headers) != len(m.headers) {
		return fmt.Errorf("set headers: got %d headers for %d columns: %w",
			len(headers), len(m.headers), ErrRowWidth)
	}
	m.version++
	m.headers = append([]string(nil), headers...)
	return nil
}

func (m *BasicModel) Columns() int { return len(m.headers) }

func (m *BasicModel) Rows() int { return len(m.data) }

func (m *BasicModel) HeaderText(col int) string { return m.headers[col] }

func (m *BasicModel) CellText(row, col int) string { return m.data[row][col] }

func (m *BasicModel) Key() []int { return m.key }

func (m *BasicModel) Ref() int64 { return m.version }

// SetCellText updates a cell. Writing the current value is not a change.
func (m *BasicModel) SetCellText(row, col int, text string) {
	if m.data[row][col] == text {
		return
	}
	m.version++
	m.data[row][col] = text
	if slices.Contains(m.key, col) {
		m.index = nil
	}
}

func mustRow(row, n int) {
	if row < 0 || row >= n {
		panic(fmt.Sprintf("core: row %d out of range [0, %d)", row, n))
	}
}
