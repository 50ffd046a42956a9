package core

import "slices"

// Selection is the selected cell. RowKey caches the key-column values of the
// row at selection time so the row can be found again after a mutation.
type Selection struct {
	Row    int      `json:"row"`
	Column int      `json:"column"`
	RowKey []string `json:"row_key,omitempty"`
}

// NoSelection returns the empty selection.
func NoSelection() Selection {
	return Selection{Row: -1, Column: -1}
}

// Active reports whether a cell is selected.
func (s Selection) Active() bool {
	return s.Row != -1 && s.Column != -1
}

// SetSelection selects the cell at model row and column. The selection is
// dropped on the next refresh if the cell is not visible.
func (st *State) SetSelection(row, col int) {
	mustRow(row, st.Source.Rows())
	mustColumn(col, st.Source.Columns(), "column")
	st.Selection = Selection{
		Row:    row,
		Column: col,
		RowKey: RowKey(st.Source, row),
	}
}

// ClearSelection removes the selection.
func (st *State) ClearSelection() {
	st.Selection = NoSelection()
}

// SelectedText returns the text of the selected cell.
func (st *State) SelectedText() (string, bool) {
	if !st.Selection.Active() {
		return "", false
	}
	return st.Source.CellText(st.Selection.Row, st.Selection.Column), true
}

// CommitEdit writes text to a cell through the model when it differs from
// the current value. Reports whether the model was written. Editing a key
// column updates the cached row key of a selection on that row.
func (st *State) CommitEdit(row, col int, text string) bool {
	m := st.Source
	mustRow(row, m.Rows())
	mustColumn(col, m.Columns(), "column")

	if m.CellText(row, col) == text {
		return false
	}
	m.SetCellText(row, col, text)

	if st.Selection.Active() && st.Selection.Row == row && slices.Contains(m.Key(), col) {
		st.Selection.RowKey = RowKey(m, row)
	}
	return true
}
