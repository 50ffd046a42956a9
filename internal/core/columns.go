package core

// ColumnItem is one entry of the column manager, in display order.
type ColumnItem struct {
	Column  int    `json:"column"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

// ColumnItems lists every column in display order. The grouped column is
// reported as disabled because it is shown through group headings.
func (st *State) ColumnItems() []ColumnItem {
	s := st.Settings
	items := make([]ColumnItem, len(s.ColumnOrdering))
	for i, j := range s.ColumnOrdering {
		items[i] = ColumnItem{
			Column:  j,
			Label:   st.headers[j],
			Enabled: s.ColumnEnabled[j] && s.GroupedColumn != j,
		}
	}
	return items
}

// SetColumnEnabled shows or hides the column at display position index.
// Changing the grouped column ungroups it.
func (st *State) SetColumnEnabled(index int, enabled bool) {
	s := &st.Settings
	mustColumn(index, len(s.ColumnOrdering), "display index")
	j := s.ColumnOrdering[index]

	if s.GroupedColumn == j {
		s.GroupedColumn = NoColumn
		s.GroupCollapsed = map[string]bool{}
	}
	s.ColumnEnabled[j] = enabled

	st.SettingsChanged = true
	st.RefreshResults()
}

// ReorderColumn moves the column at display position from so that it lands
// before the column currently at position to. to may equal the column count
// to move a column to the end.
func (st *State) ReorderColumn(from, to int) {
	order := st.Settings.ColumnOrdering
	n := len(order)
	mustColumn(from, n, "display index")
	mustColumn(to, n+1, "display index")

	switch {
	case from < to-1:
		moved := order[from]
		copy(order[from:to-1], order[from+1:to])
		order[to-1] = moved
	case from > to:
		moved := order[from]
		copy(order[to+1:from+1], order[to:from])
		order[to] = moved
	default:
		return
	}

	st.SettingsChanged = true
	st.RefreshResults()
}
