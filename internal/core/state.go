package core

import (
	"log/slog"
	"slices"
)

// FilterPopup is the filter value list of at most one column.
type FilterPopup struct {
	Column int      `json:"column"` // NoColumn when closed
	Values []string `json:"values,omitempty"`
}

// Open reports whether a popup is shown.
func (p FilterPopup) Open() bool { return p.Column != NoColumn }

// State is the long-lived state of one table view.
//
// Call RefreshModel once per update tick before reading Results. A State is
// not safe for concurrent use.
type State struct {
	Source   Model
	Settings Settings
	Results  Results
	Layout   Layout

	Popup     FilterPopup
	Selection Selection

	ContentWidth  float64
	ContentHeight float64

	// SettingsChanged is set by every user-facing settings mutation.
	// Callers clear it after persisting.
	SettingsChanged bool

	// Logger receives debug events. Nil means slog.Default().
	Logger *slog.Logger

	headers      []string
	columnValues []ValueSet
	ref          int64
	synced       bool
}

// NewState creates view state for a model. The first RefreshModel call
// snapshots the schema and resolves the initial Results.
func NewState(source Model, layout Layout) *State {
	return &State{
		Source:    source,
		Settings:  DefaultSettings(0, layout.ColumnWidth),
		Layout:    layout,
		Popup:     FilterPopup{Column: NoColumn},
		Selection: NoSelection(),
	}
}

func (st *State) logger() *slog.Logger {
	if st.Logger != nil {
		return st.Logger
	}
	return slog.Default()
}

// Headers returns the schema snapshot taken at the last schema change.
func (st *State) Headers() []string { return slices.Clone(st.headers) }

// ColumnValues returns the distinct values of column j as of the last
// refresh.
func (st *State) ColumnValues(j int) ValueSet {
	mustColumn(j, len(st.columnValues), "column")
	return st.columnValues[j]
}

// Ref returns the model revision the state was last reconciled against.
func (st *State) Ref() int64 { return st.ref }

// RefreshModel reconciles the state with the model. It is a no-op when the
// model revision is unchanged.
func (st *State) RefreshModel() {
	if st.Source == nil {
		return
	}

	m := st.Source
	ref := m.Ref()
	if st.synced && ref == st.ref {
		return
	}

	cols := m.Columns()
	for _, j := range m.Key() {
		mustColumn(j, cols, "key column")
	}

	if st.schemaChanged() {
		st.resetSchema()
	}

	st.columnValues = make([]ValueSet, cols)
	for j := range st.columnValues {
		st.columnValues[j] = ColumnValues(m, j)
	}

	if st.Popup.Open() {
		j := st.Popup.Column
		st.Popup.Values = PrepareFilterValueList(st.columnValues[j], st.Settings.Filters[j])
	}

	if st.Selection.Active() {
		st.relocateSelection()
	}

	st.ref = ref
	st.synced = true

	st.RefreshResults()
}

func (st *State) schemaChanged() bool {
	m := st.Source
	cols := m.Columns()
	if !st.synced || cols != len(st.headers) {
		return true
	}
	for j := 0; j < cols; j++ {
		if m.HeaderText(j) != st.headers[j] {
			return true
		}
	}
	return false
}

func (st *State) resetSchema() {
	m := st.Source
	st.headers = AllHeaders(m)
	st.Settings = DefaultSettings(len(st.headers), st.Layout.ColumnWidth)
	st.Popup = FilterPopup{Column: NoColumn}
	st.ClearSelection()

	st.logger().Debug("schema reset",
		"columns", len(st.headers),
		"ref", m.Ref(),
	)
}

// relocateSelection keeps the selection on the same logical row. Keyless
// models keep the row index if it is still in range.
func (st *State) relocateSelection() {
	m := st.Source

	if len(m.Key()) == 0 {
		if st.Selection.Row >= m.Rows() {
			st.ClearSelection()
		}
		return
	}

	row := -1
	if len(st.Selection.RowKey) == len(m.Key()) {
		row = FindRowByKey(m, st.Selection.RowKey)
	}
	if row == -1 {
		st.logger().Debug("selection lost", "row_key", st.Selection.RowKey)
		st.ClearSelection()
		return
	}
	if row != st.Selection.Row {
		st.logger().Debug("selection relocated", "from", st.Selection.Row, "to", row)
		st.Selection.Row = row
	}
}

// RefreshResults re-resolves the view without checking the model revision.
// Call it after mutating Settings.
func (st *State) RefreshResults() {
	if st.Source == nil || !st.synced {
		return
	}

	if g := st.Settings.GroupedColumn; g != NoColumn {
		migrated := make(map[string]bool, len(st.columnValues[g]))
		for v := range st.columnValues[g] {
			migrated[v] = st.Settings.GroupCollapsed[v]
		}
		st.Settings.GroupCollapsed = migrated
	}

	st.Results = ApplySettings(st.Source, st.Settings)
	st.ContentWidth, st.ContentHeight = ContentSize(st.Settings, st.Results, st.Layout)

	if st.Selection.Active() {
		if !st.Results.HasRow(st.Selection.Row) || !st.Results.HasColumn(st.Selection.Column) {
			st.ClearSelection()
		}
	}
}

// AdoptSettings replaces the settings with s if s fits the current schema.
// Returns false and leaves the state unchanged otherwise.
func (st *State) AdoptSettings(s Settings) bool {
	if !st.synced || s.Check(len(st.headers)) != nil {
		return false
	}
	st.Settings = s.Clone()
	if st.Settings.GroupCollapsed == nil {
		st.Settings.GroupCollapsed = map[string]bool{}
	}
	st.Popup = FilterPopup{Column: NoColumn}
	st.RefreshResults()
	return true
}

// OpenFilter shows the filter popup for column j, replacing any open popup.
func (st *State) OpenFilter(j int) {
	mustColumn(j, len(st.columnValues), "column")
	st.Popup = FilterPopup{
		Column: j,
		Values: PrepareFilterValueList(st.columnValues[j], st.Settings.Filters[j]),
	}
}

// CloseFilter hides the filter popup.
func (st *State) CloseFilter() {
	st.Popup = FilterPopup{Column: NoColumn}
}

// ToggleFilterValue toggles one value in the open popup's filter.
// Does nothing when no popup is open or the popup does not list value.
func (st *State) ToggleFilterValue(value string) {
	if !st.Popup.Open() || !slices.Contains(st.Popup.Values, value) {
		return
	}
	j := st.Popup.Column
	st.Settings.Filters[j].Toggle(value, st.columnValues[j])
	st.SettingsChanged = true
	st.RefreshResults()
}

// ToggleFilterSelectAll flips the open popup's filter on or off.
func (st *State) ToggleFilterSelectAll() {
	if !st.Popup.Open() {
		return
	}
	st.Settings.Filters[st.Popup.Column].ToggleSelectAll()
	st.SettingsChanged = true
	st.RefreshResults()
}

// ClearFilter disables the filter on column j.
func (st *State) ClearFilter(j int) {
	mustColumn(j, len(st.Settings.Filters), "column")
	st.Settings.Filters[j] = ColumnFilter{}
	st.SettingsChanged = true
	st.RefreshResults()
}

// ToggleSort sorts by column j in the given direction, or removes the sort
// when j is already sorted that way. Sorting the grouped column ungroups it
// and closes the popup.
func (st *State) ToggleSort(j int, ascending bool) {
	mustColumn(j, len(st.headers), "column")
	s := &st.Settings

	active := s.SortColumn == j && s.SortAscending == ascending
	if active {
		s.SortColumn = NoColumn
	} else {
		s.SortColumn = j
	}
	s.SortAscending = ascending

	if s.GroupedColumn == j {
		s.GroupedColumn = NoColumn
		s.GroupCollapsed = map[string]bool{}
		st.CloseFilter()
	}

	st.SettingsChanged = true
	st.RefreshResults()
}

// ToggleGroup groups by column j, or ungroups when j is already grouped.
// Collapse flags are cleared, a sort on j is removed and the popup closes.
func (st *State) ToggleGroup(j int) {
	mustColumn(j, len(st.headers), "column")
	s := &st.Settings

	if s.GroupedColumn == j {
		s.GroupedColumn = NoColumn
	} else {
		s.GroupedColumn = j
	}
	s.GroupCollapsed = map[string]bool{}
	if s.SortColumn == j {
		s.SortColumn = NoColumn
	}

	st.SettingsChanged = true
	st.RefreshResults()
	st.CloseFilter()
}

// ResetGrouping removes grouping and clears collapse flags.
func (st *State) ResetGrouping() {
	st.Settings.GroupedColumn = NoColumn
	st.Settings.GroupCollapsed = map[string]bool{}
	st.SettingsChanged = true
	st.RefreshResults()
}

// ToggleGroupCollapsed collapses or expands the group with the given value.
func (st *State) ToggleGroupCollapsed(value string) {
	if st.Settings.GroupedColumn == NoColumn {
		return
	}
	if st.Settings.GroupCollapsed == nil {
		st.Settings.GroupCollapsed = map[string]bool{}
	}
	st.Settings.GroupCollapsed[value] = !st.Settings.GroupCollapsed[value]
	st.SettingsChanged = true
	st.RefreshResults()
}

// SetNaturalSort switches between byte-wise and alphanumeric sorting.
func (st *State) SetNaturalSort(natural bool) {
	if st.Settings.NaturalSort == natural {
		return
	}
	st.Settings.NaturalSort = natural
	st.SettingsChanged = true
	st.RefreshResults()
}

// ResizeColumn sets the width of column j, clamped to the layout minimum.
func (st *State) ResizeColumn(j int, width float64) {
	mustColumn(j, len(st.Settings.ColumnWidths), "column")
	width = max(width, st.Layout.MinColumnWidth)
	st.Settings.ColumnWidths[j] = width
	st.SettingsChanged = true
	st.ContentWidth, st.ContentHeight = ContentSize(st.Settings, st.Results, st.Layout)
}
