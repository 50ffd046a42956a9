package core

import (
	"maps"
	"slices"
)

// ValueSet is the set of distinct cell values in one column.
type ValueSet map[string]struct{}

// Has reports whether v is in the set.
func (vs ValueSet) Has(v string) bool {
	_, ok := vs[v]
	return ok
}

// Sorted returns the values in byte-wise order.
func (vs ValueSet) Sorted() []string {
	return slices.Sorted(maps.Keys(vs))
}

// ColumnValues scans a column and returns its distinct values.
func ColumnValues(m Model, col int) ValueSet {
	mustColumn(col, m.Columns(), "column")
	vs := make(ValueSet)
	for i := 0; i < m.Rows(); i++ {
		vs[m.CellText(i, col)] = struct{}{}
	}
	return vs
}

// PrepareFilterValueList builds the value list shown in a filter popup.
//
// A disabled filter lists every current value. An enabled filter lists its
// stale allowed values first (allowed but no longer present in the data),
// followed by every current value. Both parts are sorted.
func PrepareFilterValueList(values ValueSet, f ColumnFilter) []string {
	current := values.Sorted()
	if !f.Enabled {
		return current
	}

	var stale []string
	for v, ok := range f.AllowedValues {
		if ok && !values.Has(v) {
			stale = append(stale, v)
		}
	}
	slices.Sort(stale)

	return append(stale, current...)
}

// ToggleSelectAll flips the filter on or off and clears its allowed values.
// Turning it on with no allowed values excludes every row.
func (f *ColumnFilter) ToggleSelectAll() {
	f.Enabled = !f.Enabled
	f.AllowedValues = nil
}

// Deselect excludes value. On a disabled filter this enables it with every
// existing value except value; a value absent from the column leaves a
// disabled filter untouched. The filter stays enabled even when nothing
// remains allowed.
func (f *ColumnFilter) Deselect(value string, existing ValueSet) {
	if !f.Enabled {
		if !existing.Has(value) {
			return
		}
		f.Enabled = true
		f.AllowedValues = make(map[string]bool, len(existing))
		for v := range existing {
			if v != value {
				f.AllowedValues[v] = true
			}
		}
		return
	}
	delete(f.AllowedValues, value)
}

// Select re-admits value. When every existing value is then allowed the
// filter disables itself and clears its allowed values.
func (f *ColumnFilter) Select(value string, existing ValueSet) {
	if !f.Enabled {
		return
	}
	if f.AllowedValues == nil {
		f.AllowedValues = make(map[string]bool)
	}
	f.AllowedValues[value] = true

	for v := range existing {
		if !f.AllowedValues[v] {
			return
		}
	}
	f.Enabled = false
	f.AllowedValues = nil
}

// Toggle selects value if it is excluded and deselects it otherwise.
func (f *ColumnFilter) Toggle(value string, existing ValueSet) {
	if f.Allows(value) {
		f.Deselect(value, existing)
	} else {
		f.Select(value, existing)
	}
}
