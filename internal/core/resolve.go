package core

import (
	"fmt"
	"slices"
	"strings"
)

// ApplySettings resolves a model under the given settings.
//
// It reads the model and settings only and returns identical Results for
// identical inputs. Panics if the settings do not fit the model.
func ApplySettings(m Model, s Settings) Results {
	cols := m.Columns()
	s.mustCheck(cols)

	rows := filterRows(m, s.Filters)

	res := Results{ColumnIndices: visibleColumns(s)}

	if s.GroupedColumn == NoColumn {
		sortRows(m, rows, s)
		res.Rows = make([]RowSlot, len(rows))
		for i, row := range rows {
			res.Rows[i] = DataSlot(row)
		}
		return res
	}

	groups := groupRows(m, rows, s.GroupedColumn)
	res.Rows = make([]RowSlot, 0, len(rows)+len(groups))
	res.GroupHeadings = make([]GroupHeading, 0, len(groups))

	for _, g := range groups {
		sortRows(m, g.rows, s)

		res.GroupHeadings = append(res.GroupHeadings, GroupHeading{
			Position: len(res.Rows),
			Value:    g.value,
			Count:    len(g.rows),
		})
		res.Rows = append(res.Rows, HeadingSlot(len(res.GroupHeadings)-1))

		if s.GroupCollapsed[g.value] {
			continue
		}
		for _, row := range g.rows {
			res.Rows = append(res.Rows, DataSlot(row))
		}
	}

	return res
}

// filterRows returns the rows passing every enabled filter, in model order.
func filterRows(m Model, filters []ColumnFilter) []int {
	var active []int
	for j, f := range filters {
		if f.Enabled {
			active = append(active, j)
		}
	}

	n := m.Rows()
	rows := make([]int, 0, n)

next:
	for i := 0; i < n; i++ {
		for _, j := range active {
			if !filters[j].AllowedValues[m.CellText(i, j)] {
				continue next
			}
		}
		rows = append(rows, i)
	}
	return rows
}

type rowGroup struct {
	value string
	rows  []int
}

// groupRows partitions rows by the value of col, ordered by value.
// Rows keep their relative order within a group.
func groupRows(m Model, rows []int, col int) []rowGroup {
	index := make(map[string]int)
	var groups []rowGroup

	for _, row := range rows {
		v := m.CellText(row, col)
		g, ok := index[v]
		if !ok {
			g = len(groups)
			index[v] = g
			groups = append(groups, rowGroup{value: v})
		}
		groups[g].rows = append(groups[g].rows, row)
	}

	slices.SortFunc(groups, func(a, b rowGroup) int {
		return strings.Compare(a.value, b.value)
	})
	return groups
}

// sortRows stable-sorts rows in place by the sort column, if any.
func sortRows(m Model, rows []int, s Settings) {
	if s.SortColumn == NoColumn || len(rows) < 2 {
		return
	}

	compare := CompareBytes
	if s.NaturalSort {
		compare = CompareNatural
	}

	type keyed struct {
		row  int
		text string
	}
	keys := make([]keyed, len(rows))
	for i, row := range rows {
		keys[i] = keyed{row: row, text: m.CellText(row, s.SortColumn)}
	}

	slices.SortStableFunc(keys, func(a, b keyed) int {
		c := compare(a.text, b.text)
		if !s.SortAscending {
			c = -c
		}
		return c
	})

	for i, k := range keys {
		rows[i] = k.row
	}
}

// visibleColumns returns the enabled columns in display order, excluding
// the grouped column.
func visibleColumns(s Settings) []int {
	cols := make([]int, 0, len(s.ColumnOrdering))
	for _, j := range s.ColumnOrdering {
		if !s.ColumnEnabled[j] || j == s.GroupedColumn {
			continue
		}
		cols = append(cols, j)
	}
	return cols
}

// ContentSize returns the total content width and height of resolved
// results under a layout. The height includes the header row.
func ContentSize(s Settings, res Results, l Layout) (width, height float64) {
	width = l.SeparatorWidth * float64(len(res.ColumnIndices))
	for _, j := range res.ColumnIndices {
		width += s.ColumnWidths[j]
	}
	height = l.CellHeight * float64(len(res.Rows)+1)
	return width, height
}

// String implements fmt.Stringer for debugging output.
func (r Results) String() string {
	return fmt.Sprintf("Results{columns: %v, rows: %v, groups: %d}",
		r.ColumnIndices, r.RowIndices(), len(r.GroupHeadings))
}
