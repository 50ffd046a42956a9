package core

import (
	"fmt"
	"maps"
	"slices"
)

// NoColumn marks an unset sort or grouping column.
const NoColumn = -1

// Layout holds the sizing constants used for content totals.
type Layout struct {
	ColumnWidth    float64 // initial width of every column
	MinColumnWidth float64 // lower bound applied by ResizeColumn
	CellHeight     float64
	SeparatorWidth float64
}

// DefaultLayout returns the standard sizing constants.
func DefaultLayout() Layout {
	return Layout{
		ColumnWidth:    100,
		MinColumnWidth: 50,
		CellHeight:     25,
		SeparatorWidth: 2,
	}
}

// ColumnFilter restricts a column to a set of allowed values.
// A disabled filter lets every value through.
type ColumnFilter struct {
	Enabled       bool            `json:"enabled"`
	AllowedValues map[string]bool `json:"allowed_values,omitempty"`
}

// Allows reports whether a cell value passes the filter.
func (f ColumnFilter) Allows(value string) bool {
	return !f.Enabled || f.AllowedValues[value]
}

func (f ColumnFilter) clone() ColumnFilter {
	f.AllowedValues = maps.Clone(f.AllowedValues)
	return f
}

// Settings is the user-configured shape of a view.
//
// ColumnWidths, ColumnEnabled, ColumnOrdering and Filters always have one
// entry per model column. ColumnOrdering is a permutation of column indices.
type Settings struct {
	ColumnWidths   []float64      `json:"column_widths"`
	ColumnEnabled  []bool         `json:"column_enabled"`
	ColumnOrdering []int          `json:"column_ordering"`
	Filters        []ColumnFilter `json:"filters"`

	SortColumn    int  `json:"sort_column"`
	SortAscending bool `json:"sort_ascending"`

	// NaturalSort compares digit runs numerically when sorting.
	NaturalSort bool `json:"natural_sort,omitempty"`

	GroupedColumn int `json:"grouped_column"`

	// GroupCollapsed is keyed by grouped-column value.
	GroupCollapsed map[string]bool `json:"group_collapsed,omitempty"`
}

// DefaultSettings returns settings for a model with the given column count:
// uniform width, all columns enabled in model order, no filters, no sort and
// no grouping.
func DefaultSettings(columns int, width float64) Settings {
	s := Settings{
		ColumnWidths:   make([]float64, columns),
		ColumnEnabled:  make([]bool, columns),
		ColumnOrdering: make([]int, columns),
		Filters:        make([]ColumnFilter, columns),
		SortColumn:     NoColumn,
		SortAscending:  true,
		GroupedColumn:  NoColumn,
		GroupCollapsed: map[string]bool{},
	}
	for j := 0; j < columns; j++ {
		s.ColumnWidths[j] = width
		s.ColumnEnabled[j] = true
		s.ColumnOrdering[j] = j
	}
	return s
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	c := s
	c.ColumnWidths = slices.Clone(s.ColumnWidths)
	c.ColumnEnabled = slices.Clone(s.ColumnEnabled)
	c.ColumnOrdering = slices.Clone(s.ColumnOrdering)
	c.Filters = make([]ColumnFilter, len(s.Filters))
	for j, f := range s.Filters {
		c.Filters[j] = f.clone()
	}
	c.GroupCollapsed = maps.Clone(s.GroupCollapsed)
	return c
}

// Check reports whether the settings are well-formed for a model with the
// given column count.
func (s Settings) Check(columns int) error {
	if len(s.ColumnWidths) != columns || len(s.ColumnEnabled) != columns ||
		len(s.ColumnOrdering) != columns || len(s.Filters) != columns {
		return fmt.Errorf("settings arrays do not match %d columns: %w", columns, ErrSchemaMismatch)
	}

	seen := make([]bool, columns)
	for _, j := range s.ColumnOrdering {
		if j < 0 || j >= columns || seen[j] {
			return fmt.Errorf("column ordering %v is not a permutation: %w", s.ColumnOrdering, ErrSchemaMismatch)
		}
		seen[j] = true
	}

	if s.SortColumn != NoColumn && (s.SortColumn < 0 || s.SortColumn >= columns) {
		return fmt.Errorf("sort column %d: %w", s.SortColumn, ErrUnknownColumn)
	}
	if s.GroupedColumn != NoColumn && (s.GroupedColumn < 0 || s.GroupedColumn >= columns) {
		return fmt.Errorf("grouped column %d: %w", s.GroupedColumn, ErrUnknownColumn)
	}
	return nil
}

// mustCheck panics when the settings do not fit the model.
func (s Settings) mustCheck(columns int) {
	if err := s.Check(columns); err != nil {
		panic("core: " + err.Error())
	}
}

// SlotKind distinguishes data rows from group headings in Results.
type SlotKind uint8

const (
	SlotData SlotKind = iota
	SlotGroupHeading
)

func (k SlotKind) String() string {
	if k == SlotGroupHeading {
		return "heading"
	}
	return "data"
}

// MarshalText encodes the kind as "data" or "heading".
func (k SlotKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes "data" or "heading".
func (k *SlotKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "data":
		*k = SlotData
	case "heading":
		*k = SlotGroupHeading
	default:
		return fmt.Errorf("unknown slot kind %q", b)
	}
	return nil
}

// RowSlot is one displayed row: either a model row or a group heading.
type RowSlot struct {
	Kind SlotKind `json:"kind"`

	// Row is the model row index for SlotData.
	Row int `json:"row"`

	// Heading indexes Results.GroupHeadings for SlotGroupHeading.
	Heading int `json:"heading"`
}

// DataSlot returns a slot for model row i.
func DataSlot(i int) RowSlot { return RowSlot{Kind: SlotData, Row: i, Heading: -1} }

// HeadingSlot returns a slot for group heading h.
func HeadingSlot(h int) RowSlot { return RowSlot{Kind: SlotGroupHeading, Row: -1, Heading: h} }

// IsHeading reports whether the slot is a group heading.
func (s RowSlot) IsHeading() bool { return s.Kind == SlotGroupHeading }

// GroupHeading describes one group in a grouped view.
type GroupHeading struct {
	Position int    `json:"position"` // index into Results.Rows
	Value    string `json:"value"`
	Count    int    `json:"count"` // filtered rows in the group, collapsed or not
}

// Results is the resolved projection of a Model under Settings.
// It is replaced wholesale on every resolve.
type Results struct {
	ColumnIndices []int          `json:"column_indices"`
	Rows          []RowSlot      `json:"rows"`
	GroupHeadings []GroupHeading `json:"group_headings,omitempty"`
}

// RowIndices returns the rows as model indices, with -1 for group headings.
func (r Results) RowIndices() []int {
	out := make([]int, len(r.Rows))
	for i, slot := range r.Rows {
		if slot.IsHeading() {
			out[i] = -1
		} else {
			out[i] = slot.Row
		}
	}
	return out
}

// DataRows returns the visible model rows in display order.
func (r Results) DataRows() []int {
	out := make([]int, 0, len(r.Rows))
	for _, slot := range r.Rows {
		if !slot.IsHeading() {
			out = append(out, slot.Row)
		}
	}
	return out
}

// HasRow reports whether model row i is visible.
func (r Results) HasRow(i int) bool {
	for _, slot := range r.Rows {
		if !slot.IsHeading() && slot.Row == i {
			return true
		}
	}
	return false
}

// HasColumn reports whether column j is visible.
func (r Results) HasColumn(j int) bool {
	return slices.Contains(r.ColumnIndices, j)
}
