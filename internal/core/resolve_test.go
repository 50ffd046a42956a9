package core

import (
	"reflect"
	"slices"
	"testing"
)

// ============================================================================
// ApplySettings Tests
// ============================================================================

func TestApplySettings_Defaults(t *testing.T) {
	m := people(t)
	res := ApplySettings(m, DefaultSettings(3, 100))

	assertRows(t, res, []int{0, 1, 2, 3})
	if !slices.Equal(res.ColumnIndices, []int{0, 1, 2}) {
		t.Errorf("ColumnIndices = %v, want [0 1 2]", res.ColumnIndices)
	}
	if len(res.GroupHeadings) != 0 {
		t.Errorf("GroupHeadings = %v, want none", res.GroupHeadings)
	}
}

func TestApplySettings_Filter(t *testing.T) {
	m := people(t)

	tests := []struct {
		name    string
		filters map[int]ColumnFilter
		want    []int
	}{
		{
			name:    "single value",
			filters: map[int]ColumnFilter{1: {Enabled: true, AllowedValues: map[string]bool{"Oslo": true}}},
			want:    []int{0, 2},
		},
		{
			name: "and across columns",
			filters: map[int]ColumnFilter{
				1: {Enabled: true, AllowedValues: map[string]bool{"Oslo": true, "Tromso": true}},
				2: {Enabled: true, AllowedValues: map[string]bool{"25": true}},
			},
			want: []int{3},
		},
		{
			name:    "enabled with nothing allowed",
			filters: map[int]ColumnFilter{0: {Enabled: true}},
			want:    []int{},
		},
		{
			name:    "disabled ignores allowed values",
			filters: map[int]ColumnFilter{0: {AllowedValues: map[string]bool{"ann": true}}},
			want:    []int{0, 1, 2, 3},
		},
		{
			name:    "allowed value absent from data",
			filters: map[int]ColumnFilter{1: {Enabled: true, AllowedValues: map[string]bool{"Paris": true}}},
			want:    []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings(3, 100)
			for j, f := range tt.filters {
				s.Filters[j] = f
			}
			assertRows(t, ApplySettings(m, s), tt.want)
		})
	}
}

func TestApplySettings_Sort(t *testing.T) {
	m := people(t)

	tests := []struct {
		name      string
		column    int
		ascending bool
		want      []int
	}{
		{"ascending keeps ties in model order", 2, true, []int{1, 3, 0, 2}},
		{"descending keeps ties in model order", 2, false, []int{2, 0, 1, 3}},
		{"by text", 1, true, []int{1, 0, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings(3, 100)
			s.SortColumn = tt.column
			s.SortAscending = tt.ascending
			assertRows(t, ApplySettings(m, s), tt.want)
		})
	}
}

func TestApplySettings_SortStableOnTies(t *testing.T) {
	m, err := NewBasicModel([]string{"Name", "Age"})
	if err != nil {
		t.Fatalf("NewBasicModel() error = %v", err)
	}
	for _, row := range [][]string{{"Bob", "30"}, {"Amy", "25"}, {"Cy", "30"}} {
		_ = m.InsertRow(row)
	}

	tests := []struct {
		name      string
		ascending bool
		want      []int
	}{
		{"ascending", true, []int{1, 0, 2}},
		{"descending", false, []int{0, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings(2, 100)
			s.Filters[1] = ColumnFilter{}
			s.SortColumn = 1
			s.SortAscending = tt.ascending
			assertRows(t, ApplySettings(m, s), tt.want)
		})
	}
}

func TestApplySettings_NaturalSort(t *testing.T) {
	m, _ := NewBasicModel([]string{"file"})
	for _, v := range []string{"file10", "file2", "file1"} {
		_ = m.InsertRow([]string{v})
	}

	s := DefaultSettings(1, 100)
	s.SortColumn = 0
	assertRows(t, ApplySettings(m, s), []int{2, 0, 1})

	s.NaturalSort = true
	assertRows(t, ApplySettings(m, s), []int{2, 1, 0})
}

func TestApplySettings_Group(t *testing.T) {
	m := people(t)
	s := DefaultSettings(3, 100)
	s.GroupedColumn = 1

	res := ApplySettings(m, s)
	assertRows(t, res, []int{-1, 1, -1, 0, 2, -1, 3})

	if !slices.Equal(res.ColumnIndices, []int{0, 2}) {
		t.Errorf("ColumnIndices = %v, want grouped column hidden", res.ColumnIndices)
	}

	want := []GroupHeading{
		{Position: 0, Value: "Bergen", Count: 1},
		{Position: 2, Value: "Oslo", Count: 2},
		{Position: 5, Value: "Tromso", Count: 1},
	}
	if !reflect.DeepEqual(res.GroupHeadings, want) {
		t.Errorf("GroupHeadings = %v, want %v", res.GroupHeadings, want)
	}
	for h, gh := range res.GroupHeadings {
		if slot := res.Rows[gh.Position]; !slot.IsHeading() || slot.Heading != h {
			t.Errorf("Rows[%d] = %+v, want heading %d", gh.Position, slot, h)
		}
	}
}

func TestApplySettings_GroupCollapsed(t *testing.T) {
	m := people(t)
	s := DefaultSettings(3, 100)
	s.GroupedColumn = 1
	s.GroupCollapsed = map[string]bool{"Oslo": true}

	res := ApplySettings(m, s)
	assertRows(t, res, []int{-1, 1, -1, -1, 3})

	if got := res.GroupHeadings[1]; got.Count != 2 || got.Position != 2 {
		t.Errorf("collapsed heading = %+v, want count 2 at position 2", got)
	}
	if got := res.GroupHeadings[2].Position; got != 3 {
		t.Errorf("next heading position = %d, want 3", got)
	}
}

func TestApplySettings_GroupAndSort(t *testing.T) {
	m := people(t)

	tests := []struct {
		name      string
		column    int
		ascending bool
		want      []int
	}{
		{"age ascending", 2, true, []int{-1, 1, -1, 0, 2, -1, 3}},
		{"age descending", 2, false, []int{-1, 1, -1, 2, 0, -1, 3}},
		{"name ascending", 0, true, []int{-1, 1, -1, 0, 2, -1, 3}},
		{"name descending", 0, false, []int{-1, 1, -1, 2, 0, -1, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings(3, 100)
			s.GroupedColumn = 1
			s.SortColumn = tt.column
			s.SortAscending = tt.ascending

			res := ApplySettings(m, s)
			assertRows(t, res, tt.want)

			var groups []string
			for _, gh := range res.GroupHeadings {
				groups = append(groups, gh.Value)
			}
			if want := []string{"Bergen", "Oslo", "Tromso"}; !slices.Equal(groups, want) {
				t.Errorf("group order = %v, want %v", groups, want)
			}
		})
	}
}

func TestApplySettings_GroupFiltered(t *testing.T) {
	m := people(t)
	s := DefaultSettings(3, 100)
	s.GroupedColumn = 1
	s.Filters[2] = ColumnFilter{Enabled: true, AllowedValues: map[string]bool{"30": true, "25": true}}

	res := ApplySettings(m, s)
	assertRows(t, res, []int{-1, 1, -1, 0, -1, 3})
	if got := res.GroupHeadings[1].Count; got != 1 {
		t.Errorf("Oslo count = %d, want 1", got)
	}
}

func TestApplySettings_Columns(t *testing.T) {
	m := people(t)
	s := DefaultSettings(3, 100)
	s.ColumnOrdering = []int{2, 0, 1}
	s.ColumnEnabled[1] = false

	res := ApplySettings(m, s)
	if !slices.Equal(res.ColumnIndices, []int{2, 0}) {
		t.Errorf("ColumnIndices = %v, want [2 0]", res.ColumnIndices)
	}
}

func TestApplySettings_Deterministic(t *testing.T) {
	m := people(t)
	s := DefaultSettings(3, 100)
	s.GroupedColumn = 1
	s.SortColumn = 0
	before := s.Clone()

	a := ApplySettings(m, s)
	b := ApplySettings(m, s)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("results differ: %v vs %v", a, b)
	}
	if !reflect.DeepEqual(s, before) {
		t.Errorf("settings mutated: %+v", s)
	}
}

func TestApplySettings_PanicsOnMismatch(t *testing.T) {
	m := people(t)

	assertPanics(t, "wrong column count", func() {
		ApplySettings(m, DefaultSettings(2, 100))
	})

	s := DefaultSettings(3, 100)
	s.ColumnOrdering = []int{0, 0, 1}
	assertPanics(t, "ordering not a permutation", func() {
		ApplySettings(m, s)
	})
}

func TestContentSize(t *testing.T) {
	m := people(t)
	s := DefaultSettings(3, 100)
	s.ColumnWidths[2] = 60

	res := ApplySettings(m, s)
	w, h := ContentSize(s, res, DefaultLayout())
	if w != 266 {
		t.Errorf("width = %g, want 266", w)
	}
	if h != 125 {
		t.Errorf("height = %g, want 125", h)
	}
}

func TestSettingsCheck(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(*Settings) {}, false},
		{"short widths", func(s *Settings) { s.ColumnWidths = s.ColumnWidths[:2] }, true},
		{"duplicate ordering", func(s *Settings) { s.ColumnOrdering = []int{1, 1, 2} }, true},
		{"ordering out of range", func(s *Settings) { s.ColumnOrdering = []int{0, 1, 3} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings(3, 100)
			tt.mutate(&s)
			if err := s.Check(3); (err != nil) != tt.wantErr {
				t.Errorf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSettingsClone(t *testing.T) {
	s := DefaultSettings(2, 100)
	s.Filters[0] = ColumnFilter{Enabled: true, AllowedValues: map[string]bool{"a": true}}
	s.GroupCollapsed["x"] = true

	c := s.Clone()
	c.ColumnWidths[0] = 1
	c.Filters[0].AllowedValues["b"] = true
	c.GroupCollapsed["y"] = true

	if s.ColumnWidths[0] != 100 {
		t.Error("Clone shares ColumnWidths")
	}
	if s.Filters[0].AllowedValues["b"] {
		t.Error("Clone shares filter values")
	}
	if s.GroupCollapsed["y"] {
		t.Error("Clone shares GroupCollapsed")
	}
}
