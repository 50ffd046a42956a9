package core

import (
	"slices"
	"testing"
)

func wideState(t *testing.T) *State {
	t.Helper()
	m, err := NewBasicModel([]string{"a", "b", "c", "d"})
	if err != nil {
		t.Fatalf("NewBasicModel() error = %v", err)
	}
	_ = m.InsertRow([]string{"1", "2", "3", "4"})
	return newState(t, m)
}

func TestReorderColumn(t *testing.T) {
	tests := []struct {
		name        string
		from, to    int
		want        []int
		wantChanged bool
	}{
		{"forward", 0, 2, []int{1, 0, 2, 3}, true},
		{"to end", 0, 4, []int{1, 2, 3, 0}, true},
		{"backward", 3, 0, []int{3, 0, 1, 2}, true},
		{"onto itself", 1, 1, []int{0, 1, 2, 3}, false},
		{"before next", 1, 2, []int{0, 1, 2, 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := wideState(t)
			st.ReorderColumn(tt.from, tt.to)

			if !slices.Equal(st.Settings.ColumnOrdering, tt.want) {
				t.Errorf("ColumnOrdering = %v, want %v", st.Settings.ColumnOrdering, tt.want)
			}
			if !slices.Equal(st.Results.ColumnIndices, tt.want) {
				t.Errorf("ColumnIndices = %v, want %v", st.Results.ColumnIndices, tt.want)
			}
			if st.SettingsChanged != tt.wantChanged {
				t.Errorf("SettingsChanged = %v, want %v", st.SettingsChanged, tt.wantChanged)
			}
		})
	}
}

func TestReorderColumn_PanicsOutOfRange(t *testing.T) {
	st := wideState(t)
	assertPanics(t, "from out of range", func() { st.ReorderColumn(4, 0) })
	assertPanics(t, "to out of range", func() { st.ReorderColumn(0, 5) })
}

func TestColumnItems(t *testing.T) {
	st := wideState(t)
	st.ReorderColumn(3, 0)
	st.ToggleGroup(1)
	st.SetColumnEnabled(3, false) // column c

	want := []ColumnItem{
		{Column: 3, Label: "d", Enabled: true},
		{Column: 0, Label: "a", Enabled: true},
		{Column: 1, Label: "b", Enabled: false},
		{Column: 2, Label: "c", Enabled: false},
	}
	if got := st.ColumnItems(); !slices.Equal(got, want) {
		t.Errorf("ColumnItems() = %v, want %v", got, want)
	}
	if got := st.Results.ColumnIndices; !slices.Equal(got, []int{3, 0}) {
		t.Errorf("ColumnIndices = %v, want [3 0]", got)
	}
}

func TestSetColumnEnabled_UngroupsGroupedColumn(t *testing.T) {
	st := wideState(t)
	st.ToggleGroup(2)
	st.ToggleGroupCollapsed("3")

	st.SetColumnEnabled(2, true)
	if st.Settings.GroupedColumn != NoColumn {
		t.Error("enabling the grouped column kept the grouping")
	}
	if len(st.Settings.GroupCollapsed) != 0 {
		t.Errorf("GroupCollapsed = %v, want cleared", st.Settings.GroupCollapsed)
	}
	if !slices.Equal(st.Results.ColumnIndices, []int{0, 1, 2, 3}) {
		t.Errorf("ColumnIndices = %v", st.Results.ColumnIndices)
	}
}
