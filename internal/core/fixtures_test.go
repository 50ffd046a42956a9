package core

import (
	"slices"
	"testing"
)

// people is a four-row model keyed by name.
//
//	0 ann Oslo   30
//	1 bob Bergen 25
//	2 cid Oslo   41
//	3 dan Tromso 25
func people(t *testing.T, key ...string) *BasicModel {
	t.Helper()
	m, err := NewBasicModel([]string{"name", "city", "age"}, key...)
	if err != nil {
		t.Fatalf("NewBasicModel() error = %v", err)
	}
	for _, row := range [][]string{
		{"ann", "Oslo", "30"},
		{"bob", "Bergen", "25"},
		{"cid", "Oslo", "41"},
		{"dan", "Tromso", "25"},
	} {
		if err := m.InsertRow(row); err != nil {
			t.Fatalf("InsertRow(%v) error = %v", row, err)
		}
	}
	return m
}

func newState(t *testing.T, m Model) *State {
	t.Helper()
	st := NewState(m, DefaultLayout())
	st.RefreshModel()
	return st
}

func assertRows(t *testing.T, res Results, want []int) {
	t.Helper()
	if got := res.RowIndices(); !slices.Equal(got, want) {
		t.Errorf("rows = %v, want %v", got, want)
	}
}

func assertPanics(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s did not panic", name)
		}
	}()
	fn()
}
