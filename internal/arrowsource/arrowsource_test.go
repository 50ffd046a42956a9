package arrowsource

import (
	"errors"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/JonMunkholm/tableview/internal/core"
)

func buildTable(t *testing.T) arrow.Table {
	t.Helper()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "score", Type: arrow.PrimitiveTypes.Float64},
		{Name: "active", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "day", Type: arrow.FixedWidthTypes.Date32},
	}, nil)

	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()

	b.Field(0).(*array.Int64Builder).AppendValues([]int64{1, 2}, nil)
	b.Field(1).(*array.StringBuilder).AppendValues([]string{"ann", ""}, []bool{true, false})
	b.Field(2).(*array.Float64Builder).AppendValues([]float64{1.5, 10}, nil)
	b.Field(3).(*array.BooleanBuilder).AppendValues([]bool{true, false}, nil)
	b.Field(4).(*array.Date32Builder).AppendValues([]arrow.Date32{0, 19723}, nil)

	rec := b.NewRecord()
	defer rec.Release()

	return array.NewTableFromRecords(schema, []arrow.Record{rec})
}

func TestFromTable(t *testing.T) {
	table := buildTable(t)
	defer table.Release()

	m, err := FromTable(table, "id")
	if err != nil {
		t.Fatalf("FromTable() error = %v", err)
	}

	want := [][]string{
		{"1", "ann", "1.5", "true", "1970-01-01"},
		{"2", "", "10", "false", "2024-01-01"},
	}
	if m.Rows() != len(want) {
		t.Fatalf("Rows() = %d, want %d", m.Rows(), len(want))
	}
	for i, row := range want {
		for j, v := range row {
			if got := m.CellText(i, j); got != v {
				t.Errorf("CellText(%d, %d) = %q, want %q", i, j, got, v)
			}
		}
	}
	if len(m.Key()) != 1 || m.Key()[0] != 0 {
		t.Errorf("Key() = %v, want [0]", m.Key())
	}
}

func TestFromTable_UnknownKey(t *testing.T) {
	table := buildTable(t)
	defer table.Release()

	if _, err := FromTable(table, "missing"); !errors.Is(err, core.ErrUnknownColumn) {
		t.Errorf("FromTable() error = %v, want ErrUnknownColumn", err)
	}
}
