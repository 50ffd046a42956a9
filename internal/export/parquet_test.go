package export

import (
	"bytes"
	"context"
	"testing"

	"github.com/JonMunkholm/tableview/internal/arrowsource"
	"github.com/JonMunkholm/tableview/internal/core"
)

func TestWriteParquet(t *testing.T) {
	m := model(t, []string{"name", "city", "note"},
		[]string{"ann", "Oslo", "a,b"},
		[]string{"bob", "Bergen", ""},
		[]string{"cid", "Oslo", `"q"`},
	)

	s := core.DefaultSettings(3, 100)
	s.ColumnEnabled[1] = false
	s.Filters[1] = core.ColumnFilter{Enabled: true, AllowedValues: map[string]bool{"Oslo": true}}

	var buf bytes.Buffer
	if err := WriteParquet(&buf, m, core.ApplySettings(m, s)); err != nil {
		t.Fatalf("WriteParquet() error = %v", err)
	}

	got, err := arrowsource.ReadParquet(context.Background(), bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadParquet() error = %v", err)
	}

	if got.Columns() != 2 || got.HeaderText(0) != "name" || got.HeaderText(1) != "note" {
		t.Fatalf("headers = %v, want [name note]", core.AllHeaders(got))
	}
	if got.Rows() != 2 {
		t.Fatalf("Rows() = %d, want 2", got.Rows())
	}
	if got.CellText(0, 1) != "a,b" || got.CellText(1, 0) != "cid" || got.CellText(1, 1) != `"q"` {
		t.Errorf("cells = [%q %q] [%q %q]",
			got.CellText(0, 0), got.CellText(0, 1), got.CellText(1, 0), got.CellText(1, 1))
	}
}
