package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/JonMunkholm/tableview/internal/core"
)

// Printer renders a resolved view as a text table.
type Printer struct {
	MaxColWidth uint
}

// Print writes the visible rows of st to w. Group headings take the first
// column and show the value, the row count and whether the group is
// collapsed.
func (p *Printer) Print(w io.Writer, st *core.State) error {
	bold := color.New(color.Bold)
	heading := color.New(color.Bold, color.FgCyan)
	faint := color.New(color.Faint)

	headers := st.Headers()
	res := st.Results

	tbl := uitable.New()
	tbl.Separator = "  "
	if p.MaxColWidth > 0 {
		tbl.MaxColWidth = p.MaxColWidth
	}

	cells := make([]interface{}, len(res.ColumnIndices))
	for k, j := range res.ColumnIndices {
		cells[k] = bold.Sprint(headers[j])
	}
	tbl.AddRow(cells...)

	for _, slot := range res.Rows {
		if slot.IsHeading() {
			h := res.GroupHeadings[slot.Heading]
			marker := "▾"
			if st.Settings.GroupCollapsed[h.Value] {
				marker = "▸"
			}
			tbl.AddRow(heading.Sprintf("%s %s (%d)", marker, h.Value, h.Count))
			continue
		}

		cells := make([]interface{}, len(res.ColumnIndices))
		for k, j := range res.ColumnIndices {
			cells[k] = st.Source.CellText(slot.Row, j)
		}
		tbl.AddRow(cells...)
	}

	if _, err := fmt.Fprintln(w, tbl); err != nil {
		return err
	}
	_, err := faint.Fprintf(w, "%d of %d rows\n", len(res.DataRows()), st.Source.Rows())
	return err
}
