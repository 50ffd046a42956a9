package web

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/tableview/internal/core"
	"github.com/JonMunkholm/tableview/internal/service"
)

const pageStyle = `body{font-family:sans-serif;margin:1rem}
table{border-collapse:separate;border-spacing:0;table-layout:fixed}
th,td{border-right:2px solid #ddd;padding:2px 4px;height:25px;overflow:hidden;white-space:nowrap;text-overflow:ellipsis}
th{background:#f3f3f3;text-align:left}
tr.heading td{background:#e8eef7;font-weight:bold}
td.selected{outline:2px solid #3b82f6}
.alert{border:1px solid #e5a0a0;background:#fdf0f0;padding:.75rem;max-width:40rem}`

// layout wraps body in the page shell.
func layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &htmlWriter{w: w}
		p.printf("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>%s</title><style>%s</style></head><body>",
			esc(title), pageStyle)
		p.render(ctx, body)
		p.printf("</body></html>")
		return p.err
	})
}

// viewPage renders a read-only HTML table of a view snapshot.
func viewPage(snap *service.Snapshot) templ.Component {
	return layout(snap.Source.Label, viewBody(snap))
}

func viewBody(snap *service.Snapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &htmlWriter{w: w}
		p.printf("<h1>%s</h1>", esc(snap.Source.Label))
		p.printf("<p>%d of %d rows shown</p>", len(snap.Results.DataRows()), snap.TotalRows)
		p.printf("<table>")
		p.render(ctx, headerRow(snap))
		p.printf("<tbody>")
		span := len(snap.Results.ColumnIndices)
		for _, row := range snap.Grid {
			if row.Kind == core.SlotGroupHeading {
				p.render(ctx, groupHeading(row, span))
				continue
			}
			p.render(ctx, dataRow(snap, row))
		}
		p.printf("</tbody></table>")
		return p.err
	})
}

// headerRow renders the column widths and the header cells.
func headerRow(snap *service.Snapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &htmlWriter{w: w}
		p.printf("<colgroup>")
		for _, j := range snap.Results.ColumnIndices {
			p.printf("<col style=\"width:%spx\">", formatWidth(snap.Settings.ColumnWidths[j]))
		}
		p.printf("</colgroup><thead><tr>")
		for _, j := range snap.Results.ColumnIndices {
			p.printf("<th>%s%s</th>", esc(snap.Headers[j]), sortMarker(snap.Settings, j))
		}
		p.printf("</tr></thead>")
		return p.err
	})
}

// groupHeading renders one group heading spanning every visible column.
func groupHeading(row service.GridRow, span int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		marker := "▾"
		if row.Collapsed {
			marker = "▸"
		}
		p := &htmlWriter{w: w}
		p.printf("<tr class=\"heading\"><td colspan=\"%d\">%s %s (%d)</td></tr>",
			span, marker, esc(row.Heading.Value), row.Heading.Count)
		return p.err
	})
}

func dataRow(snap *service.Snapshot, row service.GridRow) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &htmlWriter{w: w}
		p.printf("<tr data-row=\"%d\">", row.Row)
		for k, text := range row.Cells {
			col := snap.Results.ColumnIndices[k]
			if snap.Selection.Row == row.Row && snap.Selection.Column == col {
				p.printf("<td class=\"selected\">%s</td>", esc(text))
				continue
			}
			p.printf("<td>%s</td>", esc(text))
		}
		p.printf("</tr>")
		return p.err
	})
}

// errorAlert renders a standalone error page.
func errorAlert(msg core.UserMessage) templ.Component {
	return layout("Error", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &htmlWriter{w: w}
		p.printf("<div class=\"alert\" role=\"alert\"><strong>%s</strong>", esc(msg.Message))
		if msg.Action != "" {
			p.printf("<p>%s</p>", esc(msg.Action))
		}
		p.printf("<small>Code: %s</small></div>", esc(msg.Code))
		return p.err
	}))
}

// htmlWriter keeps the first write error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (p *htmlWriter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *htmlWriter) render(ctx context.Context, c templ.Component) {
	if p.err != nil {
		return
	}
	p.err = c.Render(ctx, p.w)
}

func esc(s string) string { return templ.EscapeString(s) }

func sortMarker(s core.Settings, col int) string {
	if s.SortColumn != col {
		return ""
	}
	if s.SortAscending {
		return " ▲"
	}
	return " ▼"
}

func formatWidth(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
