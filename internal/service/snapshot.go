package service

import "github.com/JonMunkholm/tableview/internal/core"

// Snapshot is a read-only copy of a view's state.
type Snapshot struct {
	ID     string     `json:"id"`
	Source SourceInfo `json:"source"`
	Ref    int64      `json:"ref"`

	// TotalRows counts model rows before filtering.
	TotalRows int `json:"total_rows"`

	Headers   []string          `json:"headers"`
	Settings  core.Settings     `json:"settings"`
	Results   core.Results      `json:"results"`
	Columns   []core.ColumnItem `json:"columns"`
	Grid      []GridRow         `json:"grid"`
	Popup     core.FilterPopup  `json:"filter_popup"`
	Selection core.Selection    `json:"selection"`

	ContentWidth  float64 `json:"content_width"`
	ContentHeight float64 `json:"content_height"`
}

// GridRow is one displayed row with the text of its visible cells.
type GridRow struct {
	Kind      core.SlotKind      `json:"kind"`
	Row       int                `json:"row"`
	Heading   *core.GroupHeading `json:"heading,omitempty"`
	Collapsed bool               `json:"collapsed,omitempty"`
	Cells     []string           `json:"cells,omitempty"`
}

// snapshot copies the view state. The caller holds v.mu.
func (v *view) snapshot() *Snapshot {
	st := v.state
	m := st.Source

	snap := &Snapshot{
		ID:            v.id,
		Source:        v.source,
		Ref:           st.Ref(),
		TotalRows:     m.Rows(),
		Headers:       st.Headers(),
		Settings:      st.Settings.Clone(),
		Results:       st.Results,
		Columns:       st.ColumnItems(),
		Popup:         st.Popup,
		Selection:     st.Selection,
		ContentWidth:  st.ContentWidth,
		ContentHeight: st.ContentHeight,
	}

	snap.Grid = make([]GridRow, len(st.Results.Rows))
	for i, slot := range st.Results.Rows {
		if slot.IsHeading() {
			h := st.Results.GroupHeadings[slot.Heading]
			snap.Grid[i] = GridRow{
				Kind:      core.SlotGroupHeading,
				Row:       -1,
				Heading:   &h,
				Collapsed: st.Settings.GroupCollapsed[h.Value],
			}
			continue
		}

		cells := make([]string, len(st.Results.ColumnIndices))
		for k, j := range st.Results.ColumnIndices {
			cells[k] = m.CellText(slot.Row, j)
		}
		snap.Grid[i] = GridRow{Kind: core.SlotData, Row: slot.Row, Cells: cells}
	}

	return snap
}
