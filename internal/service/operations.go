package service

import (
	"context"
	"fmt"
	"io"

	"github.com/JonMunkholm/tableview/internal/core"
	"github.com/JonMunkholm/tableview/internal/export"
)

// checkColumn rejects column indices outside the current schema.
func checkColumn(st *core.State, col int) error {
	if col < 0 || col >= len(st.Headers()) {
		return fmt.Errorf("column %d: %w", col, core.ErrUnknownColumn)
	}
	return nil
}

func checkRow(st *core.State, row int) error {
	if row < 0 || row >= st.Source.Rows() {
		return fmt.Errorf("row %d: %w", row, core.ErrInvalidRow)
	}
	return nil
}

// ToggleSort sorts by a column, or removes the sort if it is already
// sorted in that direction.
func (s *Service) ToggleSort(ctx context.Context, id string, col int, ascending bool) (*Snapshot, error) {
	return s.Do(ctx, id, func(st *core.State) error {
		if err := checkColumn(st, col); err != nil {
			return err
		}
		st.ToggleSort(col, ascending)
		return nil
	})
}

// SetNaturalSort switches alphanumeric sorting on or off.
func (s *Service) SetNaturalSort(ctx context.Context, id string, natural bool) (*Snapshot, error) {
	return s.Do(ctx, id, func(st *core.State) error {
		st.SetNaturalSort(natural)
		return nil
	})
}

// ToggleGroup groups by a column, or ungroups it.
func (s *Service) ToggleGroup(ctx context.Context, id string, col int) (*Snapshot, error) {
	return s.Do(ctx, id, func(st *core.State) error {
		if err := checkColumn(st, col); err != nil {
			return err
		}
		st.ToggleGroup(col)
		return nil
	})
}

// ResetGrouping removes grouping.
func (s *Service) ResetGrouping(ctx context.Context, id string) (*Snapshot, error) {
	return s.Do(ctx, id, func(st *core.State) error {
		st.ResetGrouping()
		return nil
	})
}

// ToggleGroupCollapsed collapses or expands a group by value.
func (s *Service) ToggleGroupCollapsed(ctx context.Context, id, value string) (*Snapshot, error) {
	return s.Do(ctx, id, func(st *core.State) error {
		st.ToggleGroupCollapsed(value)
		return nil
	})
}

// OpenFilter opens the filter popup of a column.
func (s *Service) OpenFilter(ctx context.Context, id string, col int) (*Snapshot, error) {
	return s.Do(ctx, id, func(st *core.State) error {
		if err := checkColumn(st, col); err != nil {
			return err
		}
		st.OpenFilter(col)
		return nil
	})
}

// CloseFilter closes the filter popup.
func (s *Service) CloseFilter(ctx context.Context, id string) (*Snapshot, error) {
	return s.Do(ctx, id, func(st *core.State) error {
		st.CloseFilter()
		return nil
	})
}

// ToggleFilterValue toggles a value in the open filter popup.
func (s *Service) ToggleFilterValue(ctx context.Context, id, value string) (*Snapshot, error) {
	return s.Do(ctx, id, func(st *core.State) error {
		st.ToggleFilterValue(value)
		return nil
	})
}

// ToggleFilterSelectAll flips the open popup's filter on or off.
func (s *Service) ToggleFilterSelectAll(ctx context.Context, id string) (*Snapshot, error) {
	return s.Do(ctx, id, func(st *core.State) error {
		st.ToggleFilterSelectAll()
		return nil
	})
}

// ClearFilter disables a column's filter.
func (s *Service) ClearFilter(ctx context.Context, id string, col int) (*Snapshot, error) {
	return s.Do(ctx, id, func(st *core.State) error {
		if err := checkColumn(st, col); err != nil {
			return err
		}
		st.ClearFilter(col)
		return nil
	})
}

// SetColumnEnabled shows or hides the column at a display position.
func (s *Service) SetColumnEnabled(ctx context.Context, id string, index int, enabled bool) (*Snapshot, error) {
	return s.Do(ctx, id, func(st *core.State) error {
		if err := checkColumn(st, index); err != nil {
			return err
		}
		st.SetColumnEnabled(index, enabled)
		return nil
	})
}

// ReorderColumn moves a column between display positions.
func (s *Service) ReorderColumn(ctx context.Context, id string, from, to int) (*Snapshot, error) {
	return s.Do(ctx, id, func(st *core.State) error {
		if err := checkColumn(st, from); err != nil {
			return err
		}
		if to < 0 || to > len(st.Headers()) {
			return fmt.Errorf("position %d: %w", to, core.ErrUnknownColumn)
		}
		st.ReorderColumn(from, to)
		return nil
	})
}

// ResizeColumn sets a column's width.
func (s *Service) ResizeColumn(ctx context.Context, id string, col int, width float64) (*Snapshot, error) {
	return s.Do(ctx, id, func(st *core.State) error {
		if err := checkColumn(st, col); err != nil {
			return err
		}
		st.ResizeColumn(col, width)
		return nil
	})
}

// Select selects a cell by model row and column.
func (s *Service) Select(ctx context.Context, id string, row, col int) (*Snapshot, error) {
	return s.Do(ctx, id, func(st *core.State) error {
		if err := checkRow(st, row); err != nil {
			return err
		}
		if err := checkColumn(st, col); err != nil {
			return err
		}
		st.SetSelection(row, col)
		st.RefreshResults()
		return nil
	})
}

// ClearSelection removes the selection.
func (s *Service) ClearSelection(ctx context.Context, id string) (*Snapshot, error) {
	return s.Do(ctx, id, func(st *core.State) error {
		st.ClearSelection()
		return nil
	})
}

// EditCell writes a cell through the view's model and audits the change.
func (s *Service) EditCell(ctx context.Context, id string, row, col int, text string) (*Snapshot, error) {
	var entry AuditEntry
	changed := false

	snap, err := s.Do(ctx, id, func(st *core.State) error {
		if err := checkRow(st, row); err != nil {
			return err
		}
		if err := checkColumn(st, col); err != nil {
			return err
		}

		m := st.Source
		entry = AuditEntry{
			Action:   ActionCellEdit,
			ViewID:   id,
			RowKey:   core.RowKey(m, row),
			Row:      row,
			Column:   m.HeaderText(col),
			OldValue: m.CellText(row, col),
			NewValue: text,
		}
		changed = st.CommitEdit(row, col, text)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		entry.Source = snap.Source.Key
		s.audit.Record(ctx, entry)
	}
	return snap, nil
}

// ExportFormat selects the export encoding.
type ExportFormat string

const (
	ExportCSV     ExportFormat = "csv"
	ExportParquet ExportFormat = "parquet"
)

// Export writes the view's visible rows and columns to w.
func (s *Service) Export(ctx context.Context, id string, format ExportFormat, w io.Writer) error {
	_, err := s.Do(ctx, id, func(st *core.State) error {
		switch format {
		case ExportParquet:
			return export.WriteParquet(w, st.Source, st.Results)
		case ExportCSV, "":
			return export.WriteCSV(w, st.Source, st.Results)
		default:
			return fmt.Errorf("export %q: %w", format, core.ErrUnsupportedFormat)
		}
	})
	return err
}
