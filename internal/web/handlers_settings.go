package web

import (
	"net/http"

	"github.com/JonMunkholm/tableview/internal/service"
)

// handleSort toggles sorting on a column.
func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	snap, err := s.service.ToggleSort(r.Context(), viewID(r), req.Column, req.Ascending)
	s.respondSnapshot(w, r, snap, err)
}

func (s *Server) handleNaturalSort(w http.ResponseWriter, r *http.Request) {
	var req naturalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	snap, err := s.service.SetNaturalSort(r.Context(), viewID(r), req.Enabled)
	s.respondSnapshot(w, r, snap, err)
}

// handleGroup toggles grouping by a column.
func (s *Server) handleGroup(w http.ResponseWriter, r *http.Request) {
	var req columnRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	snap, err := s.service.ToggleGroup(r.Context(), viewID(r), req.Column)
	s.respondSnapshot(w, r, snap, err)
}

func (s *Server) handleResetGrouping(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.ResetGrouping(r.Context(), viewID(r))
	s.respondSnapshot(w, r, snap, err)
}

// handleCollapse collapses or expands one group.
func (s *Server) handleCollapse(w http.ResponseWriter, r *http.Request) {
	var req valueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	snap, err := s.service.ToggleGroupCollapsed(r.Context(), viewID(r), req.Value)
	s.respondSnapshot(w, r, snap, err)
}

func (s *Server) handleOpenFilter(w http.ResponseWriter, r *http.Request) {
	var req columnRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	snap, err := s.service.OpenFilter(r.Context(), viewID(r), req.Column)
	s.respondSnapshot(w, r, snap, err)
}

func (s *Server) handleCloseFilter(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.CloseFilter(r.Context(), viewID(r))
	s.respondSnapshot(w, r, snap, err)
}

// handleToggleFilter toggles one value of the open filter popup, or the
// whole filter when "all" is set.
func (s *Server) handleToggleFilter(w http.ResponseWriter, r *http.Request) {
	var req filterToggleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	var (
		snap *service.Snapshot
		err  error
	)
	if req.All {
		snap, err = s.service.ToggleFilterSelectAll(r.Context(), viewID(r))
	} else {
		snap, err = s.service.ToggleFilterValue(r.Context(), viewID(r), req.Value)
	}
	s.respondSnapshot(w, r, snap, err)
}

func (s *Server) handleClearFilter(w http.ResponseWriter, r *http.Request) {
	var req columnRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	snap, err := s.service.ClearFilter(r.Context(), viewID(r), req.Column)
	s.respondSnapshot(w, r, snap, err)
}

// handleColumnEnabled shows or hides a column by display position.
func (s *Server) handleColumnEnabled(w http.ResponseWriter, r *http.Request) {
	var req columnEnabledRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	snap, err := s.service.SetColumnEnabled(r.Context(), viewID(r), req.Index, req.Enabled)
	s.respondSnapshot(w, r, snap, err)
}

func (s *Server) handleReorderColumn(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	snap, err := s.service.ReorderColumn(r.Context(), viewID(r), req.From, req.To)
	s.respondSnapshot(w, r, snap, err)
}

func (s *Server) handleResizeColumn(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	snap, err := s.service.ResizeColumn(r.Context(), viewID(r), req.Column, req.Width)
	s.respondSnapshot(w, r, snap, err)
}

// handleSelect selects a cell by model row and column.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req cellRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	snap, err := s.service.Select(r.Context(), viewID(r), req.Row, req.Column)
	s.respondSnapshot(w, r, snap, err)
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.ClearSelection(r.Context(), viewID(r))
	s.respondSnapshot(w, r, snap, err)
}

// handleEditCell commits a cell edit.
func (s *Server) handleEditCell(w http.ResponseWriter, r *http.Request) {
	var req cellRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	snap, err := s.service.EditCell(r.Context(), viewID(r), req.Row, req.Column, req.Text)
	s.respondSnapshot(w, r, snap, err)
}
