package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/tableview/internal/core"
	"github.com/JonMunkholm/tableview/internal/logging"
	"github.com/JonMunkholm/tableview/internal/service"
)

// handleListViews returns the open views.
func (s *Server) handleListViews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Views())
}

// handleOpenView opens a view of a source.
func (s *Server) handleOpenView(w http.ResponseWriter, r *http.Request) {
	var req openViewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	snap, err := s.service.OpenView(r.Context(), req.Source)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// handleSnapshot returns the current view state.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Snapshot(r.Context(), viewID(r))
	s.respondSnapshot(w, r, snap, err)
}

// handleCloseView closes a view.
func (s *Server) handleCloseView(w http.ResponseWriter, r *http.Request) {
	if err := s.service.CloseView(r.Context(), viewID(r)); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExport downloads the visible rows and columns. The format query
// parameter selects csv (default) or parquet.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := viewID(r)
	format := service.ExportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = service.ExportCSV
	}

	var buf bytes.Buffer
	if err := s.service.Export(r.Context(), id, format, &buf); err != nil {
		s.respondError(w, r, err)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if format == service.ExportParquet {
		contentType = "application/vnd.apache.parquet"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "view-"+id+"."+string(format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

// handleSaveView stores the view settings under a name.
func (s *Server) handleSaveView(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.Name == "" {
		s.respondError(w, r, fmt.Errorf("%w: name is required", core.ErrBadRequest))
		return
	}

	if err := s.service.SaveView(r.Context(), viewID(r), req.Name); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLoadView applies settings saved under a name.
func (s *Server) handleLoadView(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	snap, err := s.service.LoadView(r.Context(), viewID(r), req.Name)
	s.respondSnapshot(w, r, snap, err)
}

// handleViewPage renders the view as a read-only HTML table.
func (s *Server) handleViewPage(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Snapshot(r.Context(), viewID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := viewPage(snap).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render view page", "view_id", snap.ID, "error", err)
	}
}

func (s *Server) respondSnapshot(w http.ResponseWriter, r *http.Request, snap *service.Snapshot, err error) {
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
