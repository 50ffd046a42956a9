package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/tableview/internal/core"
)

// handleListSources returns every registered source.
func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Sources())
}

// handleUploadSource registers an uploaded CSV or Parquet file as a source.
// The multipart form carries "file" and an optional comma-separated "key".
func (s *Server) handleUploadSource(w http.ResponseWriter, r *http.Request) {
	maxSize := s.service.MaxUploadSize()
	if maxSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, fmt.Errorf("upload: %w", core.ErrFileTooLarge))
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: %v", core.ErrBadRequest, err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, fmt.Errorf("upload: %w", core.ErrNoFile))
		return
	}
	defer file.Close()

	info, err := s.service.AddUpload(r.Context(), header.Filename, file, splitList(r.FormValue("key")))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, info)
}

// handleListSaved returns the names of saved views.
func (s *Server) handleListSaved(w http.ResponseWriter, r *http.Request) {
	names := s.service.SavedViews(r.Context())
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}
