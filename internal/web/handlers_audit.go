package web

import (
	"net/http"
	"strconv"

	"github.com/JonMunkholm/tableview/internal/service"
)

const defaultAuditLimit = 100

// handleListAudit returns audit entries, newest first.
// Query parameters: source, view, action, limit.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries := s.service.Audit(service.AuditFilter{
		Source: q.Get("source"),
		ViewID: q.Get("view"),
		Action: service.AuditAction(q.Get("action")),
		Limit:  parseIntParam(r, "limit", defaultAuditLimit),
	})
	writeJSON(w, http.StatusOK, entries)
}

// parseIntParam reads a positive integer query parameter, falling back to
// defaultVal when it is missing or invalid.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
