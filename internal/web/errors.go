package web

// errors.go renders error responses.
//
// The technical error is logged with the request ID, the client gets the
// message, action and code from core.MapError. The HTTP status comes from the
// sentinel the error wraps.

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/tableview/internal/core"
	"github.com/JonMunkholm/tableview/internal/service"
)

// ErrorResponse is the JSON body of API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor maps a service error to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrViewNotFound),
		errors.Is(err, core.ErrSourceNotFound),
		errors.Is(err, core.ErrSettingsNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrSourceExists),
		errors.Is(err, core.ErrReadOnly),
		errors.Is(err, core.ErrSchemaMismatch):
		return http.StatusConflict
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyViews):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrUnknownColumn),
		errors.Is(err, core.ErrInvalidRow),
		errors.Is(err, core.ErrEmptyFile),
		errors.Is(err, core.ErrNoHeaders),
		errors.Is(err, core.ErrRowWidth),
		errors.Is(err, core.ErrUnsupportedFormat),
		errors.Is(err, core.ErrNoFile),
		errors.Is(err, core.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes a user-facing error response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := statusFor(err)
	userMsg := core.MapError(err)

	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	if wantsJSON(r) {
		writeJSON(w, statusCode, ErrorResponse{
			Error:   userMsg.Message,
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := errorAlert(userMsg).Render(r.Context(), w); err != nil {
		slog.Error("render error page", "error", err)
	}
}

// wantsJSON reports whether the client expects a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
