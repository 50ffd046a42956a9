// Package web provides the HTTP server for table views.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/tableview/internal/config"
	"github.com/JonMunkholm/tableview/internal/service"
	mw "github.com/JonMunkholm/tableview/internal/web/middleware"
)

// Server is the HTTP server for the table view API and pages.
type Server struct {
	service *service.Service
	cfg     config.ServerConfig
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a server backed by svc.
func NewServer(svc *service.Service, cfg config.ServerConfig) *Server {
	s := &Server{
		service: svc,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	if len(s.cfg.TrustedProxies) > 0 {
		s.router.Use(mw.TrustedRealIP(s.cfg.TrustedProxies))
	}
	s.router.Use(mw.Logger)
	s.router.Use(auditClient)
	s.router.Use(middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes() {
	s.router.Get("/views/{viewID}", s.handleViewPage)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/sources", s.handleListSources)
		r.Post("/sources", s.handleUploadSource)

		r.Get("/saved", s.handleListSaved)
		r.Get("/audit", s.handleListAudit)

		r.Get("/views", s.handleListViews)
		r.Post("/views", s.handleOpenView)

		r.Route("/views/{viewID}", func(r chi.Router) {
			r.Get("/", s.handleSnapshot)
			r.Delete("/", s.handleCloseView)

			r.Post("/sort", s.handleSort)
			r.Post("/natural", s.handleNaturalSort)

			r.Post("/group", s.handleGroup)
			r.Delete("/group", s.handleResetGrouping)
			r.Post("/groups/collapse", s.handleCollapse)

			r.Post("/filter/open", s.handleOpenFilter)
			r.Post("/filter/close", s.handleCloseFilter)
			r.Post("/filter/toggle", s.handleToggleFilter)
			r.Post("/filter/clear", s.handleClearFilter)

			r.Post("/columns/enabled", s.handleColumnEnabled)
			r.Post("/columns/reorder", s.handleReorderColumn)
			r.Post("/columns/resize", s.handleResizeColumn)

			r.Post("/selection", s.handleSelect)
			r.Delete("/selection", s.handleClearSelection)
			r.Post("/cells", s.handleEditCell)

			r.Get("/export", s.handleExport)

			r.Post("/save", s.handleSaveView)
			r.Post("/load", s.handleLoadView)
		})
	})
}

// Start listens for HTTP requests until Shutdown, returning
// http.ErrServerClosed after a graceful stop.
func (s *Server) Start() error {
	slog.Info("server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON and writes it to w.
// Encoding errors are only logged since the status line is already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
