package web

import (
	"net/http"

	"github.com/JonMunkholm/tableview/internal/service"
)

// auditClient adds the client address and User-Agent to the request context
// so audited operations record who made them. RemoteAddr has already been
// rewritten by TrustedRealIP when the request came through a trusted proxy.
func auditClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := service.WithClient(r.Context(), r.RemoteAddr, r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
