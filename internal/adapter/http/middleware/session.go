package middleware

import (
	"net/http"

	"github.com/ridermi/rider-agent/internal/domain/models"
)

// RequireSession allows a request through only while a rider is signed in. The
// rider's uid is attached to the request context for handlers that need it.
func (h *Middleware) RequireSession(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rider, ok := h.sessions.Current()
		if !ok {
			errorResponse(w, http.StatusUnauthorized, "sign in required")
			return
		}

		next.ServeHTTP(w, r.WithContext(models.WithRider(r.Context(), rider)))
	})
}
