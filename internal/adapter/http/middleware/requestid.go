package middleware

import (
	"net/http"

	wrap "github.com/ridermi/rider-agent/pkg/logger/wrapper"
	"github.com/ridermi/rider-agent/pkg/uuid"
)

const requestIDHeader = "X-Request-Id"

// RequestID injects a request id into the log context, honoring one supplied by
// the caller so a front-end can correlate its own traces.
func (a *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			if generated, err := uuid.New(); err == nil {
				id = generated.String()
			}
		}

		w.Header().Set(requestIDHeader, id)
		ctx := wrap.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
