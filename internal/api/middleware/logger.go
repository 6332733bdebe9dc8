package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// RequestLogger attaches the logger to the request context, tags every
// request with an id, and writes one access log line per request.
func RequestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		h := hlog.NewHandler(log)
		access := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Msg("request")
		})
		requestID := func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id := r.Header.Get("X-Request-ID")
				if id == "" {
					id = uuid.NewString()
				}
				ctx := hlog.FromRequest(r).With().Str("request_id", id).Logger().WithContext(r.Context())
				w.Header().Set("X-Request-ID", id)
				next.ServeHTTP(w, r.WithContext(ctx))
			})
		}
		return h(requestID(access(next)))
	}
}
