package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

// RequireBearer rejects requests whose Authorization header does not carry
// the configured token. An empty configured token disables the check, which
// keeps local development friction-free; session and user mechanics live in
// the gateway, not here.
func RequireBearer(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]map[string]string{
					"error": {"code": "unauthorized", "message": "missing or invalid bearer token"},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
