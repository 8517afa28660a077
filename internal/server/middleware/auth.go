package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pysugar/drivelink/internal/auth/session"
)

// BotKeyAuth validates the bot API key from the Authorization header or X-API-Key.
func BotKeyAuth(apiKey string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey != "" {
				// Check Authorization header (Bearer token)
				if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
					if keyMatches(strings.TrimPrefix(authHeader, "Bearer "), apiKey) {
						next.ServeHTTP(w, r)
						return
					}
				}

				// Check x-api-key header (alternative)
				if keyMatches(r.Header.Get("X-API-Key"), apiKey) {
					next.ServeHTTP(w, r)
					return
				}
			}

			unauthorized(w, "Invalid API key")
		})
	}
}

// SessionAuth rejects requests without a valid session cookie and stores the
// signed-in identity in the request context.
func SessionAuth(sessions *session.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := sessions.FromRequest(r)
			if err != nil {
				unauthorized(w, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(session.WithIdentity(r.Context(), id)))
		})
	}
}

func keyMatches(got, want string) bool {
	return got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{"ok": false, "error": message})
}
