package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/clientiq-crm/bff/internal/session"
)

type contextKey string

const profileKey contextKey = "profile"

// RequireSession rejects requests without a valid session cookie and puts
// the profile snapshot on the request context for handlers.
func RequireSession(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profile, err := session.FromRequest(r, secret)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
				return
			}

			ctx := context.WithValue(r.Context(), profileKey, profile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ProfileFromContext returns the session profile, or nil outside a session.
func ProfileFromContext(ctx context.Context) *session.Profile {
	profile, _ := ctx.Value(profileKey).(*session.Profile)
	return profile
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
