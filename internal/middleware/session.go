package middleware

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
)

type contextKey string

const userIDContextKey contextKey = "userID"

// SessionUserKey is the session key holding the anonymous user id.
const SessionUserKey = "userID"

// RequireSession rejects requests whose session has not been initialized
// via the explicit session endpoint. The session's user id is placed in the
// request context for handlers.
func RequireSession(sm *scs.SessionManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := sm.GetString(r.Context(), SessionUserKey)
		if userID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"session not initialized"}`))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID returns a context carrying the session user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext retrieves the session user id from the request context.
// Returns "" if no session is set (should not happen behind RequireSession).
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDContextKey).(string)
	return id
}
