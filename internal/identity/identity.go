// ABOUTME: Resolves the signed-in user for a request from a session token
// ABOUTME: Bearer header or cookie lookup, stored in the request context
package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/harper/nutricoach/internal/storage"
	"go.uber.org/zap"
)

const (
	// SessionCookieName carries the session token for browser clients
	SessionCookieName = "nutricoach_session"

	bearerPrefix = "Bearer "
)

type contextKey int

const userIDKey contextKey = iota

// SessionLookup resolves a token to its session
type SessionLookup interface {
	LookupSession(ctx context.Context, token string) (*storage.Session, error)
}

// UserIDFromContext extracts the user ID from the request context.
// Empty means the request is not signed in.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// WithUserID returns a context carrying userID
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// TokenFromRequest returns the bearer token, falling back to the session cookie
func TokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(auth, bearerPrefix))
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

// Middleware attaches the session's user ID to the request context.
// Requests without a valid session pass through with no user ID; handlers decide.
func Middleware(sessions SessionLookup, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := sessions.LookupSession(r.Context(), token)
			if err != nil {
				if !errors.Is(err, storage.ErrNotFound) {
					logger.Warn("session lookup failed", zap.Error(err))
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), session.UserID)))
		})
	}
}
