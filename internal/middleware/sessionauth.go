// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/passkeep/passkeep/internal/session"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Resolver resolves a session token to an authenticated owner identity.
type Resolver interface {
	Resolve(ctx context.Context, token string) (session.Identity, error)
}

// SessionAuth enforces cookie-session authentication.
//
// It reads the signed session cookie, resolves it through the session
// authority, and stores the owner identity in the request context. A
// missing cookie, a bad signature, an expired token and a superseded
// session all get the same 401: fail closed, with no distinction an
// attacker could use.
func SessionAuth(resolver Resolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(session.CookieName)
			if err != nil {
				unauthorized(w)
				return
			}

			id, err := resolver.Resolve(r.Context(), cookie.Value)
			if err != nil {
				// A storage failure during the liveness check is not a bad
				// token; record it before answering with the same 401.
				if !errors.Is(err, session.ErrUnauthenticated) {
					logger.Error("session resolution failed", zap.Error(err))
				}
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// unauthorized writes the 401 in the same JSON error shape the API handlers
// use.
func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
}

// WithIdentity returns a context carrying the authenticated owner identity.
func WithIdentity(ctx context.Context, id session.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentityFromContext extracts the authenticated owner identity from the
// request context. The second return is false outside the SessionAuth chain.
func GetIdentityFromContext(ctx context.Context) (session.Identity, bool) {
	id, ok := ctx.Value(identityKey).(session.Identity)
	return id, ok
}
