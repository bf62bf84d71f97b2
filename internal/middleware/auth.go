// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/kwanjau/admissions/internal/apperrors"
	"github.com/kwanjau/admissions/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "session"

// Authenticator resolves a session token to its user.
type Authenticator interface {
	// UserBySession returns the user behind the token, or
	// apperrors.ErrAuthentication when the token is missing, unknown or
	// expired.
	UserBySession(ctx context.Context, token string) (*models.User, error)
}

// SessionAuth is a middleware that enforces session authentication.
//
// The token is read from the session cookie, falling back to an
// Authorization bearer header. On success the authenticated user is stored
// in the request context for downstream handlers; otherwise the request is
// rejected with 401.
func SessionAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.UserBySession(r.Context(), SessionToken(r))
			if err != nil {
				if errors.Is(err, apperrors.ErrAuthentication) {
					writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
					return
				}
				writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
				return
			}
			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionToken extracts the session token from the request, preferring the
// session cookie over an Authorization bearer header. Returns an empty
// string when neither is present.
func SessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	bearer := r.Header.Get("Authorization")
	if len(bearer) > 7 && strings.EqualFold(bearer[:7], "Bearer ") {
		return strings.TrimSpace(bearer[7:])
	}
	return ""
}

// GetUserFromContext extracts the authenticated user from the request
// context. Returns nil if not found.
func GetUserFromContext(ctx context.Context) *models.User {
	if user, ok := ctx.Value(userKey).(*models.User); ok {
		return user
	}
	return nil
}

// WithUser returns a copy of ctx carrying the user, for tests and internal
// callers.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
