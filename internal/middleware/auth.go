// Package middleware provides HTTP middlewares for authentication, request
// logging and metrics.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/atinyakov/GophTube/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// AccessCookie is the cookie carrying the access token.
const AccessCookie = "accessToken"

// Authenticator resolves an access token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (models.User, error)
}

// Auth is a middleware that requires a valid access token.
//
// The token is read from the accessToken cookie, falling back to an
// "Authorization: Bearer" header. On success the user is stored in the
// request context; otherwise the request is answered with a 401 envelope.
func Auth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.Authenticate(r.Context(), AccessToken(r))
			if err != nil {
				writeUnauthorized(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// AccessToken extracts the access token of r, or "".
func AccessToken(r *http.Request) string {
	if c, err := r.Cookie(AccessCookie); err == nil && c.Value != "" {
		return c.Value
	}
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated user stored by Auth.
func UserFromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey).(models.User)
	return u, ok
}

// GetUserIDFromContext extracts the authenticated user id from the request
// context. Returns an empty string if not found.
func GetUserIDFromContext(ctx context.Context) string {
	u, _ := UserFromContext(ctx)
	return u.ID
}

func writeUnauthorized(w http.ResponseWriter, err error) {
	msg := "Unauthorized request"
	var public interface{ PublicMessage() string }
	if errors.As(err, &public) {
		msg = public.PublicMessage()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(models.Envelope[any]{
		StatusCode: http.StatusUnauthorized,
		Message:    msg,
	})
}
