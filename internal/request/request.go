package request

import (
	"context"
	"net/http"
	"strings"

	"github.com/benvon/finance-dashboard/internal/models"
)

type contextKey string

const (
	userContextKey   contextKey = "user"
	claimsContextKey contextKey = "session_claims"
)

// UserContextKey returns the context key used for the user. Exposed for tests that inject non-user values.
func UserContextKey() contextKey { return userContextKey }

// ClientIP extracts the client IP from the request, respecting X-Forwarded-For and X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return r.RemoteAddr
}

// WithUser returns a context with the resolved local user attached.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the user from the request context, or nil if missing or wrong type.
func UserFromContext(r *http.Request) *models.User {
	u, _ := r.Context().Value(userContextKey).(*models.User)
	return u
}

// WithClaims returns a context with verified session claims attached.
func WithClaims(ctx context.Context, claims *models.SessionClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext returns the session claims, or nil when the request was not authenticated.
func ClaimsFromContext(ctx context.Context) *models.SessionClaims {
	c, _ := ctx.Value(claimsContextKey).(*models.SessionClaims)
	return c
}

// RateLimitKey is the key requests are counted under: the local user when
// authenticated, otherwise the client IP.
func RateLimitKey(r *http.Request) string {
	if u := UserFromContext(r); u != nil {
		return "user:" + u.ID.String()
	}
	return "ip:" + ClientIP(r)
}
