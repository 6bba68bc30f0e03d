package middleware

import (
	"net/http"
	"time"
)

// DefaultRequestTimeout is the default request timeout (30 seconds)
const DefaultRequestTimeout = 30 * time.Second

// Timeout bounds handler time. The request context is cancelled at the
// deadline, which aborts in-flight queries; the client gets a 503.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, "Request Timeout")
	}
}
