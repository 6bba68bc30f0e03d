package middleware

import (
	"net/http"
	"strings"
)

// DefaultMaxRequestSize is the default maximum request body size (1MB)
const DefaultMaxRequestSize int64 = 1 << 20

// MaxRequestSize limits request bodies. A declared Content-Length over the
// limit is refused before the handler runs: 413, or 400 for webhook
// deliveries, whose sender only distinguishes 2xx, 4xx and 5xx.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				if strings.HasPrefix(r.URL.Path, webhookPathPrefix) {
					http.Error(w, "payload too large", http.StatusBadRequest)
					return
				}
				http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
