package middleware

import (
	"net/http"
	"time"

	logpkg "github.com/benvon/finance-dashboard/internal/logger"
	"go.uber.org/zap"
)

// Logging creates request logging middleware
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.Int("status_code", wrapped.statusCode),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			}
			if id := r.Header.Get("svix-id"); id != "" {
				fields = append(fields, zap.String("svix_id", logpkg.SanitizeString(id, logpkg.MaxUserIDLength)))
			}
			logger.Info("http_request", fields...)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
