package middleware

import (
	"net/http"
	"strings"

	logpkg "github.com/benvon/finance-dashboard/internal/logger"
	"github.com/benvon/finance-dashboard/internal/request"
	"go.uber.org/zap"
)

// webhookPathPrefix marks inbound provider deliveries for audit purposes.
const webhookPathPrefix = "/api/webhooks/"

// Audit logs security-related events for monitoring
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &auditResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			statusCode := wrapped.statusCode
			fields := func() []zap.Field {
				return []zap.Field{
					zap.Int("status_code", statusCode),
					zap.String("method", r.Method),
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.String("ip", logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxGeneralStringLength)),
				}
			}

			switch {
			case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
				logger.Warn("security_event", fields()...)
			case statusCode == http.StatusTooManyRequests:
				logger.Warn("rate_limit_violation", fields()...)
			case statusCode == http.StatusBadRequest && strings.HasPrefix(r.URL.Path, webhookPathPrefix):
				logger.Warn("webhook_rejected", fields()...)
			}
		})
	}
}

// auditResponseWriter wraps http.ResponseWriter to capture status code
type auditResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (aw *auditResponseWriter) WriteHeader(code int) {
	aw.statusCode = code
	aw.ResponseWriter.WriteHeader(code)
}
