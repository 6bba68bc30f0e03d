package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	logpkg "github.com/benvon/finance-dashboard/internal/logger"
	"go.uber.org/zap"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Path      string `json:"path"`
}

// ErrorHandler recovers panics into a 500. Webhook deliveries get plain
// text so the provider treats the failure as retryable; everything else gets
// the JSON error envelope.
func ErrorHandler(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("panic_recovered",
					zap.String("error", logpkg.SanitizeString(fmt.Sprint(rec), logpkg.MaxErrorMessageLength)),
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.String("method", r.Method),
					zap.Stack("stack"),
				)
				if strings.HasPrefix(r.URL.Path, webhookPathPrefix) {
					w.Header().Set("Content-Type", "text/plain; charset=utf-8")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte("internal error"))
					return
				}
				respondErrorJSON(w, r, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred", logger)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// respondErrorJSON sends an error JSON response
func respondErrorJSON(w http.ResponseWriter, r *http.Request, status int, errorType, message string, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := ErrorResponse{
		Success:   false,
		Error:     errorType,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      logpkg.SanitizePath(r.URL.Path),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("failed_to_encode_error_response",
			zap.Error(err),
			zap.Int("status_code", status),
			zap.String("path", logpkg.SanitizePath(r.URL.Path)),
		)
	}
}
