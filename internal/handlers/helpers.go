package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/benvon/finance-dashboard/internal/logger"
)

// maxErrorMessageLength caps messages echoed to API clients.
const maxErrorMessageLength = 200

// respondJSON sends a JSON success envelope
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondJSONError sends a JSON error envelope. The message is stripped of
// control characters and truncated.
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   logger.SanitizeString(message, maxErrorMessageLength),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondText sends a short plain-text body. An empty message sends no body.
func respondText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if message != "" {
		_, _ = w.Write([]byte(message))
	}
}
