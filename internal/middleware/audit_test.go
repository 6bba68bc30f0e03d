package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAudit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		method  string
		path    string
		status  int
		wantMsg string
	}{
		{"unauthorized", http.MethodGet, "/api/v1/auth/me", http.StatusUnauthorized, "security_event"},
		{"forbidden", http.MethodGet, "/api/v1/auth/me", http.StatusForbidden, "security_event"},
		{"rate limited", http.MethodGet, "/api/v1/auth/me", http.StatusTooManyRequests, "rate_limit_violation"},
		{"webhook rejected", http.MethodPost, "/api/webhooks/clerk", http.StatusBadRequest, "webhook_rejected"},
		{"api bad request", http.MethodGet, "/api/v1/auth/me", http.StatusBadRequest, ""},
		{"ok", http.MethodGet, "/healthz", http.StatusOK, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zapcore.DebugLevel)
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			req := httptest.NewRequest(tt.method, tt.path, nil)
			Audit(zap.New(core))(next).ServeHTTP(httptest.NewRecorder(), req)

			entries := logs.All()
			if tt.wantMsg == "" {
				if len(entries) != 0 {
					t.Errorf("Expected no audit entries, got %d", len(entries))
				}
				return
			}
			if len(entries) != 1 || entries[0].Message != tt.wantMsg {
				t.Fatalf("Expected one %q entry, got %+v", tt.wantMsg, entries)
			}
			if got := entries[0].ContextMap()["status_code"]; got != int64(tt.status) {
				t.Errorf("Expected status_code %d, got %v", tt.status, got)
			}
		})
	}
}
