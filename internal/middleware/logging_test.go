package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		method     string
		path       string
		svixID     string
		status     int
		wantSvixID string
	}{
		{name: "health", method: http.MethodGet, path: "/healthz", status: http.StatusOK},
		{name: "webhook delivery", method: http.MethodPost, path: "/api/webhooks/clerk", svixID: "msg_2abc", status: http.StatusOK, wantSvixID: "msg_2abc"},
		{name: "forged newline in svix id", method: http.MethodPost, path: "/api/webhooks/clerk", svixID: "msg_1\nlevel=error", status: http.StatusBadRequest, wantSvixID: "msg_1level=error"},
		{name: "not found", method: http.MethodGet, path: "/notfound", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zap.InfoLevel)
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.svixID != "" {
				req.Header["Svix-Id"] = []string{tt.svixID}
			}
			w := httptest.NewRecorder()
			Logging(zap.New(core))(handler).ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}

			entries := logs.FilterMessage("http_request").All()
			if len(entries) != 1 {
				t.Fatalf("Expected one http_request log, got %d", len(entries))
			}
			fields := entries[0].ContextMap()
			if got := fields["status_code"]; got != int64(tt.status) {
				t.Errorf("status_code = %v, want %d", got, tt.status)
			}
			if got := fields["path"]; got != tt.path {
				t.Errorf("path = %v, want %s", got, tt.path)
			}
			got, ok := fields["svix_id"]
			if tt.wantSvixID == "" {
				if ok {
					t.Errorf("Unexpected svix_id field %v", got)
				}
			} else if got != tt.wantSvixID {
				t.Errorf("svix_id = %q, want %q", got, tt.wantSvixID)
			}
		})
	}
}

func TestLogging_ImplicitStatus(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	Logging(zap.New(core))(handler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/version", nil))

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 || entries[0].ContextMap()["status_code"] != int64(http.StatusOK) {
		t.Errorf("Expected a 200 http_request log, got %+v", entries)
	}
}
