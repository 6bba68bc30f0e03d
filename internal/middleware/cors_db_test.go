package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benvon/finance-dashboard/internal/models"
	"go.uber.org/zap"
)

type stubCorsStore struct {
	cfg *models.CorsConfig
	err error
}

func (s *stubCorsStore) Get(context.Context) (*models.CorsConfig, error) {
	return s.cfg, s.err
}

func preflight(h http.Handler, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/auth/me", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCORSReloader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		store     *stubCorsStore
		fallback  string
		origin    string
		wantAllow bool
	}{
		{
			name:      "stored origin allowed",
			store:     &stubCorsStore{cfg: &models.CorsConfig{AllowedOrigins: "https://app.example.com", AllowCredentials: true, MaxAge: 600}},
			fallback:  "http://localhost:3000",
			origin:    "https://app.example.com",
			wantAllow: true,
		},
		{
			name:     "fallback ignored when row exists",
			store:    &stubCorsStore{cfg: &models.CorsConfig{AllowedOrigins: "https://app.example.com"}},
			fallback: "http://localhost:3000",
			origin:   "http://localhost:3000",
		},
		{
			name:      "no row uses frontend url",
			store:     &stubCorsStore{},
			fallback:  "https://dash.example.com, https://other.example.com",
			origin:    "https://other.example.com",
			wantAllow: true,
		},
		{
			name:      "store error uses frontend url",
			store:     &stubCorsStore{err: errors.New("db down")},
			fallback:  "https://dash.example.com",
			origin:    "https://dash.example.com",
			wantAllow: true,
		},
		{
			name:      "nothing configured uses localhost",
			store:     &stubCorsStore{},
			origin:    defaultFrontendOrigin,
			wantAllow: true,
		},
		{
			name:     "unknown origin refused",
			store:    &stubCorsStore{},
			fallback: "https://dash.example.com",
			origin:   "https://evil.example.com",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reloader := NewCORSReloader(tt.store, tt.fallback, zap.NewNop(), 0)
			h := reloader.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			w := preflight(h, tt.origin)
			got := w.Header().Get("Access-Control-Allow-Origin")
			if tt.wantAllow && got != tt.origin {
				t.Errorf("Expected Access-Control-Allow-Origin %q, got %q", tt.origin, got)
			}
			if !tt.wantAllow && got != "" {
				t.Errorf("Expected no Access-Control-Allow-Origin, got %q", got)
			}
		})
	}
}

func TestCORSReloader_Reload(t *testing.T) {
	t.Parallel()

	store := &stubCorsStore{cfg: &models.CorsConfig{AllowedOrigins: "https://a.example.com"}}
	reloader := NewCORSReloader(store, "", zap.NewNop(), 0)
	h := reloader.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	if got := preflight(h, "https://b.example.com").Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("Expected b.example.com to be refused before reload, got %q", got)
	}

	store.cfg = &models.CorsConfig{AllowedOrigins: "https://b.example.com"}
	reloader.load(context.Background())

	if got := preflight(h, "https://b.example.com").Header().Get("Access-Control-Allow-Origin"); got != "https://b.example.com" {
		t.Errorf("Expected b.example.com to be allowed after reload, got %q", got)
	}
}
