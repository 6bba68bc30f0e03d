package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/benvon/finance-dashboard/internal/models"
	"github.com/benvon/finance-dashboard/internal/request"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type stubVerifier map[string]*models.SessionClaims

func (s stubVerifier) Verify(_ context.Context, token string) (*models.SessionClaims, error) {
	if c, ok := s[token]; ok {
		return c, nil
	}
	return nil, errors.New("signature invalid")
}

type fakeLookup struct {
	mu      sync.Mutex
	users   map[string]*models.User
	creates int
	err     error
}

func (f *fakeLookup) GetByExternalID(_ context.Context, externalID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[externalID]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user not found: %w", sql.ErrNoRows)
}

func (f *fakeLookup) GetOrCreate(_ context.Context, user *models.User) (*models.User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[user.ExternalID]; ok {
		return u, false, nil
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ExternalID] = user
	f.creates++
	return user, true, nil
}

func TestAuth(t *testing.T) {
	t.Parallel()

	known := &models.User{ID: uuid.New(), ExternalID: "u_known", Email: "k@x.io", Name: "Known"}
	verifier := stubVerifier{
		"known":    {Sub: "u_known"},
		"new":      {Sub: "u_new", Email: "new@x.io", FirstName: "Grace", LastName: "Hopper", ImageURL: "https://img/g.png"},
		"no-email": {Sub: "u_ghost"},
	}

	tests := []struct {
		name        string
		header      string
		wantStatus  int
		wantUser    string
		wantCreates int
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "garbled token", header: "Bearer garbage", wantStatus: http.StatusUnauthorized},
		{name: "known subject", header: "Bearer known", wantStatus: http.StatusOK, wantUser: "u_known"},
		{name: "lowercase scheme", header: "bearer known", wantStatus: http.StatusOK, wantUser: "u_known"},
		{name: "new subject with email", header: "Bearer new", wantStatus: http.StatusOK, wantUser: "u_new", wantCreates: 1},
		{name: "new subject without email", header: "Bearer no-email", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lookup := &fakeLookup{users: map[string]*models.User{known.ExternalID: known}}
			var seen *models.User
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = request.UserFromContext(r)
				if request.ClaimsFromContext(r.Context()) == nil {
					t.Error("Expected claims in context")
				}
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			Auth(verifier, lookup, zap.NewNop())(next).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantUser != "" {
				if seen == nil || seen.ExternalID != tt.wantUser {
					t.Errorf("Expected user %s in context, got %+v", tt.wantUser, seen)
				}
			} else if seen != nil {
				t.Errorf("Expected handler not to run, got user %+v", seen)
			}
			if lookup.creates != tt.wantCreates {
				t.Errorf("Expected %d creates, got %d", tt.wantCreates, lookup.creates)
			}
			if tt.wantStatus != http.StatusOK {
				var body ErrorResponse
				if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
					t.Fatalf("Failed to decode error body: %v", err)
				}
				if body.Success {
					t.Error("Expected success to be false")
				}
			}
		})
	}
}

func TestAuth_CreatesFromClaims(t *testing.T) {
	t.Parallel()

	lookup := &fakeLookup{users: map[string]*models.User{}}
	verifier := stubVerifier{"tok": {Sub: "u_new", Email: "new@x.io", LastName: "Hopper", ImageURL: "https://img/g.png"}}
	handler := Auth(verifier, lookup, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer tok")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	if lookup.creates != 1 {
		t.Fatalf("Expected exactly one create, got %d", lookup.creates)
	}
	u := lookup.users["u_new"]
	if u.Email != "new@x.io" || u.Name != "Hopper" || u.Image == nil || *u.Image != "https://img/g.png" {
		t.Errorf("Created user = %+v", u)
	}
}

func TestAuth_LookupFailure(t *testing.T) {
	t.Parallel()

	lookup := &fakeLookup{users: map[string]*models.User{}, err: errors.New("connection refused")}
	verifier := stubVerifier{"tok": {Sub: "u_1", Email: "a@x.io"}}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()

	Auth(verifier, lookup, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Expected handler not to run")
	})).ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
}
