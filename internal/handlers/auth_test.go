package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benvon/finance-dashboard/internal/models"
	"github.com/benvon/finance-dashboard/internal/request"
	"github.com/google/uuid"
)

func TestAuthHandler_GetMe(t *testing.T) {
	t.Parallel()

	h := NewAuthHandler()

	t.Run("no user", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		h.GetMe(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})

	t.Run("user in context", func(t *testing.T) {
		t.Parallel()
		user := &models.User{ID: uuid.New(), ExternalID: "u_1", Email: "ada@x.io", Name: "Ada Lovelace"}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req = req.WithContext(request.WithUser(req.Context(), user))
		w := httptest.NewRecorder()
		h.GetMe(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		var body struct {
			Success bool        `json:"success"`
			Data    models.User `json:"data"`
		}
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if !body.Success || body.Data.ExternalID != "u_1" || body.Data.Email != "ada@x.io" {
			t.Errorf("Unexpected body: %+v", body)
		}
	})
}
