package handlers

import (
	"net/http"

	"github.com/benvon/finance-dashboard/internal/request"
	"github.com/gorilla/mux"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct{}

// NewAuthHandler creates a new auth handler
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// RegisterRoutes registers auth routes on the given router.
// The router should already have the /api/v1/auth prefix and session middleware.
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/me", h.GetMe).Methods("GET")
}

// GetMe returns the local user resolved from the session token
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	respondJSON(w, http.StatusOK, user)
}
