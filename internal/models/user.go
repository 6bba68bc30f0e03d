package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PlaceholderName is stored when the identity provider supplies neither given nor family name.
const PlaceholderName = "New User"

// User is the local record of an identity-provider account.
type User struct {
	ID         uuid.UUID `json:"id"`
	ExternalID string    `json:"external_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Image      *string   `json:"image,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UserAttributes are the provider-owned fields overwritten on every upsert.
type UserAttributes struct {
	Email string  `json:"email" validate:"required,max=320"`
	Name  string  `json:"name" validate:"required,max=512"`
	Image *string `json:"image,omitempty" validate:"omitempty,max=2048"`
}

// DisplayName joins the non-blank given and family names with a single space,
// falling back to PlaceholderName when both are blank.
func DisplayName(first, last string) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{first, last} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return PlaceholderName
	}
	return strings.Join(parts, " ")
}
