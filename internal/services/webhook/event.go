package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/benvon/finance-dashboard/internal/models"
	"github.com/benvon/finance-dashboard/internal/validation"
)

// Event types the reconciler acts on. Anything else is acknowledged and ignored.
const (
	TypeUserCreated = "user.created"
	TypeUserUpdated = "user.updated"
	TypeUserDeleted = "user.deleted"
)

// Event is one parsed delivery. The concrete type is one of *UserUpserted,
// *UserDeleted or *Unknown.
type Event interface {
	EventType() string
	isEvent()
}

// UserUpserted is a user.created or user.updated delivery.
type UserUpserted struct {
	Type string
	User UserPayload
}

// UserDeleted is a user.deleted delivery. ExternalID may be empty.
type UserDeleted struct {
	ExternalID string
}

// Unknown is any delivery whose type is not handled.
type Unknown struct {
	Type string
}

func (e *UserUpserted) EventType() string { return e.Type }
func (e *UserDeleted) EventType() string  { return TypeUserDeleted }
func (e *Unknown) EventType() string      { return e.Type }

func (*UserUpserted) isEvent() {}
func (*UserDeleted) isEvent()  {}
func (*Unknown) isEvent()      {}

// envelope is the outer shape shared by every delivery.
type envelope struct {
	Type   string          `json:"type" validate:"required"`
	Object string          `json:"object"`
	Data   json.RawMessage `json:"data" validate:"required"`
}

// EmailAddress is one entry of a user's address list.
type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// UserPayload is the data object of user.created and user.updated.
type UserPayload struct {
	ID                    string         `json:"id" validate:"required,external_id"`
	FirstName             *string        `json:"first_name"`
	LastName              *string        `json:"last_name"`
	ImageURL              *string        `json:"image_url"`
	EmailAddresses        []EmailAddress `json:"email_addresses"`
	PrimaryEmailAddressID *string        `json:"primary_email_address_id"`
}

type deletedPayload struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// PrimaryEmail returns the address whose id matches the primary pointer,
// falling back to the first listed address. Empty means unresolved.
func (p UserPayload) PrimaryEmail() string {
	if p.PrimaryEmailAddressID != nil && *p.PrimaryEmailAddressID != "" {
		for _, e := range p.EmailAddresses {
			if e.ID == *p.PrimaryEmailAddressID && e.EmailAddress != "" {
				return e.EmailAddress
			}
		}
	}
	if len(p.EmailAddresses) > 0 {
		return p.EmailAddresses[0].EmailAddress
	}
	return ""
}

// Attributes resolves the stored fields. It returns ErrNoEmail when no
// address can be resolved.
func (p UserPayload) Attributes() (models.UserAttributes, error) {
	email := strings.TrimSpace(p.PrimaryEmail())
	if email == "" {
		return models.UserAttributes{}, ErrNoEmail
	}
	return models.UserAttributes{
		Email: email,
		Name:  models.DisplayName(deref(p.FirstName), deref(p.LastName)),
		Image: p.ImageURL,
	}, nil
}

// ParseEvent decodes a verified body into its event variant. Every failure
// wraps ErrMalformedPayload.
func ParseEvent(body []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if err := validation.Validate.Struct(env); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedPayload, strings.Join(validation.FieldErrors(err), "; "))
	}
	if !isJSONObject(env.Data) {
		return nil, fmt.Errorf("%w: data must be an object", ErrMalformedPayload)
	}

	switch env.Type {
	case TypeUserCreated, TypeUserUpdated:
		var user UserPayload
		if err := json.Unmarshal(env.Data, &user); err != nil {
			return nil, fmt.Errorf("%w: %s data: %v", ErrMalformedPayload, env.Type, err)
		}
		if err := validation.Validate.Struct(user); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedPayload, strings.Join(validation.FieldErrors(err), "; "))
		}
		return &UserUpserted{Type: env.Type, User: user}, nil
	case TypeUserDeleted:
		var deleted deletedPayload
		if err := json.Unmarshal(env.Data, &deleted); err != nil {
			return nil, fmt.Errorf("%w: %s data: %v", ErrMalformedPayload, env.Type, err)
		}
		return &UserDeleted{ExternalID: strings.TrimSpace(deleted.ID)}, nil
	default:
		return &Unknown{Type: env.Type}, nil
	}
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
