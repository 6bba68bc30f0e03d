package webhook

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingSecret means no signing secret was configured. The handler
	// must not be built without one.
	ErrMissingSecret = errors.New("webhook signing secret is not configured")
	// ErrInvalidSecret means the configured secret is not a valid whsec_ value.
	ErrInvalidSecret = errors.New("webhook signing secret is invalid")
	// ErrMissingHeaders means one of the svix-id, svix-timestamp or svix-signature headers is absent.
	ErrMissingHeaders = errors.New("missing webhook correlation headers")
	// ErrInvalidSignature means the body did not verify against the secret and headers.
	ErrInvalidSignature = errors.New("webhook signature verification failed")
	// ErrMalformedPayload means the verified body is not a usable event.
	ErrMalformedPayload = errors.New("malformed webhook payload")
	// ErrNoEmail means a create/update event carried no resolvable email address.
	ErrNoEmail = errors.New("user has no email address")
)

// PersistenceError wraps a store failure with the operation and subject id
// that triggered it.
type PersistenceError struct {
	Op         string
	ExternalID string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("webhook %s for %s: %v", e.Op, e.ExternalID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistenceError reports whether err is or wraps a *PersistenceError.
func IsPersistenceError(err error) bool {
	var perr *PersistenceError
	return errors.As(err, &perr)
}
