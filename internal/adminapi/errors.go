package adminapi

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means the session is missing or was rejected. The
	// session has already been invalidated when this is returned.
	ErrUnauthenticated = errors.New("Session expired")
	// ErrForbidden means the token is valid but lacks the admin role.
	ErrForbidden = errors.New("Admin access required")
)

// NotFoundError is returned when an entity-scoped lookup answers 404.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// RequestError is any other failed call. Message is the backend's own
// explanation when it sent one, otherwise the per-operation fallback.
type RequestError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
