package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when an operation needs an authenticated
	// actor and none is attached.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden is returned when the actor lacks the role an operation needs.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials is returned by Authenticate for an unknown user
	// or a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// NotFoundError names the kind of entity that could not be found.
type NotFoundError struct {
	Kind string
}

func (e *NotFoundError) Error() string {
	return e.Kind + " not found"
}

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func notFound(kind string) error {
	return &NotFoundError{Kind: kind}
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
