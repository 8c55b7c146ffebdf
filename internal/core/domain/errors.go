package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")

	ErrTokenMissing      = errors.New("no token provided")
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenInvalid      = errors.New("token is not valid")
	ErrSigningKeyMissing = errors.New("token signing key is not configured")

	ErrForbidden = errors.New("access forbidden")
)

// ValidationError carries a human-readable reason and unwraps to ErrValidation.
type ValidationError struct {
	Reason string
}

func NewValidationError(reason string) error {
	return &ValidationError{Reason: reason}
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ForbiddenError reports a role that may not reach a resource.
type ForbiddenError struct {
	Role     string
	Resource string
}

func (e *ForbiddenError) Error() string {
	role := e.Role
	if role == "" {
		role = "unknown"
	}
	return fmt.Sprintf("Role '%s' is not authorized to access this resource (%s)", role, e.Resource)
}

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }
