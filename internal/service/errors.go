package service

import (
	"errors"

	"github.com/pysugar/drivelink/internal/lease"
)

// Error kinds. Handlers map them to HTTP statuses with errors.Is.
var (
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotFound         = errors.New("not found")
	ErrMemberCapReached = errors.New("member cap reached")
	ErrScanInProgress   = lease.ErrHeld
)

// Error carries a caller facing message together with its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func validationError(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func unauthorizedError(msg string) error {
	return &Error{Kind: ErrUnauthorized, Message: msg}
}

func notFoundError(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}
