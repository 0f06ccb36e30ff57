package models

import "errors"

// Business-rule error kinds. Services wrap these with %w and handlers map
// them to HTTP status codes with errors.Is.
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotFound         = errors.New("not found")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflictingState = errors.New("conflicting state")

	// ErrStorage marks persistence failures from the backing store. An
	// operation that returns it must not have applied partial side effects.
	ErrStorage = errors.New("storage failure")
)
