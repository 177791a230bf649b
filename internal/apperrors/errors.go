package apperrors

import "errors"

var (
	// ErrInvalidInput marks a user-facing validation failure. The wrapping
	// message is meant to be shown to the user as-is.
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrNoSession    = errors.New("login required")
)
