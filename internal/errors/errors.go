package errors

import (
	"errors"
)

// Common error types for the session gate
var (
	// Directory errors
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)
