package users

import (
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/go-chat-gate/internal/errors"
)

// Field names reported by ConflictError.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
)

type User struct {
	ID            string    `json:"id,omitempty"`          // Unique identifier for the user
	FirstName     string    `json:"first_name,omitempty"`  // First name of the user
	LastName      string    `json:"last_name,omitempty"`   // Last name of the user
	Username      string    `json:"username,omitempty"`    // Unique, case-sensitive username
	Email         string    `json:"email,omitempty"`       // Unique, lower-cased email address
	PasswordHash  string    `json:"-"`                     // Hashed version of the user's password - never serialize
	TermsAccepted bool      `json:"terms_accepted"`        // Terms of service accepted at sign up
	DateJoined    time.Time `json:"date_joined,omitempty"` // Date and time when the user registered
}

// DisplayName prefers the full name and falls back to the username.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Username
}

// ConflictError reports which uniqueness constraint a Create violated.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, apperrors.ErrConflict.Error())
}

func (e *ConflictError) Unwrap() error {
	return apperrors.ErrConflict
}
