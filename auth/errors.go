package auth

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// User facing messages.
const (
	MsgUsernameTaken = "Username already exists."
	MsgEmailTaken    = "Email taken already"
	MsgInvalidLogin  = "Invalid Login Details!"
)

// ErrAuthenticationFailure is returned by Login for an unknown username and
// for a wrong password alike.
var ErrAuthenticationFailure = errors.New("invalid login details")

// FieldErrors maps a form field name to its validation message.
type FieldErrors map[string]string

// ValidationError reports malformed or missing registration input.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid input: " + strings.Join(names, ", ")
}

// ConflictError reports a username or email that is already registered.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Field, e.Message)
}

// SystemFault wraps an unexpected backend failure. Its detail is for logs only.
type SystemFault struct {
	Op  string
	Err error
}

func (e *SystemFault) Error() string {
	return fmt.Sprintf("system fault during %s: %v", e.Op, e.Err)
}

func (e *SystemFault) Unwrap() error {
	return e.Err
}

func fault(op string, err error) error {
	return &SystemFault{Op: op, Err: err}
}
