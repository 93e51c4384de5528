package auth

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Form field names, shared with the sign-up template.
const (
	FieldFirstName = "firstname"
	FieldLastName  = "lastname"
	FieldUsername  = "username"
	FieldEmail     = "email"
	FieldPassword  = "password"
	FieldTerms     = "tos"
)

const (
	maxNameLength     = 64
	maxEmailLength    = 254
	maxPasswordLength = 72 // bcrypt only reads the first 72 bytes
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,32}$`)

// RegistrationInput is the submitted sign-up form.
type RegistrationInput struct {
	FirstName     string
	LastName      string
	Username      string
	Email         string
	Password      string
	TermsAccepted bool
}

// Normalize trims names and username and lower-cases the email. The password is left untouched.
func (in RegistrationInput) Normalize() RegistrationInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	return in
}

// Validate checks every field and reports all failures together.
func (in RegistrationInput) Validate() error {
	fields := FieldErrors{}

	validateName(fields, FieldFirstName, "First name", in.FirstName)
	validateName(fields, FieldLastName, "Last name", in.LastName)

	switch {
	case in.Username == "":
		fields[FieldUsername] = "Username is required"
	case !usernamePattern.MatchString(in.Username):
		fields[FieldUsername] = "Username must be 3-32 letters, digits, '.', '_' or '-'"
	}

	switch {
	case in.Email == "":
		fields[FieldEmail] = "Email is required"
	case len(in.Email) > maxEmailLength || !isEmailAddress(in.Email):
		fields[FieldEmail] = "Enter a valid email address"
	}

	switch {
	case in.Password == "":
		fields[FieldPassword] = "Password is required"
	case len(in.Password) > maxPasswordLength:
		fields[FieldPassword] = "Password must be at most 72 bytes"
	case !utf8.ValidString(in.Password):
		fields[FieldPassword] = "Password contains invalid characters"
	}

	if !in.TermsAccepted {
		fields[FieldTerms] = "You must accept the terms of service"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validateName(fields FieldErrors, field, label, value string) {
	switch {
	case value == "":
		fields[field] = label + " is required"
	case utf8.RuneCountInString(value) > maxNameLength:
		fields[field] = label + " is too long"
	}
}

// isEmailAddress accepts a bare addr-spec only, not "Name <addr>" forms.
func isEmailAddress(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && at < len(email)-1
}

// IsChecked interprets an HTML checkbox value.
func IsChecked(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "true", "y", "yes", "1":
		return true
	}
	return false
}
