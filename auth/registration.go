package auth

import (
	"context"
	"errors"

	apperrors "github.com/jrsteele09/go-chat-gate/internal/errors"
	"github.com/jrsteele09/go-chat-gate/users"
)

// Register validates the input, checks username then email uniqueness,
// hashes the password and stores the new user.
//
// Errors are *ValidationError, *ConflictError or *SystemFault.
func (s *Service) Register(ctx context.Context, input RegistrationInput) (*users.User, error) {
	input = input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkAvailable(ctx, input); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fault("hash password", err)
	}

	created, err := s.users.Create(ctx, &users.User{
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		Username:      input.Username,
		Email:         input.Email,
		PasswordHash:  hash,
		TermsAccepted: input.TermsAccepted,
	})
	if err != nil {
		// A concurrent registration won the race between the checks and the insert.
		var conflict *users.ConflictError
		if errors.As(err, &conflict) {
			return nil, conflictFor(conflict.Field)
		}
		return nil, fault("create user", err)
	}
	return created, nil
}

func (s *Service) checkAvailable(ctx context.Context, input RegistrationInput) error {
	_, err := s.users.FindByUsername(ctx, input.Username)
	switch {
	case err == nil:
		return conflictFor(users.FieldUsername)
	case !errors.Is(err, apperrors.ErrNotFound):
		return fault("find user by username", err)
	}

	_, err = s.users.FindByEmail(ctx, input.Email)
	switch {
	case err == nil:
		return conflictFor(users.FieldEmail)
	case !errors.Is(err, apperrors.ErrNotFound):
		return fault("find user by email", err)
	}
	return nil
}

func conflictFor(field string) *ConflictError {
	if field == users.FieldEmail {
		return &ConflictError{Field: FieldEmail, Message: MsgEmailTaken}
	}
	return &ConflictError{Field: FieldUsername, Message: MsgUsernameTaken}
}
