package auth

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/jrsteele09/go-chat-gate/internal/errors"
	"github.com/jrsteele09/go-chat-gate/users"
)

// Login looks up username and verifies password. An unknown username and a
// wrong password both return ErrAuthenticationFailure after the same amount
// of hashing work. Backend failures return *SystemFault. The username is
// trimmed the same way registration stores it; the password is used as is.
func (s *Service) Login(ctx context.Context, username, password string) (*users.User, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		s.hasher.Verify(password, s.dummyHash)
		return nil, ErrAuthenticationFailure
	case err != nil:
		return nil, fault("find user by username", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrAuthenticationFailure
	}
	return user, nil
}
