package auth

import (
	"errors"
	"fmt"

	"github.com/jrsteele09/go-chat-gate/users"
)

// Service runs the registration and login flows against a user directory.
type Service struct {
	users     users.Repo
	hasher    users.Hasher
	dummyHash string // verified against when a username is unknown, to even out timing
}

func NewService(userRepo users.Repo, hasher users.Hasher) (*Service, error) {
	if userRepo == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if hasher == nil {
		return nil, errors.New("[NewService] hasher is required")
	}

	dummyHash, err := hasher.Hash("timing-equaliser-not-a-password")
	if err != nil {
		return nil, fmt.Errorf("[NewService] dummy hash: %w", err)
	}

	return &Service{
		users:     userRepo,
		hasher:    hasher,
		dummyHash: dummyHash,
	}, nil
}
