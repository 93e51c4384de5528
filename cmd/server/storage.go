package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrsteele09/go-chat-gate/internal/config"
	"github.com/jrsteele09/go-chat-gate/internal/database"
	"github.com/jrsteele09/go-chat-gate/sessions"
	sessionpg "github.com/jrsteele09/go-chat-gate/sessions/postgres"
	fakesessionrepo "github.com/jrsteele09/go-chat-gate/sessions/repofakes"
	"github.com/jrsteele09/go-chat-gate/users"
	userpg "github.com/jrsteele09/go-chat-gate/users/postgres"
	fakeuserrepo "github.com/jrsteele09/go-chat-gate/users/repofake"
	"github.com/rs/zerolog/log"
)

type storage struct {
	users    users.Repo
	sessions sessions.Repo
	close    func()
}

func openStorage(ctx context.Context, c config.StorageConfig) (*storage, error) {
	if c.GetStorageBackend() != config.StoragePostgres {
		log.Warn().Msg("Using in-memory storage, users and sessions are lost on restart")
		return &storage{
			users:    fakeuserrepo.NewFakeUserRepo(),
			sessions: fakesessionrepo.NewFakeSessionRepo(),
			close:    func() {},
		}, nil
	}

	if c.GetDatabaseURL() == "" {
		return nil, errors.New("DATABASE_URL is required when STORAGE=postgres")
	}
	pool, err := database.Open(ctx, c.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("database.Open: %w", err)
	}
	log.Info().Msg("Using postgres storage")

	return &storage{
		users:    userpg.NewUserRepo(pool),
		sessions: sessionpg.NewSessionRepo(pool),
		close:    pool.Close,
	}, nil
}

func newHasher(c config.SecurityConfig) users.Hasher {
	if c.GetPasswordHasher() == config.HasherArgon2id {
		return users.NewArgon2idHasher()
	}
	return users.NewBcryptHasher(c.GetBcryptCost())
}
