package fakeuserrepo_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	apperrors "github.com/jrsteele09/go-chat-gate/internal/errors"
	"github.com/jrsteele09/go-chat-gate/users"
	fakeuserrepo "github.com/jrsteele09/go-chat-gate/users/repofake"
	"github.com/stretchr/testify/require"
)

func TestFakeUserRepo_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := fakeuserrepo.NewFakeUserRepo()

	created, err := repo.Create(ctx, &users.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.False(t, created.DateJoined.IsZero())

	byName, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, created.ID, byName.ID)

	byEmail, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, created.ID, byEmail.ID)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", byID.Username)

	_, err = repo.FindByUsername(ctx, "Alice")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFakeUserRepo_Conflicts(t *testing.T) {
	ctx := context.Background()
	repo := fakeuserrepo.NewFakeUserRepo()
	_, err := repo.Create(ctx, &users.User{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		user  users.User
		field string
	}{
		{"duplicate username", users.User{Username: "alice", Email: "other@x.com"}, users.FieldUsername},
		{"duplicate email", users.User{Username: "bob", Email: "a@x.com"}, users.FieldEmail},
		{"both duplicated reports username", users.User{Username: "alice", Email: "a@x.com"}, users.FieldUsername},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Create(ctx, &tt.user)
			require.ErrorIs(t, err, apperrors.ErrConflict)

			var conflict *users.ConflictError
			require.ErrorAs(t, err, &conflict)
			require.Equal(t, tt.field, conflict.Field)
		})
	}
	require.Equal(t, 1, repo.Count())
}

func TestFakeUserRepo_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	repo := fakeuserrepo.NewFakeUserRepo()

	const racers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Create(ctx, &users.User{Username: "racer", Email: fmt.Sprintf("r%d@x.com", i)})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, repo.Count())
}

func TestFakeUserRepo_Delete(t *testing.T) {
	ctx := context.Background()
	repo := fakeuserrepo.NewFakeUserRepo()
	created, err := repo.Create(ctx, &users.User{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(created.ID))
	_, err = repo.FindByID(ctx, created.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.ErrorIs(t, repo.Delete(created.ID), apperrors.ErrNotFound)

	_, err = repo.Create(ctx, &users.User{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)
}

func TestFakeUserRepo_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := fakeuserrepo.NewFakeUserRepo()
	created, err := repo.Create(ctx, &users.User{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)

	created.Username = "mallory"
	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", found.Username)
}
