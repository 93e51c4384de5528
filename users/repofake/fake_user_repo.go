package fakeuserrepo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-chat-gate/internal/errors"
	"github.com/jrsteele09/go-chat-gate/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

// FakeUserRepo is an in-memory user directory. The uniqueness check and the
// insert happen under one lock, so concurrent creates cannot both succeed.
type FakeUserRepo struct {
	users       map[string]*users.User
	usernameIDs map[string]string // username to user id
	emailIDs    map[string]string // email to user id
	lock        sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:       make(map[string]*users.User),
		usernameIDs: make(map[string]string),
		emailIDs:    make(map[string]string),
	}
}

func (ur *FakeUserRepo) Create(_ context.Context, user *users.User) (*users.User, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if _, ok := ur.usernameIDs[user.Username]; ok {
		return nil, &users.ConflictError{Field: users.FieldUsername}
	}
	if _, ok := ur.emailIDs[user.Email]; ok {
		return nil, &users.ConflictError{Field: users.FieldEmail}
	}

	stored := *user
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if stored.DateJoined.IsZero() {
		stored.DateJoined = time.Now().UTC()
	}
	ur.users[stored.ID] = &stored
	ur.usernameIDs[stored.Username] = stored.ID
	ur.emailIDs[stored.Email] = stored.ID

	created := stored
	return &created, nil
}

// Delete removes a user; it stands in for the administrative removal the
// directory contract leaves out.
func (ur *FakeUserRepo) Delete(id string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	delete(ur.usernameIDs, user.Username)
	delete(ur.emailIDs, user.Email)
	delete(ur.users, id)
	return nil
}

func (ur *FakeUserRepo) FindByID(_ context.Context, id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	return ur.copyOf(id)
}

func (ur *FakeUserRepo) FindByUsername(_ context.Context, username string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	return ur.copyOf(ur.usernameIDs[username])
}

func (ur *FakeUserRepo) FindByEmail(_ context.Context, email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	return ur.copyOf(ur.emailIDs[email])
}

// Count returns the number of stored users.
func (ur *FakeUserRepo) Count() int {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	return len(ur.users)
}

// copyOf must be called with the lock held.
func (ur *FakeUserRepo) copyOf(id string) (*users.User, error) {
	user, ok := ur.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	u := *user
	return &u, nil
}
