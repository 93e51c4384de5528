package users

import "context"

// Repo is the user directory. Lookups return internal/errors.ErrNotFound when
// no user matches. Create must reject a duplicate username or email atomically
// with a *ConflictError, even when two creates race.
type Repo interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
}
