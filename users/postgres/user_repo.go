package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jrsteele09/go-chat-gate/internal/database"
	apperrors "github.com/jrsteele09/go-chat-gate/internal/errors"
	"github.com/jrsteele09/go-chat-gate/users"
)

// Unique constraint names from migrations/00001_create_users.sql.
const (
	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"
)

const selectUser = `
	SELECT id::text, first_name, last_name, username, email, password_hash, terms_accepted, date_joined
	FROM users
`

var _ users.Repo = (*UserRepo)(nil)

// UserRepo is the Postgres user directory. Uniqueness is enforced by the
// table's unique constraints, so Create is atomic without a prior read.
type UserRepo struct {
	pool database.Pool
}

func NewUserRepo(pool database.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user *users.User) (*users.User, error) {
	created := *user
	if created.ID == "" {
		created.ID = uuid.New().String()
	}
	if created.DateJoined.IsZero() {
		created.DateJoined = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, first_name, last_name, username, email, password_hash, terms_accepted, date_joined)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		created.ID,
		created.FirstName,
		created.LastName,
		created.Username,
		created.Email,
		created.PasswordHash,
		created.TermsAccepted,
		created.DateJoined,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, conflictFor(pgErr.ConstraintName)
		}
		return nil, fmt.Errorf("[UserRepo Create] insert user: %w", err)
	}
	return &created, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*users.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.ErrNotFound
	}
	return r.findOne(ctx, "id", selectUser+` WHERE id = $1`, id)
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*users.User, error) {
	return r.findOne(ctx, "username", selectUser+` WHERE username = $1`, username)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.findOne(ctx, "email", selectUser+` WHERE email = $1`, email)
}

func (r *UserRepo) findOne(ctx context.Context, field, query string, value string) (*users.User, error) {
	var u users.User
	err := r.pool.QueryRow(ctx, query, value).Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.TermsAccepted,
		&u.DateJoined,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[UserRepo] find by %s: %w", field, err)
	}
	return &u, nil
}

func conflictFor(constraint string) *users.ConflictError {
	if constraint == emailConstraint {
		return &users.ConflictError{Field: users.FieldEmail}
	}
	// The primary key cannot collide with generated ids, so anything else is the username.
	return &users.ConflictError{Field: users.FieldUsername}
}
