package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jrsteele09/go-chat-gate/internal/database"
	apperrors "github.com/jrsteele09/go-chat-gate/internal/errors"
	"github.com/jrsteele09/go-chat-gate/sessions"
)

var _ sessions.Repo = (*SessionRepo)(nil)

// SessionRepo persists sessions in the sessions table.
type SessionRepo struct {
	pool database.Pool
}

func NewSessionRepo(pool database.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) Create(ctx context.Context, session *sessions.Session) error {
	flashesJSON, err := marshalFlashes(session.Flashes)
	if err != nil {
		return fmt.Errorf("[SessionRepo Create] %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO sessions (id, user_id, flashes, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		session.ID,
		session.UserID,
		flashesJSON,
		session.CreatedAt,
		session.LastSeenAt,
	)
	if err != nil {
		return fmt.Errorf("[SessionRepo Create] %w", err)
	}
	return nil
}

func (r *SessionRepo) Touch(ctx context.Context, sessionID string, lastSeen time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE sessions SET last_seen_at = $2 WHERE id = $1`, sessionID, lastSeen)
	if err != nil {
		return fmt.Errorf("[SessionRepo Touch] %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepo) SetFlashes(ctx context.Context, sessionID string, flashes []string) error {
	flashesJSON, err := marshalFlashes(flashes)
	if err != nil {
		return fmt.Errorf("[SessionRepo SetFlashes] %w", err)
	}

	tag, err := r.pool.Exec(ctx, `UPDATE sessions SET flashes = $2 WHERE id = $1`, sessionID, flashesJSON)
	if err != nil {
		return fmt.Errorf("[SessionRepo SetFlashes] %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

// marshalFlashes encodes a nil list as [] to match the column default.
func marshalFlashes(flashes []string) ([]byte, error) {
	if flashes == nil {
		flashes = []string{}
	}
	flashesJSON, err := json.Marshal(flashes)
	if err != nil {
		return nil, fmt.Errorf("marshal flashes: %w", err)
	}
	return flashesJSON, nil
}

func (r *SessionRepo) Get(ctx context.Context, sessionID string) (*sessions.Session, error) {
	var (
		session     sessions.Session
		flashesJSON []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, flashes, created_at, last_seen_at
		FROM sessions
		WHERE id = $1
	`, sessionID).Scan(
		&session.ID,
		&session.UserID,
		&flashesJSON,
		&session.CreatedAt,
		&session.LastSeenAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[SessionRepo Get] %w", err)
	}

	if len(flashesJSON) > 0 {
		if err := json.Unmarshal(flashesJSON, &session.Flashes); err != nil {
			return nil, fmt.Errorf("[SessionRepo Get] unmarshal flashes: %w", err)
		}
	}
	if len(session.Flashes) == 0 {
		session.Flashes = nil
	}
	return &session, nil
}

func (r *SessionRepo) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID); err != nil {
		return fmt.Errorf("[SessionRepo Delete] %w", err)
	}
	return nil
}

func (r *SessionRepo) DeleteIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE last_seen_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("[SessionRepo DeleteIdle] %w", err)
	}
	return tag.RowsAffected(), nil
}
