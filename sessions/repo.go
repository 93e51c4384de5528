package sessions

import (
	"context"
	"time"
)

// Repo defines the interface for session persistence. A stored session's
// UserID is fixed at Create; later writes only touch LastSeenAt or Flashes.
type Repo interface {
	// Create stores a new session
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by ID, or internal/errors.ErrSessionNotFound
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Touch sets LastSeenAt, or returns internal/errors.ErrSessionNotFound
	Touch(ctx context.Context, sessionID string, lastSeen time.Time) error

	// SetFlashes replaces the pending flashes, or returns internal/errors.ErrSessionNotFound
	SetFlashes(ctx context.Context, sessionID string, flashes []string) error

	// Delete removes a session by ID; deleting a missing session is not an error
	Delete(ctx context.Context, sessionID string) error

	// DeleteIdle removes sessions last seen before cutoff and returns how many were removed
	DeleteIdle(ctx context.Context, cutoff time.Time) (int64, error)
}
