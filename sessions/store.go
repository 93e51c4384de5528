package sessions

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/go-chat-gate/internal/errors"
	"github.com/jrsteele09/go-chat-gate/users"
)

const sessionIDLength = 32 // bytes, 256 bits

// UserFinder resolves a session's user reference.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*users.User, error)
}

// Store manages session lifecycle on top of a Repo. Concurrent requests for
// the same session are not serialized; the last flash write wins, while the
// user binding only ever changes by rotating to a new ID.
type Store struct {
	repo    Repo
	users   UserFinder
	maxIdle time.Duration
	nowTime func() time.Time
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

func NewStore(repo Repo, userFinder UserFinder, maxIdle time.Duration, options ...StoreOption) (*Store, error) {
	if repo == nil {
		return nil, errors.New("[NewStore] session repo is required")
	}
	if userFinder == nil {
		return nil, errors.New("[NewStore] user finder is required")
	}
	if maxIdle <= 0 {
		return nil, errors.New("[NewStore] max idle duration must be positive")
	}

	s := &Store{
		repo:    repo,
		users:   userFinder,
		maxIdle: maxIdle,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// NewSession creates and persists an anonymous session with a fresh ID.
func (s *Store) NewSession(ctx context.Context) (*Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}
	now := s.nowTime()
	session := &Session{
		ID:         id,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("[Store NewSession] %w", err)
	}
	return session, nil
}

// Load fetches a session and marks it as seen. Sessions idle past the
// timeout are deleted and reported as ErrSessionExpired.
func (s *Store) Load(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, apperrors.ErrSessionNotFound
	}
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.nowTime()
	if session.IsIdleAt(now, s.maxIdle) {
		if err := s.repo.Delete(ctx, sessionID); err != nil {
			return nil, fmt.Errorf("[Store Load] delete expired session: %w", err)
		}
		return nil, apperrors.ErrSessionExpired
	}

	if err := s.repo.Touch(ctx, sessionID, now); err != nil {
		return nil, fmt.Errorf("[Store Load] touch session: %w", err)
	}
	session.LastSeenAt = now
	return session, nil
}

// Authenticate binds user to the session under a fresh ID, so an ID issued
// before login never identifies the signed in user. Repeating it with the
// same user is a no-op.
func (s *Store) Authenticate(ctx context.Context, session *Session, user *users.User) error {
	if user == nil || user.ID == "" {
		return errors.New("[Store Authenticate] user with an ID is required")
	}
	if session.UserID == user.ID {
		return nil
	}
	return s.rotate(ctx, session, user.ID, session.Flashes, "Authenticate")
}

// Clear returns the session to anonymous under a fresh ID and drops any
// pending flashes.
func (s *Store) Clear(ctx context.Context, session *Session) error {
	return s.rotate(ctx, session, "", nil, "Clear")
}

// rotate replaces the stored session with a new record. The old ID is
// deleted first, so a failure part way leaves the client anonymous rather
// than holding a stale binding.
func (s *Store) rotate(ctx context.Context, session *Session, userID string, flashes []string, op string) error {
	id, err := generateSessionID()
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, session.ID); err != nil {
		return fmt.Errorf("[Store %s] delete previous session: %w", op, err)
	}

	replacement := Session{
		ID:         id,
		UserID:     userID,
		Flashes:    flashes,
		CreatedAt:  session.CreatedAt,
		LastSeenAt: s.nowTime(),
	}
	if err := s.repo.Create(ctx, &replacement); err != nil {
		return fmt.Errorf("[Store %s] %w", op, err)
	}
	*session = replacement
	return nil
}

// CurrentUser resolves the session's user reference. It returns (nil, nil)
// for anonymous sessions and for references to users that no longer exist.
func (s *Store) CurrentUser(ctx context.Context, session *Session) (*users.User, error) {
	if session == nil || !session.IsAuthenticated() {
		return nil, nil
	}
	user, err := s.users.FindByID(ctx, session.UserID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[Store CurrentUser] %w", err)
	}
	return user, nil
}

func (s *Store) PushFlash(ctx context.Context, session *Session, message string) error {
	flashes := append(append([]string(nil), session.Flashes...), message)
	if err := s.repo.SetFlashes(ctx, session.ID, flashes); err != nil {
		return fmt.Errorf("[Store PushFlash] %w", err)
	}
	session.Flashes = flashes
	return nil
}

// DrainFlash returns pending flashes in push order and removes them.
func (s *Store) DrainFlash(ctx context.Context, session *Session) ([]string, error) {
	if len(session.Flashes) == 0 {
		return nil, nil
	}
	if err := s.repo.SetFlashes(ctx, session.ID, nil); err != nil {
		return nil, fmt.Errorf("[Store DrainFlash] %w", err)
	}
	flashes := session.Flashes
	session.Flashes = nil
	return flashes, nil
}

// DeleteExpired removes every session idle past the timeout.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	removed, err := s.repo.DeleteIdle(ctx, s.nowTime().Add(-s.maxIdle))
	if err != nil {
		return 0, fmt.Errorf("[Store DeleteExpired] %w", err)
	}
	return removed, nil
}

func generateSessionID() (string, error) {
	b := make([]byte, sessionIDLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("[sessions] generate id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
