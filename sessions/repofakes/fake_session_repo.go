package fakesessionrepo

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-chat-gate/internal/errors"
	"github.com/jrsteele09/go-chat-gate/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo keeps sessions in process memory. It is also the default
// backend when no database is configured.
type FakeSessionRepo struct {
	sessions map[string]sessions.Session
	lock     sync.RWMutex
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		sessions: make(map[string]sessions.Session),
	}
}

func (sr *FakeSessionRepo) Create(_ context.Context, session *sessions.Session) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	stored := *session
	stored.Flashes = append([]string(nil), session.Flashes...)
	sr.sessions[session.ID] = stored
	return nil
}

func (sr *FakeSessionRepo) Touch(_ context.Context, sessionID string, lastSeen time.Time) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	stored, ok := sr.sessions[sessionID]
	if !ok {
		return apperrors.ErrSessionNotFound
	}
	stored.LastSeenAt = lastSeen
	sr.sessions[sessionID] = stored
	return nil
}

func (sr *FakeSessionRepo) SetFlashes(_ context.Context, sessionID string, flashes []string) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	stored, ok := sr.sessions[sessionID]
	if !ok {
		return apperrors.ErrSessionNotFound
	}
	stored.Flashes = append([]string(nil), flashes...)
	sr.sessions[sessionID] = stored
	return nil
}

func (sr *FakeSessionRepo) Get(_ context.Context, sessionID string) (*sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	stored, ok := sr.sessions[sessionID]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	stored.Flashes = append([]string(nil), stored.Flashes...)
	return &stored, nil
}

func (sr *FakeSessionRepo) Delete(_ context.Context, sessionID string) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	delete(sr.sessions, sessionID)
	return nil
}

func (sr *FakeSessionRepo) DeleteIdle(_ context.Context, cutoff time.Time) (int64, error) {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	var removed int64
	for id, session := range sr.sessions {
		if session.LastSeenAt.Before(cutoff) {
			delete(sr.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions.
func (sr *FakeSessionRepo) Len() int {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	return len(sr.sessions)
}
