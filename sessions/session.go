package sessions

import "time"

// Session is the authentication state bound to one client. A session with an
// empty UserID is anonymous.
type Session struct {
	ID         string    // Opaque identifier, sent to the client as a cookie
	UserID     string    // Weak reference to users.User.ID; empty when anonymous
	Flashes    []string  // One-shot notices, drained on read
	CreatedAt  time.Time // When the session was created
	LastSeenAt time.Time // Last request that loaded the session
}

func (s *Session) IsAuthenticated() bool {
	return s.UserID != ""
}

// IsIdleAt reports whether the session has been unused for longer than maxIdle at t.
func (s *Session) IsIdleAt(t time.Time, maxIdle time.Duration) bool {
	return t.Sub(s.LastSeenAt) > maxIdle
}
