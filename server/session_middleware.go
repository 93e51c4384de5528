package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-chat-gate/internal/errors"
	"github.com/jrsteele09/go-chat-gate/sessions"
	"github.com/jrsteele09/go-chat-gate/users"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySession stores the request's *sessions.Session
	ContextKeySession ContextKey = "session"
	// ContextKeyUser stores the authenticated *users.User, set by RequireAuthenticated
	ContextKeyUser ContextKey = "user"
)

// SessionMiddleware loads the session named by the cookie, or starts a new
// anonymous one, and makes it available to the rest of the chain.
func (s *Server) SessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.loadOrCreateSession(r)
		if err != nil {
			log.Error().Err(err).Msg("session unavailable")
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}

		s.SetSessionCookie(w, r, session.ID)
		ctx := context.WithValue(r.Context(), ContextKeySession, session)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) loadOrCreateSession(r *http.Request) (*sessions.Session, error) {
	if cookie, err := r.Cookie(s.config.GetSessionCookieName()); err == nil {
		session, err := s.sessions.Load(r.Context(), cookie.Value)
		switch {
		case err == nil:
			return session, nil
		case !errors.Is(err, apperrors.ErrSessionNotFound) && !errors.Is(err, apperrors.ErrSessionExpired):
			return nil, err
		}
	}
	return s.sessions.NewSession(r.Context())
}

// SetSessionCookie writes the session cookie, replacing one already queued on
// the response so a rotated ID wins. It has no MaxAge, so it ends with the
// browser session; idle expiry is enforced server side.
func (s *Server) SetSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string) {
	name := s.config.GetSessionCookieName()
	header := w.Header()
	queued := header.Values("Set-Cookie")
	header.Del("Set-Cookie")
	for _, value := range queued {
		if !strings.HasPrefix(value, name+"=") {
			header.Add("Set-Cookie", value)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionFromContext(ctx context.Context) *sessions.Session {
	session, _ := ctx.Value(ContextKeySession).(*sessions.Session)
	return session
}

func userFromContext(ctx context.Context) *users.User {
	user, _ := ctx.Value(ContextKeyUser).(*users.User)
	return user
}

// pushFlash queues a message for the next rendered page. Failures are logged
// only; a lost notice must not break the request.
func (s *Server) pushFlash(r *http.Request, message string) {
	session := sessionFromContext(r.Context())
	if session == nil {
		return
	}
	if err := s.sessions.PushFlash(r.Context(), session, message); err != nil {
		log.Error().Err(err).Msg("push flash message")
	}
}
