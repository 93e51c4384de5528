package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-chat-gate/users"
	"github.com/rs/zerolog/log"
)

// Guard notices
const (
	MsgLoginFirst  = "You need to login first"
	MsgLogoutFirst = "You need to logout first"
)

// RequireAuthenticated runs next only when the session has a current user,
// which it adds to the request context. Otherwise it redirects to the login page.
func (s *Server) RequireAuthenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := s.currentUser(r)
		if user == nil {
			s.pushFlash(r, MsgLoginFirst)
			redirectSuccess(w, r, RouteLogin)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyUser, user)
		next(w, r.WithContext(ctx))
	}
}

// RequireAnonymous runs next only when the session has no current user.
// Otherwise it redirects to the chat page.
func (s *Server) RequireAnonymous(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.currentUser(r) != nil {
			s.pushFlash(r, MsgLogoutFirst)
			redirectSuccess(w, r, RouteChat)
			return
		}
		next(w, r)
	}
}

// currentUser treats a lookup failure as anonymous.
func (s *Server) currentUser(r *http.Request) *users.User {
	session := sessionFromContext(r.Context())
	if session == nil {
		return nil
	}
	user, err := s.sessions.CurrentUser(r.Context(), session)
	if err != nil {
		log.Error().Err(err).Msg("resolve current user")
		return nil
	}
	return user
}

func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
