package server

import (
	"errors"
	"net/http"

	"github.com/jrsteele09/go-chat-gate/auth"
	"github.com/rs/zerolog/log"
)

const (
	MsgLoggedIn  = "You are now logged in!"
	MsgLoggedOut = "You logged out successfully!"
)

// LoginGetHandler renders the login page
func (s *Server) LoginGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, r, PageLogin, PageData{})
	}
}

// LoginPostHandler runs the login flow. Every failure, including backend
// faults, shows the same message.
func (s *Server) LoginPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		user, err := s.auth.Login(r.Context(), r.PostFormValue(auth.FieldUsername), r.PostFormValue(auth.FieldPassword))
		if err == nil {
			session := sessionFromContext(r.Context())
			if err = s.sessions.Authenticate(r.Context(), session, user); err == nil {
				s.SetSessionCookie(w, r, session.ID)
				s.pushFlash(r, MsgLoggedIn)
				redirectSuccess(w, r, RouteChat)
				return
			}
		}

		if !errors.Is(err, auth.ErrAuthenticationFailure) {
			log.Error().Err(err).Msg("login failed")
		}
		s.pushFlash(r, auth.MsgInvalidLogin)
		s.renderPage(w, r, PageLogin, PageData{})
	}
}

// LogoutHandler ends the user session
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())
		if err := s.sessions.Clear(r.Context(), session); err != nil {
			log.Error().Err(err).Msg("clear session")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.SetSessionCookie(w, r, session.ID)
		s.pushFlash(r, MsgLoggedOut)
		redirectSuccess(w, r, RouteHome)
	}
}
