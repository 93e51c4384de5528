package server

import (
	"net/http"
)

// IndexHandler renders the home page with the sign-up form
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, r, PageHome, PageData{})
	}
}

// ChatHandler renders the landing page for signed in users
func (s *Server) ChatHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, r, PageChat, PageData{})
	}
}
