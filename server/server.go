package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-chat-gate/auth"
	"github.com/jrsteele09/go-chat-gate/internal/config"
	"github.com/jrsteele09/go-chat-gate/sessions"
	"github.com/jrsteele09/go-chat-gate/users"
	"github.com/rs/zerolog/log"
)

// Authenticator runs the registration and login flows.
type Authenticator interface {
	Register(ctx context.Context, input auth.RegistrationInput) (*users.User, error)
	Login(ctx context.Context, username, password string) (*users.User, error)
}

// SessionStore is the per-request session state used by the handlers and guards.
type SessionStore interface {
	NewSession(ctx context.Context) (*sessions.Session, error)
	Load(ctx context.Context, sessionID string) (*sessions.Session, error)
	Authenticate(ctx context.Context, session *sessions.Session, user *users.User) error
	Clear(ctx context.Context, session *sessions.Session) error
	CurrentUser(ctx context.Context, session *sessions.Session) (*users.User, error)
	PushFlash(ctx context.Context, session *sessions.Session, message string) error
	DrainFlash(ctx context.Context, session *sessions.Session) ([]string, error)
}

var _ SessionStore = (*sessions.Store)(nil)
var _ Authenticator = (*auth.Service)(nil)

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	auth     Authenticator
	sessions SessionStore
	renderer Renderer
}

type Option func(*Server)

// WithRenderer replaces the embedded template renderer.
func WithRenderer(renderer Renderer) Option {
	return func(s *Server) {
		s.renderer = renderer
	}
}

func New(config config.Config, authenticator Authenticator, sessionStore SessionStore, options ...Option) (*Server, error) {
	if authenticator == nil {
		return nil, errors.New("[Server New] authenticator is required")
	}
	if sessionStore == nil {
		return nil, errors.New("[Server New] session store is required")
	}

	s := &Server{
		env:      config.GetEnv(),
		mux:      http.NewServeMux(),
		config:   config,
		auth:     authenticator,
		sessions: sessionStore,
	}
	for _, option := range options {
		option(s)
	}

	if s.renderer == nil {
		renderer, err := NewTemplateRenderer(TemplateFilesFS())
		if err != nil {
			return nil, fmt.Errorf("[Server New] failed to parse templates: %w", err)
		}
		s.renderer = renderer
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("*", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colourMethod(method), path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return strings.ToLower(scheme)
	}
	return "http"
}
