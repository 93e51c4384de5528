package server

import (
	"net/http"
	"path"

	"github.com/rs/zerolog/log"
)

func (s *Server) initRoutes() {
	// Catch-all: home page with the sign-up form
	s.RegisterRouteHandler(RouteHome, ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare(s.RequireAnonymous)...))

	// SIGN UP
	s.RegisterRouteHandler("GET "+RouteSignup+"{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare(s.RequireAnonymous)...))
	s.RegisterRouteHandler("POST "+RouteSignup+"{$}", ChainMiddleware(s.SignupPostHandler(), s.HTMLMiddleWare(s.RequireAnonymous)...))

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin+"{$}", ChainMiddleware(s.LoginGetHandler(), s.HTMLMiddleWare(s.RequireAnonymous)...))
	s.RegisterRouteHandler("POST "+RouteLogin+"{$}", ChainMiddleware(s.LoginPostHandler(), s.HTMLMiddleWare(s.RequireAnonymous)...))

	// Authenticated
	s.RegisterRouteHandler("GET "+RouteLogout+"{$}", ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare(s.RequireAuthenticated)...))
	s.RegisterRouteHandler("GET "+RouteChat+"{$}", ChainMiddleware(s.ChatHandler(), s.HTMLMiddleWare(s.RequireAuthenticated)...))

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler("css"), s.StaticMiddleware()...))
}

func (s *Server) serveFileHandler(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := path.Join(dir, path.Base(r.PathValue("file")))
		err := ServeStaticFile(w, r, filePath)
		if err != nil {
			log.Warn().Err(err).Str("file", filePath).Msg("static file not served")
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}
