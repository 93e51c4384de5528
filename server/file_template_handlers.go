package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"github.com/jrsteele09/go-chat-gate/auth"
	"github.com/jrsteele09/go-chat-gate/users"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*
var templateFiles embed.FS

// Page names understood by the Renderer
const (
	PageHome  = "home"
	PageLogin = "login"
	PageChat  = "chat"
)

const layoutTemplate = "layout.html"

// PageData is the payload handed to every page template.
type PageData struct {
	AppName string
	Flashes []string
	Errors  auth.FieldErrors
	Form    map[string]string // submitted values echoed back, never the password
	User    *users.User
}

// Renderer turns a page name and its data into a response body.
type Renderer interface {
	Render(w io.Writer, page string, data PageData) error
}

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// TemplateRenderer renders pages from html/template files, each page
// composed with the shared layout.
type TemplateRenderer struct {
	pages map[string]*template.Template
}

var _ Renderer = (*TemplateRenderer)(nil)

func NewTemplateRenderer(fsys fs.FS) (*TemplateRenderer, error) {
	pages := make(map[string]*template.Template)
	for _, page := range []string{PageHome, PageLogin, PageChat} {
		tmpl, err := template.ParseFS(fsys, layoutTemplate, page+".html")
		if err != nil {
			return nil, fmt.Errorf("[NewTemplateRenderer] parse %s: %w", page, err)
		}
		pages[page] = tmpl
	}
	return &TemplateRenderer{pages: pages}, nil
}

func (tr *TemplateRenderer) Render(w io.Writer, page string, data PageData) error {
	tmpl, ok := tr.pages[page]
	if !ok {
		return fmt.Errorf("[TemplateRenderer] unknown page %q", page)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

// renderPage drains the session's flashes into data and writes the page.
// The body is buffered so a template failure never leaves a partial page.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, page string, data PageData) {
	data.AppName = s.config.GetAppName()
	if data.User == nil {
		data.User = userFromContext(r.Context())
	}

	if session := sessionFromContext(r.Context()); session != nil {
		flashes, err := s.sessions.DrainFlash(r.Context(), session)
		if err != nil {
			log.Error().Err(err).Msg("drain flash messages")
		}
		data.Flashes = append(data.Flashes, flashes...)
	}

	var body bytes.Buffer
	if err := s.renderer.Render(&body, page, data); err != nil {
		log.Error().Err(err).Str("page", page).Msg("render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = body.WriteTo(w)
}
