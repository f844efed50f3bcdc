package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"github.com/DoyleJ11/bgg-shelf-mapper/internal/engine"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

type Renderer struct {
	tmpl       *template.Template
	apiBaseURL string
}

type pageData struct {
	SessionID string
	Version   int
	Shell     ShellModel
}

func NewRenderer(apiBaseURL string) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, apiBaseURL: apiBaseURL}, nil
}

// Page writes the full document for a new page session.
func (r *Renderer) Page(w io.Writer, sessionID string, version int, st engine.State) error {
	return r.tmpl.ExecuteTemplate(w, "page", pageData{
		SessionID: sessionID,
		Version:   version,
		Shell:     NewShellModel(st, r.apiBaseURL),
	})
}

// Shell renders the contents of #app; the browser swaps it in on each snapshot.
func (r *Renderer) Shell(st engine.State) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "shell", NewShellModel(st, r.apiBaseURL)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Static serves the embedded JS and CSS; mount it under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
