package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*
var templateFS embed.FS

// RenderOptions tune the rendered pages.
type RenderOptions struct {
	// Title replaces DefaultTitle when set.
	Title string
	// FanfareURL is played when the winner view mounts. Empty disables it.
	FanfareURL string
	// SocketPath is the websocket the page script listens on.
	SocketPath string
}

// Renderer renders view models to HTML.
type Renderer struct {
	tmpl *template.Template
	opts RenderOptions
}

type pageData struct {
	Model
	Placeholder string
	StartLabel  string
	AgainLabel  string
	NewLabel    string
	Subtitle    string
	FanfareURL  string
	SocketPath  string
}

// NewRenderer parses the embedded templates.
func NewRenderer(opts RenderOptions) (*Renderer, error) {
	tmpl, err := template.New("raffle").Funcs(template.FuncMap{
		"fixed": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse view templates: %w", err)
	}
	if opts.SocketPath == "" {
		opts.SocketPath = "/ws/raffle"
	}
	return &Renderer{tmpl: tmpl, opts: opts}, nil
}

// Title returns the configured page title.
func (r *Renderer) Title() string {
	if r.opts.Title != "" {
		return r.opts.Title
	}
	return DefaultTitle
}

// Page writes a complete HTML document for m.
func (r *Renderer) Page(w io.Writer, m Model) error {
	return r.execute(w, "page", m)
}

// Fragment writes only the #app element for m, as swapped in by the page
// script on live updates.
func (r *Renderer) Fragment(w io.Writer, m Model) error {
	return r.execute(w, "app", m)
}

// FragmentString renders Fragment into a string.
func (r *Renderer) FragmentString(m Model) (string, error) {
	var buf bytes.Buffer
	if err := r.Fragment(&buf, m); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *Renderer) execute(w io.Writer, name string, m Model) error {
	m.Title = r.Title()
	data := pageData{
		Model:       m,
		Placeholder: Placeholder,
		StartLabel:  StartLabel,
		AgainLabel:  AgainLabel,
		NewLabel:    NewLabel,
		Subtitle:    Subtitle,
		FanfareURL:  r.opts.FanfareURL,
		SocketPath:  r.opts.SocketPath,
	}
	if err := r.tmpl.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("render %s view: %w", m.Kind, err)
	}
	return nil
}
