package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
)

// Renderer manages template parsing and rendering with isolated template sets.
// It supports two layouts:
//   - "public" layout for the intake form, login, and booking completion
//   - "admin" layout for the dashboard
//
// Templates are organized as:
//   - layouts/public.html, layouts/admin.html - base layouts
//   - partials/*.html - fragments shared across layouts (flash, lead rows)
//   - pages/public/*.html - public pages (use public layout)
//   - pages/admin/*.html - admin pages (use admin layout)
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
	isDev     bool
	mu        sync.RWMutex

	// For dev mode hot-reload
	templatesDir string
}

// RendererConfig holds configuration for the renderer.
type RendererConfig struct {
	TemplatesDir string
	Logger       *slog.Logger
	IsDev        bool
}

// NewRenderer creates a new template renderer.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	r := &Renderer{
		templates:    make(map[string]*template.Template),
		logger:       cfg.Logger,
		isDev:        cfg.IsDev,
		templatesDir: cfg.TemplatesDir,
	}

	if err := r.loadTemplates(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Renderer) loadTemplates() error {
	templatesDir := r.templatesDir

	partialFiles, err := filepath.Glob(filepath.Join(templatesDir, "partials", "*.html"))
	if err != nil {
		return fmt.Errorf("failed to glob partials: %w", err)
	}

	layouts := []string{"public", "admin"}
	for _, layout := range layouts {
		layoutPath := filepath.Join(templatesDir, "layouts", layout+".html")
		baseTmpl, err := template.New(layout).Funcs(TemplateFuncs()).ParseFiles(layoutPath)
		if err != nil {
			return fmt.Errorf("failed to parse %s layout: %w", layout, err)
		}

		if len(partialFiles) > 0 {
			baseTmpl, err = baseTmpl.ParseFiles(partialFiles...)
			if err != nil {
				return fmt.Errorf("failed to parse partials into %s layout: %w", layout, err)
			}
		}

		pages, err := filepath.Glob(filepath.Join(templatesDir, "pages", layout, "*.html"))
		if err != nil {
			return fmt.Errorf("failed to glob %s pages: %w", layout, err)
		}

		for _, page := range pages {
			pageTmpl, err := baseTmpl.Clone()
			if err != nil {
				return fmt.Errorf("failed to clone %s template for %s: %w", layout, page, err)
			}

			pageTmpl, err = pageTmpl.ParseFiles(page)
			if err != nil {
				return fmt.Errorf("failed to parse page %s: %w", page, err)
			}

			// Store as "public/intake", "admin/dashboard", etc.
			pageName := strings.TrimSuffix(filepath.Base(page), filepath.Ext(page))
			r.templates[layout+"/"+pageName] = pageTmpl
		}
	}

	r.logger.Info("templates loaded", "count", len(r.templates))
	return nil
}

// Reload reloads all templates from disk. Useful for development.
func (r *Renderer) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.templates = make(map[string]*template.Template)
	return r.loadTemplates()
}

// Render renders a template to an io.Writer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}) error {
	if r.isDev {
		if err := r.Reload(); err != nil {
			return fmt.Errorf("template reload failed: %w", err)
		}
	}

	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	return tmpl.ExecuteTemplate(w, baseTemplateName(name), data)
}

// RenderHTML renders a template and returns the HTML as a string.
func (r *Renderer) RenderHTML(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderHTTP renders a template directly to an http.ResponseWriter.
//
// The page renders to a buffer first so a template failure still produces
// a clean 500 instead of a half-written response.
func (r *Renderer) RenderHTTP(w http.ResponseWriter, name string, data interface{}) {
	var buf bytes.Buffer
	if err := r.Render(&buf, name, data); err != nil {
		r.logger.Error("template execution failed", "name", name, "error", err)
		http.Error(w, "Template execution failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// RenderHTTPStatus is RenderHTTP with an explicit status code, for
// validation re-renders (422) and error pages (404).
func (r *Renderer) RenderHTTPStatus(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := r.Render(&buf, name, data); err != nil {
		r.logger.Error("template execution failed", "name", name, "error", err)
		http.Error(w, "Template execution failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// baseTemplateName determines which layout template to execute.
func baseTemplateName(name string) string {
	if strings.HasPrefix(name, "admin/") {
		return "admin"
	}
	return "public"
}

// ListTemplates returns a list of all loaded template names, for debugging.
func (r *Renderer) ListTemplates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}
