// internal/api/handler/web/handler.go
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"time"

	apihandler "github.com/newthinker/tradevision/internal/api/handler/api"
	"go.uber.org/zap"
)

//go:embed templates/*
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// pages lists the page templates rendered inside layout.html.
var pages = []string{"index.html"}

// Handler provides web UI handlers with template rendering
type Handler struct {
	// pageTemplates holds one template set per page: layout.html plus the page
	pageTemplates map[string]*template.Template
	analyzer      apihandler.Analyzer
	maxUpload     int64
	logger        *zap.Logger
	now           func() time.Time
}

// NewHandler creates a new web handler with templates loaded from the given directory.
// If templatesDir is empty, it falls back to embedded templates.
func NewHandler(templatesDir string) (*Handler, error) {
	if templatesDir == "" {
		return NewHandlerWithFS(TemplateFS())
	}

	pageTemplates := make(map[string]*template.Template)
	for _, page := range pages {
		layoutPath := filepath.Join(templatesDir, "layout.html")
		pagePath := filepath.Join(templatesDir, page)
		tmpl, err := template.ParseFiles(layoutPath, pagePath)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		pageTemplates[page] = tmpl
	}

	return newHandler(pageTemplates), nil
}

// NewHandlerWithFS creates a new web handler using a custom filesystem.
func NewHandlerWithFS(fsys fs.FS) (*Handler, error) {
	pageTemplates := make(map[string]*template.Template)
	for _, page := range pages {
		tmpl, err := template.ParseFS(fsys, "layout.html", page)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s from fs: %w", page, err)
		}
		pageTemplates[page] = tmpl
	}

	return newHandler(pageTemplates), nil
}

func newHandler(pageTemplates map[string]*template.Template) *Handler {
	return &Handler{
		pageTemplates: pageTemplates,
		logger:        zap.NewNop(),
		now:           time.Now,
	}
}

// SetAnalyzer sets the analyzer used by the upload form. Without one,
// submissions fail with the missing credential error.
func (h *Handler) SetAnalyzer(a apihandler.Analyzer) {
	h.analyzer = a
}

// SetUploadLimit caps the multipart body size. Zero means no limit.
func (h *Handler) SetUploadLimit(n int64) {
	h.maxUpload = n
}

// SetLogger sets the logger.
func (h *Handler) SetLogger(l *zap.Logger) {
	if l != nil {
		h.logger = l.Named("web")
	}
}

// render executes the specified page template with the given data
func (h *Handler) render(w http.ResponseWriter, status int, page string, data any) {
	tmpl, ok := h.pageTemplates[page]
	if !ok {
		http.Error(w, "template not found: "+page, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		h.logger.Error("rendering template", zap.String("page", page), zap.Error(err))
	}
}

// TemplateFS returns the embedded template filesystem for external use.
func TemplateFS() fs.FS {
	subFS, err := fs.Sub(templateFS, "templates")
	if err != nil {
		// This should never happen with valid embed directive
		return templateFS
	}
	return subFS
}

// Static serves the embedded stylesheet and script under /static/.
func Static() http.Handler {
	subFS, err := fs.Sub(staticFS, "static")
	if err != nil {
		return http.NotFoundHandler()
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(subFS)))
}
