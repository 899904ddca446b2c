package httpx

import (
	"bytes"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
)

// TemplateRenderer renders HTML templates for UI responses.
type TemplateRenderer struct {
	t      *template.Template
	fsys   fs.FS
	dev    bool
	logger *slog.Logger
}

// TemplateRendererConfig holds configuration for creating a TemplateRenderer.
type TemplateRendererConfig struct {
	TemplateFS fs.FS        // Filesystem containing templates (required)
	DevMode    bool         // Re-parse templates on every render
	Logger     *slog.Logger // Logger for template errors (optional)
}

var templatePatterns = []string{"*.tmpl", "pages/*.tmpl"}

// NewTemplateRenderer constructs a renderer by parsing templates from the provided config.
func NewTemplateRenderer(cfg TemplateRendererConfig) (*TemplateRenderer, error) {
	if cfg.TemplateFS == nil {
		return nil, errors.New("TemplateFS is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	t, err := parseTemplates(cfg.TemplateFS)
	if err != nil {
		logger.Error("template parsing failed",
			slog.Any("error", err),
			slog.String("phase", "initialization"),
		)
		return nil, err
	}
	return &TemplateRenderer{t: t, fsys: cfg.TemplateFS, dev: cfg.DevMode, logger: logger}, nil
}

func parseTemplates(fsys fs.FS) (*template.Template, error) {
	return template.New("root").ParseFS(fsys, templatePatterns...)
}

// Render executes the named template into a buffer and writes it with status.
// Nothing is written when execution fails, so callers can still send an error.
func (r *TemplateRenderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	t := r.t
	if r.dev {
		fresh, err := parseTemplates(r.fsys)
		if err != nil {
			r.logger.Error("template reload failed", slog.Any("error", err))
		} else {
			t = fresh
		}
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		r.logger.Error("template execution failed",
			slog.String("template", name),
			slog.Any("error", err),
		)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Error("failed to write rendered template",
			slog.String("template", name),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

// RenderError renders the error page, falling back to plain text.
func (r *TemplateRenderer) RenderError(w http.ResponseWriter, status int, message string) {
	data := PageData{Title: http.StatusText(status), Error: message}
	if err := r.Render(w, status, "error-layout", data); err != nil {
		http.Error(w, message, status)
	}
}
