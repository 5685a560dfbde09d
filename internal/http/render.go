package http

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/example/event-calendar/internal/application"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageData is the payload handed to every page template.
type pageData struct {
	Title     string
	Principal *application.Principal
	Flash     *Flash
	CSRFField template.HTML
	Data      any
}

// renderer renders embedded HTML page templates and the JSON feed.
type renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

var pageNames = []string{"index.html", "calendar.html", "login.html", "signup.html"}

func newRenderer(logger *slog.Logger) (*renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &renderer{pages: pages, logger: defaultLogger(logger)}, nil
}

// renderPage writes an HTML page, consuming any pending flash message.
func (rd *renderer) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	tmpl, ok := rd.pages[name]
	if !ok {
		rd.loggerFor(r.Context()).ErrorContext(r.Context(), "unknown template", "template", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if data.Flash == nil {
		data.Flash = popFlash(w, r)
	}
	if data.Principal == nil {
		if principal, ok := PrincipalFromContext(r.Context()); ok {
			data.Principal = &principal
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		rd.loggerFor(r.Context()).ErrorContext(r.Context(), "failed to render template", "template", name, "error", err)
	}
}

// writeJSON writes a JSON response body.
func (rd *renderer) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		rd.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (rd *renderer) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return rd.logger
}

// flashMessageFor converts a service failure into the short status message
// shown to the user on the next page.
func flashMessageFor(err error) string {
	var vErr *application.ValidationError
	switch {
	case errors.Is(err, application.ErrNotFound):
		return "Event not found or you don't have permission."
	case errors.Is(err, application.ErrInvalidCredentials):
		return "Login Unsuccessful. Please check email and password."
	case errors.As(err, &vErr):
		for _, msg := range vErr.FieldErrors {
			return msg
		}
		return "Please check your input."
	default:
		return "Something went wrong. Please try again."
	}
}
