package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/gorilla/csrf"

	"github.com/example/event-calendar/internal/application"
)

// SessionValidator resolves a session token to its authenticated principal.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (application.Principal, error)
}

// RequireSession guards protected routes. Anonymous requests are redirected
// to the login page with the originally requested destination preserved in
// the next query parameter.
func RequireSession(validator SessionValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	base := defaultLogger(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionTokenFromRequest(r)
			if token != "" {
				principal, err := validator.ValidateSession(r.Context(), token)
				if err == nil {
					ctx := ContextWithPrincipal(r.Context(), principal)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				handlerLogger(r.Context(), base, "RequireSession", "").
					InfoContext(r.Context(), "rejected session token", "error_kind", application.ErrorKind(err))
			}

			redirectToLogin(w, r)
		})
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	destination := r.URL.Path
	if r.URL.RawQuery != "" {
		destination += "?" + r.URL.RawQuery
	}

	target := "/login"
	if destination != "" && destination != "/login" {
		target += "?next=" + url.QueryEscape(destination)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// RequestLogger attaches a request-scoped logger to the context and logs
// request start and completion.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}

// CSRFProtection wraps the double-submit cookie CSRF middleware around the
// cookie-authenticated HTML form surface. Every rendered form embeds the
// matching token via csrf.TemplateField.
func CSRFProtection(authKey []byte, secure bool) func(http.Handler) http.Handler {
	return csrf.Protect(authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Invalid or missing CSRF token.", http.StatusForbidden)
		})),
	)
}
