package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/csrf"

	"github.com/example/event-calendar/internal/application"
)

type authService interface {
	Signup(ctx context.Context, params application.SignupParams) (application.User, error)
	Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error)
	RevokeSession(ctx context.Context, token string) error
	ValidateSession(ctx context.Context, token string) (application.Principal, error)
}

// AuthHandler serves the login, signup, and logout pages.
type AuthHandler struct {
	service       authService
	renderer      *renderer
	secureCookies bool
	logger        *slog.Logger
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(service authService, renderer *renderer, secureCookies bool, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{service: service, renderer: renderer, secureCookies: secureCookies, logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

// ShowLogin renders the login form. Authenticated users are sent home.
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if h.isAuthenticated(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.renderer.renderPage(w, r, http.StatusOK, "login.html", pageData{
		Title:     "Log in",
		CSRFField: csrf.TemplateField(r),
		Data:      struct{ Next string }{Next: safeNextPath(r.URL.Query().Get("next"))},
	})
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(strings.ToLower(r.PostFormValue("email")))
	logger := h.log(r.Context(), "Login", "email", email)

	result, err := h.service.Authenticate(r.Context(), application.AuthenticateParams{
		Email:    email,
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		logger.InfoContext(r.Context(), "login rejected", "error_kind", application.ErrorKind(err))
		setFlash(w, "danger", flashMessageFor(application.ErrInvalidCredentials))
		target := "/login"
		if next := safeNextPath(r.URL.Query().Get("next")); next != "" {
			target += "?next=" + url.QueryEscape(next)
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	h.setSessionCookie(w, result.Session.Token, result.Session.ExpiresAt)
	logger.With("user_id", result.User.ID).InfoContext(r.Context(), "user logged in")

	target := safeNextPath(r.URL.Query().Get("next"))
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// ShowSignup renders the signup form. Authenticated users are sent home.
func (h *AuthHandler) ShowSignup(w http.ResponseWriter, r *http.Request) {
	if h.isAuthenticated(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.renderer.renderPage(w, r, http.StatusOK, "signup.html", pageData{
		Title:     "Sign up",
		CSRFField: csrf.TemplateField(r),
	})
}

// Signup handles the signup form submission. A successful signup does not
// log the new user in.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if h.isAuthenticated(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	logger := h.log(r.Context(), "Signup", "username", r.PostFormValue("username"))

	user, err := h.service.Signup(r.Context(), application.SignupParams{
		Username: r.PostFormValue("username"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		logger.InfoContext(r.Context(), "signup rejected", "error_kind", application.ErrorKind(err))
		setFlash(w, "danger", flashMessageFor(err))
		http.Redirect(w, r, "/signup", http.StatusSeeOther)
		return
	}

	logger.With("user_id", user.ID).InfoContext(r.Context(), "account created")
	setFlash(w, "success", "Your account has been created! You are now able to log in.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Logout revokes the current session, if any, and returns to the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := sessionTokenFromRequest(r); token != "" {
		if err := h.service.RevokeSession(r.Context(), token); err != nil {
			// A stale or already revoked token still ends the session.
			h.log(r.Context(), "Logout").InfoContext(r.Context(), "session revocation failed", "error_kind", application.ErrorKind(err))
		}
	}

	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) isAuthenticated(r *http.Request) bool {
	token := sessionTokenFromRequest(r)
	if token == "" {
		return false
	}
	_, err := h.service.ValidateSession(r.Context(), token)
	return err == nil
}

const sessionCookieName = "session_token"

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if !expires.IsZero() {
		cookie.Expires = expires.UTC()
	}
	http.SetCookie(w, cookie)
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionTokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// safeNextPath accepts only local absolute paths as post-login redirect
// targets, rejecting anything that could leave the site.
func safeNextPath(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	return next
}
