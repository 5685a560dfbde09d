package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/example/event-calendar/internal/application"
)

type authServiceStub struct {
	signupResult application.User
	signupErr    error
	signupCalls  []application.SignupParams

	authResult application.AuthenticateResult
	authErr    error

	revokeErr     error
	revokedTokens []string

	principal   application.Principal
	validateErr error
}

func (s *authServiceStub) Signup(ctx context.Context, params application.SignupParams) (application.User, error) {
	s.signupCalls = append(s.signupCalls, params)
	if s.signupErr != nil {
		return application.User{}, s.signupErr
	}
	return s.signupResult, nil
}

func (s *authServiceStub) Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error) {
	if s.authErr != nil {
		return application.AuthenticateResult{}, s.authErr
	}
	return s.authResult, nil
}

func (s *authServiceStub) RevokeSession(ctx context.Context, token string) error {
	s.revokedTokens = append(s.revokedTokens, token)
	return s.revokeErr
}

func (s *authServiceStub) ValidateSession(ctx context.Context, token string) (application.Principal, error) {
	if s.validateErr != nil {
		return application.Principal{}, s.validateErr
	}
	return s.principal, nil
}

// newTestRouter assembles the route table without CSRF protection so form
// submissions in tests do not need a token exchange.
func newTestRouter(t *testing.T, auth *authServiceStub, events eventService) http.Handler {
	t.Helper()

	renderer, err := newRenderer(nil)
	if err != nil {
		t.Fatalf("failed to build renderer: %v", err)
	}

	var eventHandler *EventHandler
	if events != nil {
		eventHandler = NewEventHandler(events, renderer, nil)
	}

	return NewRouter(RouterConfig{
		Auth:           NewAuthHandler(auth, renderer, false, nil),
		Events:         eventHandler,
		RequireSession: RequireSession(auth, nil),
	})
}

func postForm(t *testing.T, handler http.Handler, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		r.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

func findCookie(recorder *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestAuthHandler_Login(t *testing.T) {
	t.Parallel()

	t.Run("sets the session cookie and honors next", func(t *testing.T) {
		t.Parallel()

		auth := &authServiceStub{
			validateErr: application.ErrUnauthorized,
			authResult: application.AuthenticateResult{
				User: application.User{ID: "user-1"},
				Session: application.Session{
					Token:     "issued-token",
					ExpiresAt: time.Date(2024, time.March, 2, 9, 0, 0, 0, time.UTC),
				},
			},
		}
		handler := newTestRouter(t, auth, &eventServiceStub{})

		w := postForm(t, handler, "/login?next=%2Fcalendar", url.Values{
			"email":    {"alice@example.com"},
			"password": {"secret"},
		})

		if w.Code != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", w.Code)
		}
		if got := w.Header().Get("Location"); got != "/calendar" {
			t.Fatalf("expected redirect to /calendar, got %q", got)
		}

		cookie := findCookie(w, sessionCookieName)
		if cookie == nil || cookie.Value != "issued-token" {
			t.Fatalf("expected session cookie with issued token, got %#v", cookie)
		}
		if !cookie.HttpOnly {
			t.Fatalf("session cookie must be HttpOnly")
		}
	})

	t.Run("refuses an offsite next target", func(t *testing.T) {
		t.Parallel()

		auth := &authServiceStub{
			validateErr: application.ErrUnauthorized,
			authResult: application.AuthenticateResult{
				Session: application.Session{Token: "issued-token"},
			},
		}
		handler := newTestRouter(t, auth, &eventServiceStub{})

		w := postForm(t, handler, "/login?next=https%3A%2F%2Fevil.example", url.Values{
			"email":    {"alice@example.com"},
			"password": {"secret"},
		})

		if got := w.Header().Get("Location"); got != "/" {
			t.Fatalf("expected redirect home, got %q", got)
		}
	})

	t.Run("flashes the generic failure message", func(t *testing.T) {
		t.Parallel()

		auth := &authServiceStub{
			validateErr: application.ErrUnauthorized,
			authErr:     application.ErrInvalidCredentials,
		}
		handler := newTestRouter(t, auth, &eventServiceStub{})

		w := postForm(t, handler, "/login?next=%2Fcalendar", url.Values{
			"email":    {"alice@example.com"},
			"password": {"wrong"},
		})

		if w.Code != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", w.Code)
		}
		if got := w.Header().Get("Location"); got != "/login?next=%2Fcalendar" {
			t.Fatalf("expected redirect back to login with next, got %q", got)
		}
		if findCookie(w, flashCookieName) == nil {
			t.Fatalf("expected a flash cookie")
		}
		if findCookie(w, sessionCookieName) != nil {
			t.Fatalf("failed login must not set a session cookie")
		}
	})
}

func TestAuthHandler_Signup(t *testing.T) {
	t.Parallel()

	t.Run("redirects to login without starting a session", func(t *testing.T) {
		t.Parallel()

		auth := &authServiceStub{
			validateErr:  application.ErrUnauthorized,
			signupResult: application.User{ID: "user-1", Username: "alice"},
		}
		handler := newTestRouter(t, auth, &eventServiceStub{})

		w := postForm(t, handler, "/signup", url.Values{
			"username": {"alice"},
			"email":    {"alice@example.com"},
			"password": {"secret"},
		})

		if w.Code != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", w.Code)
		}
		if got := w.Header().Get("Location"); got != "/login" {
			t.Fatalf("expected redirect to /login, got %q", got)
		}
		if findCookie(w, sessionCookieName) != nil {
			t.Fatalf("signup must not set a session cookie")
		}
		if findCookie(w, flashCookieName) == nil {
			t.Fatalf("expected a success flash cookie")
		}
	})

	t.Run("flashes validation failures", func(t *testing.T) {
		t.Parallel()

		vErr := &application.ValidationError{FieldErrors: map[string]string{"account": "username or email is already taken"}}
		auth := &authServiceStub{validateErr: application.ErrUnauthorized, signupErr: vErr}
		handler := newTestRouter(t, auth, &eventServiceStub{})

		w := postForm(t, handler, "/signup", url.Values{
			"username": {"alice"},
			"email":    {"alice@example.com"},
			"password": {"secret"},
		})

		if got := w.Header().Get("Location"); got != "/signup" {
			t.Fatalf("expected redirect back to /signup, got %q", got)
		}
		if findCookie(w, flashCookieName) == nil {
			t.Fatalf("expected a flash cookie")
		}
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Parallel()

	t.Run("revokes the session and clears the cookie", func(t *testing.T) {
		t.Parallel()

		auth := &authServiceStub{principal: application.Principal{UserID: "user-1"}}
		handler := newTestRouter(t, auth, &eventServiceStub{})

		r := httptest.NewRequest(http.MethodGet, "/logout", nil)
		r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "active-token"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		if w.Code != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", w.Code)
		}
		if got := w.Header().Get("Location"); got != "/login" {
			t.Fatalf("expected redirect to /login, got %q", got)
		}
		if len(auth.revokedTokens) != 1 || auth.revokedTokens[0] != "active-token" {
			t.Fatalf("expected the token to be revoked, got %#v", auth.revokedTokens)
		}

		cookie := findCookie(w, sessionCookieName)
		if cookie == nil || cookie.MaxAge >= 0 || cookie.Value != "" {
			t.Fatalf("expected session cookie cleared, got %#v", cookie)
		}
	})

	t.Run("clears the cookie even when revocation fails", func(t *testing.T) {
		t.Parallel()

		auth := &authServiceStub{revokeErr: application.ErrInvalidCredentials}
		handler := newTestRouter(t, auth, &eventServiceStub{})

		r := httptest.NewRequest(http.MethodGet, "/logout", nil)
		r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "stale-token"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		cookie := findCookie(w, sessionCookieName)
		if cookie == nil || cookie.MaxAge >= 0 {
			t.Fatalf("expected session cookie cleared, got %#v", cookie)
		}
	})
}
