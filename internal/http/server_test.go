package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/event-calendar/internal/application"
)

func TestNewServerHandler(t *testing.T) {
	t.Parallel()

	t.Run("requires every dependency", func(t *testing.T) {
		t.Parallel()

		auth := &authServiceStub{}
		events := &eventServiceStub{}
		secret := []byte("0123456789abcdef0123456789abcdef")

		if _, err := NewServerHandler(ServerConfig{Events: events, SessionSecret: secret}); err == nil {
			t.Fatalf("expected error without auth service")
		}
		if _, err := NewServerHandler(ServerConfig{Auth: auth, SessionSecret: secret}); err == nil {
			t.Fatalf("expected error without event service")
		}
		if _, err := NewServerHandler(ServerConfig{Auth: auth, Events: events}); err == nil {
			t.Fatalf("expected error without session secret")
		}
		if _, err := NewServerHandler(ServerConfig{Auth: auth, Events: events, SessionSecret: secret}); err != nil {
			t.Fatalf("NewServerHandler failed: %v", err)
		}
	})

	t.Run("serves the login page through the full stack", func(t *testing.T) {
		t.Parallel()

		auth := &authServiceStub{validateErr: application.ErrUnauthorized}
		handler, err := NewServerHandler(ServerConfig{
			Auth:          auth,
			Events:        &eventServiceStub{},
			SessionSecret: []byte("0123456789abcdef0123456789abcdef"),
		})
		if err != nil {
			t.Fatalf("NewServerHandler failed: %v", err)
		}

		r := httptest.NewRequest(http.MethodGet, "/login", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "csrf") {
			t.Fatalf("expected the login form to embed a CSRF token")
		}
	})

	t.Run("rejects form posts without a CSRF token", func(t *testing.T) {
		t.Parallel()

		auth := &authServiceStub{validateErr: application.ErrUnauthorized}
		handler, err := NewServerHandler(ServerConfig{
			Auth:          auth,
			Events:        &eventServiceStub{},
			SessionSecret: []byte("0123456789abcdef0123456789abcdef"),
		})
		if err != nil {
			t.Fatalf("NewServerHandler failed: %v", err)
		}

		r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("email=a%40b.c&password=x"))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403 without CSRF token, got %d", w.Code)
		}
	})
}
