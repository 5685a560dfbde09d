package http

import (
	"fmt"
	"log/slog"
	"net/http"
)

// ServerConfig collects the pieces needed to assemble the web surface.
type ServerConfig struct {
	Auth          authService
	Events        eventService
	SessionSecret []byte
	SecureCookies bool
	Logger        *slog.Logger
}

// NewServerHandler composes the renderer, handlers, router, and middleware
// into the handler served by the process.
func NewServerHandler(cfg ServerConfig) (http.Handler, error) {
	if cfg.Auth == nil {
		return nil, fmt.Errorf("auth service is required")
	}
	if cfg.Events == nil {
		return nil, fmt.Errorf("event service is required")
	}
	if len(cfg.SessionSecret) == 0 {
		return nil, fmt.Errorf("session secret is required")
	}

	logger := defaultLogger(cfg.Logger)

	renderer, err := newRenderer(logger)
	if err != nil {
		return nil, err
	}

	authHandler := NewAuthHandler(cfg.Auth, renderer, cfg.SecureCookies, logger)
	eventHandler := NewEventHandler(cfg.Events, renderer, logger)

	return NewRouter(RouterConfig{
		Auth:           authHandler,
		Events:         eventHandler,
		RequireSession: RequireSession(cfg.Auth, logger),
		Middleware: []func(http.Handler) http.Handler{
			RequestLogger(logger),
			CSRFProtection(cfg.SessionSecret, cfg.SecureCookies),
		},
	}), nil
}
