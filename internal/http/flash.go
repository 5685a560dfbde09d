package http

import (
	"encoding/base64"
	"net/http"
	"strings"
	"time"
)

const flashCookieName = "flash"

// Flash is a one-shot status message rendered on the next page view.
// Kind is a presentation hint: "success" or "danger".
type Flash struct {
	Kind    string
	Message string
}

// setFlash queues a status message for the next rendered page.
func setFlash(w http.ResponseWriter, kind, message string) {
	value := base64.RawURLEncoding.EncodeToString([]byte(kind + "|" + message))
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
	})
}

// popFlash consumes a queued status message, clearing its cookie.
func popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})

	decoded, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	kind, message, found := strings.Cut(string(decoded), "|")
	if !found || message == "" {
		return nil
	}

	return &Flash{Kind: kind, Message: message}
}
