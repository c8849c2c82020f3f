package session

import (
	"encoding/base64"
	"net/http"
	"strings"
)

const flashCookie = "flash"

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

// SetFlash stores a notice until the next page reads it.
func (m *Manager) SetFlash(w http.ResponseWriter, category, message string) {
	value := base64.RawURLEncoding.EncodeToString([]byte(category + "\n" + message))
	http.SetCookie(w, m.flashCookie(value, 0))
}

// PopFlash returns the pending notice, if any, and clears it.
func (m *Manager) PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}

	http.SetCookie(w, m.flashCookie("", -1))

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	category, message, ok := strings.Cut(string(raw), "\n")
	if !ok || message == "" {
		return nil
	}
	return &Flash{Category: category, Message: message}
}

func (m *Manager) flashCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     flashCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
