package session

import (
	"net/http"
	"time"
)

// CookieName carries the __Host- prefix, which pins the cookie to this
// host, requires Secure, and forbids a Domain attribute.
const CookieName = "__Host-session"

// CookieOptions configures session cookie issuance. Zero values fall
// back to the safe defaults the __Host- prefix demands.
type CookieOptions struct {
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
}

func (o CookieOptions) build(value string) *http.Cookie {
	if o.Path == "" {
		o.Path = "/"
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     o.Path,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: o.SameSite,
	}
}

// SetCookie issues the session cookie with the given expiry.
func SetCookie(w http.ResponseWriter, sessionID string, expiresAt time.Time, opts CookieOptions) {
	cookie := opts.build(sessionID)
	cookie.Expires = expiresAt
	http.SetCookie(w, cookie)
}

// ClearCookie expires the session cookie on the client.
func ClearCookie(w http.ResponseWriter, opts CookieOptions) {
	cookie := opts.build("")
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)
}
