package httpx

import (
	"net/http"
	"time"
)

// CookieConfig describes the session cookie handed to browsers.
type CookieConfig struct {
	Name   string
	Path   string
	Secure bool
}

// DefaultCookieConfig matches the cookie the auth service has always issued.
var DefaultCookieConfig = CookieConfig{Name: "jwt", Path: "/"}

// Issue builds an HttpOnly, SameSite=Lax cookie carrying value for ttl.
func (c CookieConfig) Issue(value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    value,
		Path:     c.path(),
		MaxAge:   int(ttl / time.Second),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Clear builds a cookie that instructs the browser to drop the session.
func (c CookieConfig) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     c.path(),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Read returns the cookie value from r, or "" when absent.
func (c CookieConfig) Read(r *http.Request) string {
	ck, err := r.Cookie(c.Name)
	if err != nil {
		return ""
	}
	return ck.Value
}

func (c CookieConfig) path() string {
	if c.Path == "" {
		return "/"
	}
	return c.Path
}
