package authsdk

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

// ErrNoSessionCookie is returned when a successful login response carried
// no session cookie.
var ErrNoSessionCookie = errors.New("authsdk: response has no session cookie")

// ErrLoggedOut is returned by Session methods after Logout.
var ErrLoggedOut = errors.New("authsdk: session is logged out")

// Session is a logged-in user. It is safe for concurrent use.
type Session struct {
	client *SDKClient
	email  string

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

func newSession(client *SDKClient, email string, cookie *http.Cookie) (*Session, error) {
	if cookie == nil || cookie.Value == "" {
		return nil, ErrNoSessionCookie
	}

	s := &Session{client: client, email: email, token: cookie.Value}
	if cookie.MaxAge > 0 {
		s.expiresAt = time.Now().Add(time.Duration(cookie.MaxAge) * time.Second)
	}
	return s, nil
}

// sessionCookie returns the session cookie set by resp, if any.
func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}

// Email is the account this session belongs to.
func (s *Session) Email() string { return s.email }

// Token returns the raw session token, or "" after Logout.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// ExpiresAt is when the service will stop accepting the token, as told by
// the cookie lifetime. Zero if unknown.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// Valid asks the service whether the session token is still accepted.
func (s *Session) Valid(ctx context.Context) (bool, error) {
	token := s.Token()
	if token == "" {
		return false, ErrLoggedOut
	}
	return s.client.VerifyToken(ctx, token)
}

// Logout revokes the session token on the service.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" {
		return ErrLoggedOut
	}

	resp, err := s.client.doRequest(ctx, http.MethodPost, "/logout", nil,
		&http.Cookie{Name: SessionCookieName, Value: s.token})
	if err != nil {
		return err
	}
	if _, err := decodeJSON(resp, nil, http.StatusOK); err != nil {
		return err
	}

	s.token = ""
	return nil
}
