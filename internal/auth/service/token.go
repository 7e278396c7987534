package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aussiebroadwan/bartab/internal/auth/domain"
	"github.com/aussiebroadwan/bartab/internal/auth/metrics"
	"github.com/aussiebroadwan/bartab/internal/auth/store"
	"github.com/aussiebroadwan/bartab/pkg/httpx"
	"github.com/aussiebroadwan/bartab/pkg/jwtx"
	"github.com/aussiebroadwan/bartab/pkg/slogx"
)

// TokenService issues, validates and revokes session tokens. It keeps no
// state of its own beyond the revocation store.
type TokenService struct {
	Signer  *jwtx.HS256
	Revoked store.RevokedTokens
	TTL     time.Duration
	Cookies httpx.CookieConfig
	Metrics *metrics.Metrics

	// Now defaults to time.Now.
	Now func() time.Time
}

func NewTokenService(signer *jwtx.HS256, revoked store.RevokedTokens, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = jwtx.DefaultTokenTTL
	}
	return &TokenService{
		Signer:  signer,
		Revoked: revoked,
		TTL:     ttl,
		Cookies: httpx.DefaultCookieConfig,
		Now:     time.Now,
	}
}

func (s *TokenService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Issue signs a token for email valid for the configured TTL.
func (s *TokenService) Issue(_ context.Context, email domain.Email) (domain.Token, error) {
	claims := jwtx.NewClaims(email.String(), s.Signer.Issuer(), s.TTL, s.now())

	raw, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.Token{}, unexpected("sign token", err)
	}
	s.Metrics.TokenIssued()
	return domain.Token{Value: domain.NewSecret(raw), ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Validate checks revocation first, then signature and structure, then
// expiry. A revocation lookup that fails counts as revoked.
func (s *TokenService) Validate(ctx context.Context, token string) (domain.TokenClaims, error) {
	revoked, err := s.Revoked.IsRevoked(ctx, token)
	if err != nil {
		slogx.FromContext(ctx).Error("revocation lookup failed, rejecting token", "err", err)
	}
	if err != nil || revoked {
		s.Metrics.TokenValidation(resultRevoked)
		return domain.TokenClaims{}, ErrRevoked
	}

	claims, err := s.Signer.Verify(token, s.now())
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			s.Metrics.TokenValidation(resultExpired)
			return domain.TokenClaims{}, ErrExpired
		}
		s.Metrics.TokenValidation(resultMalformed)
		return domain.TokenClaims{}, ErrMalformed
	}

	subject, err := domain.ParseEmail(claims.Subject)
	if err != nil {
		s.Metrics.TokenValidation(resultMalformed)
		return domain.TokenClaims{}, ErrMalformed
	}

	out := domain.TokenClaims{
		Subject:   subject,
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	s.Metrics.TokenValidation(resultValid)
	return out, nil
}

// Revoke records token as revoked for the rest of its lifetime. Tokens that
// cannot be decoded are revoked for the full TTL; expired ones need nothing.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	ttl := s.TTL
	if claims, err := s.Signer.Parse(token); err == nil {
		ttl = claims.Remaining(s.now())
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.Revoked.Revoke(ctx, token, ttl); err != nil {
		return unexpected("revoke token", err)
	}
	s.Metrics.TokenRevoked()
	return nil
}

// Cookie binds t to the session cookie: HttpOnly, SameSite=Lax, Path=/ and
// living as long as the token.
func (s *TokenService) Cookie(t domain.Token) *http.Cookie {
	return s.Cookies.Issue(t.Value.Expose(), s.TTL)
}

// ClearCookie removes the session cookie from the browser.
func (s *TokenService) ClearCookie() *http.Cookie {
	return s.Cookies.Clear()
}

// TokenFromRequest returns the session cookie value, or "".
func (s *TokenService) TokenFromRequest(r *http.Request) string {
	return s.Cookies.Read(r)
}
