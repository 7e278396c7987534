package service_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/bartab/internal/auth/domain"
	"github.com/aussiebroadwan/bartab/internal/auth/service"
	"github.com/aussiebroadwan/bartab/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

// spyRevoked records Revoke calls and can be told to fail.
type spyRevoked struct {
	ttls []time.Duration
	err  error
}

func (s *spyRevoked) Revoke(_ context.Context, _ string, ttl time.Duration) error {
	if s.err != nil {
		return s.err
	}
	s.ttls = append(s.ttls, ttl)
	return nil
}

func (s *spyRevoked) IsRevoked(context.Context, string) (bool, error) {
	return false, s.err
}

func issue(t *testing.T, f *fixture, email string) string {
	t.Helper()
	tok, err := f.tokens.Issue(context.Background(), domain.MustParseEmail(email))
	require.NoError(t, err)
	return tok.Value.Expose()
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		f := newFixture(t)
		claims, err := f.tokens.Validate(ctx, issue(t, f, "bob@example.com"))
		require.NoError(t, err)
		require.Equal(t, "bob@example.com", claims.Subject.String())
		require.NotEmpty(t, claims.ID)
	})

	t.Run("revoked before expiry", func(t *testing.T) {
		f := newFixture(t)
		token := issue(t, f, "bob@example.com")
		require.NoError(t, f.tokens.Revoke(ctx, token))
		require.NoError(t, f.tokens.Revoke(ctx, token))

		_, err := f.tokens.Validate(ctx, token)
		require.ErrorIs(t, err, service.ErrRevoked)
	})

	t.Run("expired", func(t *testing.T) {
		f := newFixture(t)
		token := issue(t, f, "bob@example.com")
		f.clock.Advance(10 * time.Minute)

		_, err := f.tokens.Validate(ctx, token)
		require.ErrorIs(t, err, service.ErrExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.tokens.Validate(ctx, "not.a.jwt")
		require.ErrorIs(t, err, service.ErrMalformed)
	})

	t.Run("foreign signature", func(t *testing.T) {
		f := newFixture(t)
		other, err := jwtx.NewHS256([]byte("ffffffffffffffffffffffffffffffff"), "bartab-auth")
		require.NoError(t, err)
		forged, err := other.Sign(jwtx.NewClaims("bob@example.com", "bartab-auth", time.Minute, f.clock.Now()))
		require.NoError(t, err)

		_, err = f.tokens.Validate(ctx, forged)
		require.ErrorIs(t, err, service.ErrMalformed)
	})

	t.Run("subject is not an email", func(t *testing.T) {
		f := newFixture(t)
		signer, err := jwtx.NewHS256(testSecret, "bartab-auth")
		require.NoError(t, err)
		raw, err := signer.Sign(jwtx.NewClaims("bob", "bartab-auth", time.Minute, f.clock.Now()))
		require.NoError(t, err)

		_, err = f.tokens.Validate(ctx, raw)
		require.ErrorIs(t, err, service.ErrMalformed)
	})

	t.Run("revocation store failure fails closed", func(t *testing.T) {
		f := newFixture(t)
		token := issue(t, f, "bob@example.com")
		f.tokens.Revoked = &spyRevoked{err: errors.New("redis down")}

		_, err := f.tokens.Validate(ctx, token)
		require.ErrorIs(t, err, service.ErrRevoked)
	})
}

func TestRevokeTTL(t *testing.T) {
	ctx := context.Background()

	t.Run("matches remaining lifetime", func(t *testing.T) {
		f := newFixture(t)
		spy := &spyRevoked{}
		token := issue(t, f, "bob@example.com")
		f.tokens.Revoked = spy

		f.clock.Advance(4 * time.Minute)
		require.NoError(t, f.tokens.Revoke(ctx, token))
		require.Equal(t, []time.Duration{6 * time.Minute}, spy.ttls)
	})

	t.Run("expired token needs no record", func(t *testing.T) {
		f := newFixture(t)
		spy := &spyRevoked{}
		token := issue(t, f, "bob@example.com")
		f.tokens.Revoked = spy

		f.clock.Advance(time.Hour)
		require.NoError(t, f.tokens.Revoke(ctx, token))
		require.Empty(t, spy.ttls)
	})

	t.Run("undecodable token gets full ttl", func(t *testing.T) {
		f := newFixture(t)
		spy := &spyRevoked{}
		f.tokens.Revoked = spy

		require.NoError(t, f.tokens.Revoke(ctx, "garbage"))
		require.Equal(t, []time.Duration{10 * time.Minute}, spy.ttls)
	})

	t.Run("store failure is unexpected", func(t *testing.T) {
		f := newFixture(t)
		token := issue(t, f, "bob@example.com")
		f.tokens.Revoked = &spyRevoked{err: errors.New("redis down")}

		require.ErrorIs(t, f.tokens.Revoke(ctx, token), service.ErrUnexpected)
	})
}

func TestTokenCookie(t *testing.T) {
	f := newFixture(t)
	tok, err := f.tokens.Issue(context.Background(), domain.MustParseEmail("bob@example.com"))
	require.NoError(t, err)

	c := f.tokens.Cookie(tok)
	require.Equal(t, "jwt", c.Name)
	require.Equal(t, tok.Value.Expose(), c.Value)
	require.Equal(t, "/", c.Path)
	require.True(t, c.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)
	require.Equal(t, 600, c.MaxAge)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(c)
	require.Equal(t, tok.Value.Expose(), f.tokens.TokenFromRequest(req))

	require.Equal(t, -1, f.tokens.ClearCookie().MaxAge)
}
