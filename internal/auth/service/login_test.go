package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/bartab/internal/auth/domain"
	"github.com/aussiebroadwan/bartab/internal/auth/service"
	"github.com/stretchr/testify/require"
)

func TestLoginWithoutTwoFactor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signup(t, "bob@example.com", "password123", false)

	res, err := f.login.Login(ctx, "bob@example.com", "password123")
	require.NoError(t, err)
	require.False(t, res.TwoFactorRequired())
	require.False(t, res.Token.Value.IsZero())
	require.Empty(t, f.notifier.Messages())

	claims, err := f.tokens.Validate(ctx, res.Token.Value.Expose())
	require.NoError(t, err)
	require.Equal(t, "bob@example.com", claims.Subject.String())
	require.WithinDuration(t, f.clock.Now().Add(10*time.Minute), claims.ExpiresAt, 0)
}

func TestLoginRejections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{name: "malformed email", email: "not-an-email", password: "password123", want: service.ErrInvalidCredentials},
		{name: "short password", email: "bob@example.com", password: "pass", want: service.ErrInvalidCredentials},
		{name: "unknown user", email: "eve@example.com", password: "password123", want: service.ErrIncorrectCredentials},
		{name: "wrong password", email: "bob@example.com", password: "password124", want: service.ErrIncorrectCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.signup(t, "bob@example.com", "password123", false)

			_, err := f.login.Login(ctx, tt.email, tt.password)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTwoFactorFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signup(t, "carol@example.com", "password123", true)

	res, err := f.login.Login(ctx, "carol@example.com", "password123")
	require.NoError(t, err)
	require.True(t, res.TwoFactorRequired())
	require.True(t, res.Token.Value.IsZero())

	code := f.emailedCode(t, "carol@example.com")
	id := res.ChallengeID.String()

	// A wrong code is rejected but leaves the challenge usable.
	_, err = f.login.VerifyTwoFactor(ctx, "carol@example.com", id, otherCode(code))
	require.ErrorIs(t, err, service.ErrIncorrectCredentials)

	token, err := f.login.VerifyTwoFactor(ctx, "carol@example.com", id, code)
	require.NoError(t, err)

	claims, err := f.tokens.Validate(ctx, token.Value.Expose())
	require.NoError(t, err)
	require.Equal(t, "carol@example.com", claims.Subject.String())

	// Single use.
	_, err = f.login.VerifyTwoFactor(ctx, "carol@example.com", id, code)
	require.ErrorIs(t, err, service.ErrIncorrectCredentials)
}

func TestVerifyWithAnotherChallengeID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signup(t, "carol@example.com", "password123", true)

	res, err := f.login.Login(ctx, "carol@example.com", "password123")
	require.NoError(t, err)
	code := f.emailedCode(t, "carol@example.com")

	_, err = f.login.VerifyTwoFactor(ctx, "carol@example.com", domain.NewChallengeID().String(), code)
	require.ErrorIs(t, err, service.ErrIncorrectCredentials)

	_, err = f.login.VerifyTwoFactor(ctx, "carol@example.com", res.ChallengeID.String(), code)
	require.NoError(t, err)
}

func TestReissuedChallengeInvalidatesPrevious(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signup(t, "alice@example.com", "password123", true)

	first, err := f.login.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	firstCode := f.emailedCode(t, "alice@example.com")

	second, err := f.login.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	secondCode := f.emailedCode(t, "alice@example.com")
	require.NotEqual(t, first.ChallengeID.String(), second.ChallengeID.String())

	_, err = f.login.VerifyTwoFactor(ctx, "alice@example.com", first.ChallengeID.String(), firstCode)
	require.ErrorIs(t, err, service.ErrIncorrectCredentials)

	_, err = f.login.VerifyTwoFactor(ctx, "alice@example.com", second.ChallengeID.String(), secondCode)
	require.NoError(t, err)
}

func TestVerifyTwoFactorInputErrors(t *testing.T) {
	ctx := context.Background()
	validID := domain.NewChallengeID().String()

	tests := []struct {
		name  string
		email string
		id    string
		code  string
		want  error
	}{
		{name: "malformed email", email: "carol", id: validID, code: "123456", want: service.ErrInvalidCredentials},
		{name: "malformed challenge id", email: "carol@example.com", id: "not-a-uuid", code: "123456", want: service.ErrInvalidChallengeID},
		{name: "non numeric code", email: "carol@example.com", id: validID, code: "12a456", want: service.ErrInvalidCode},
		{name: "short code", email: "carol@example.com", id: validID, code: "12345", want: service.ErrInvalidCode},
		{name: "code below range", email: "carol@example.com", id: validID, code: "099999", want: service.ErrInvalidCode},
		{name: "no pending challenge", email: "carol@example.com", id: validID, code: "123456", want: service.ErrIncorrectCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.login.VerifyTwoFactor(ctx, tt.email, tt.id, tt.code)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestChallengeExpires(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signup(t, "carol@example.com", "password123", true)

	res, err := f.login.Login(ctx, "carol@example.com", "password123")
	require.NoError(t, err)
	code := f.emailedCode(t, "carol@example.com")

	f.clock.Advance(10*time.Minute + time.Second)

	_, err = f.login.VerifyTwoFactor(ctx, "carol@example.com", res.ChallengeID.String(), code)
	require.ErrorIs(t, err, service.ErrIncorrectCredentials)
}

func TestNotifierFailureIsUnexpected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signup(t, "carol@example.com", "password123", true)
	f.notifier.FailWith(errors.New("smtp down"))

	res, err := f.login.Login(ctx, "carol@example.com", "password123")
	require.ErrorIs(t, err, service.ErrUnexpected)
	require.False(t, res.TwoFactorRequired())

	// The challenge was stored before sending and is left to expire.
	_, err = f.store.Challenges().Get(ctx, domain.MustParseEmail("carol@example.com"))
	require.NoError(t, err)
}

func TestConcurrentVerifyHasOneWinner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signup(t, "carol@example.com", "password123", true)

	res, err := f.login.Login(ctx, "carol@example.com", "password123")
	require.NoError(t, err)
	code := f.emailedCode(t, "carol@example.com")

	const n = 10
	var wins atomic.Int32
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.login.VerifyTwoFactor(ctx, "carol@example.com", res.ChallengeID.String(), code)
			if err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, wins.Load())
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signup(t, "bob@example.com", "password123", false)

	res, err := f.login.Login(ctx, "bob@example.com", "password123")
	require.NoError(t, err)
	token := res.Token.Value.Expose()

	require.NoError(t, f.login.Logout(ctx, token))

	_, err = f.tokens.Validate(ctx, token)
	require.ErrorIs(t, err, service.ErrRevoked)

	require.ErrorIs(t, f.login.Logout(ctx, token), service.ErrMissingOrInvalidToken)
	require.ErrorIs(t, f.login.Logout(ctx, ""), service.ErrMissingOrInvalidToken)
	require.ErrorIs(t, f.login.Logout(ctx, "garbage"), service.ErrMissingOrInvalidToken)
}
