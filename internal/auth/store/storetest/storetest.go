// Package storetest is a conformance suite every store driver runs from its
// own tests.
package storetest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/bartab/internal/auth/domain"
	"github.com/aussiebroadwan/bartab/internal/auth/store"
	"github.com/aussiebroadwan/bartab/pkg/cryptox"
	"github.com/aussiebroadwan/bartab/pkg/idx"
	"github.com/stretchr/testify/require"
)

// Harness is a freshly constructed driver plus the controls the suite needs.
type Harness struct {
	Store  store.Store
	Hasher *cryptox.Hasher

	// Advance moves the backend clock forward. When nil, expiry cases are
	// skipped.
	Advance func(time.Duration)
}

// Factory builds an isolated harness for one subtest.
type Factory func(t *testing.T) Harness

// Hasher returns a deliberately cheap hasher for tests.
func Hasher() *cryptox.Hasher {
	return cryptox.NewHasher("storetest-pepper", cryptox.Argon2Params{
		Memory:      64,
		Iterations:  1,
		Parallelism: 1,
		KeyLength:   16,
		SaltLength:  16,
	})
}

// NewUser builds a user with a hashed password.
func NewUser(t *testing.T, h *cryptox.Hasher, email, password string, twoFactor bool) domain.User {
	t.Helper()
	hash, err := h.Hash(password)
	require.NoError(t, err)
	return domain.User{
		ID:                idx.New().String(),
		Email:             domain.MustParseEmail(email),
		PasswordHash:      hash,
		RequiresTwoFactor: twoFactor,
		CreatedAt:         time.Now().UTC().Truncate(time.Millisecond),
	}
}

// NewChallenge returns a random challenge.
func NewChallenge(t *testing.T) domain.Challenge {
	t.Helper()
	code, err := domain.NewOneTimeCode()
	require.NoError(t, err)
	return domain.Challenge{ID: domain.NewChallengeID(), Code: code}
}

// Run executes the whole suite.
func Run(t *testing.T, newHarness Factory) {
	t.Run("Users", func(t *testing.T) { runUsers(t, newHarness) })
	t.Run("RevokedTokens", func(t *testing.T) { runRevokedTokens(t, newHarness) })
	t.Run("Challenges", func(t *testing.T) { runChallenges(t, newHarness) })
	t.Run("Ping", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.Store.Ping(context.Background()))
	})
}

func runUsers(t *testing.T, newHarness Factory) {
	ctx := context.Background()

	t.Run("add then get", func(t *testing.T) {
		h := newHarness(t)
		u := NewUser(t, h.Hasher, "bob@example.com", "password123", true)
		require.NoError(t, h.Store.Users().AddUser(ctx, u))

		got, err := h.Store.Users().GetUser(ctx, u.Email)
		require.NoError(t, err)
		requireSameUser(t, u, got)
	})

	t.Run("duplicate email conflicts and keeps original", func(t *testing.T) {
		h := newHarness(t)
		first := NewUser(t, h.Hasher, "bob@example.com", "password123", false)
		second := NewUser(t, h.Hasher, "bob@example.com", "different456", true)

		require.NoError(t, h.Store.Users().AddUser(ctx, first))
		err := h.Store.Users().AddUser(ctx, second)
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		got, err := h.Store.Users().GetUser(ctx, first.Email)
		require.NoError(t, err)
		requireSameUser(t, first, got)
	})

	t.Run("unknown user", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.Store.Users().GetUser(ctx, domain.MustParseEmail("nobody@example.com"))
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("validate credentials", func(t *testing.T) {
		h := newHarness(t)
		u := NewUser(t, h.Hasher, "bob@example.com", "password123", false)
		require.NoError(t, h.Store.Users().AddUser(ctx, u))

		good, err := domain.ParsePassword("password123")
		require.NoError(t, err)
		bad, err := domain.ParsePassword("password124")
		require.NoError(t, err)

		require.NoError(t, h.Store.Users().ValidateCredentials(ctx, u.Email, good))
		require.ErrorIs(t, h.Store.Users().ValidateCredentials(ctx, u.Email, bad), store.ErrInvalidCredentials)
		require.ErrorIs(t,
			h.Store.Users().ValidateCredentials(ctx, domain.MustParseEmail("nobody@example.com"), good),
			store.ErrNotFound)
	})

	t.Run("concurrent adds have one winner", func(t *testing.T) {
		h := newHarness(t)
		const n = 8
		users := make([]domain.User, n)
		for i := range users {
			users[i] = NewUser(t, h.Hasher, "race@example.com", "password123", false)
		}

		var wins, conflicts atomic.Int32
		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := h.Store.Users().AddUser(ctx, users[i])
				switch {
				case err == nil:
					wins.Add(1)
				case errors.Is(err, store.ErrAlreadyExists):
					conflicts.Add(1)
				}
			}()
		}
		wg.Wait()

		require.EqualValues(t, 1, wins.Load())
		require.EqualValues(t, n-1, conflicts.Load())
	})
}

func runRevokedTokens(t *testing.T, newHarness Factory) {
	ctx := context.Background()

	t.Run("revoke marks token", func(t *testing.T) {
		h := newHarness(t)
		repo := h.Store.RevokedTokens()

		revoked, err := repo.IsRevoked(ctx, "token-a")
		require.NoError(t, err)
		require.False(t, revoked)

		require.NoError(t, repo.Revoke(ctx, "token-a", time.Minute))
		revoked, err = repo.IsRevoked(ctx, "token-a")
		require.NoError(t, err)
		require.True(t, revoked)

		revoked, err = repo.IsRevoked(ctx, "token-b")
		require.NoError(t, err)
		require.False(t, revoked)
	})

	t.Run("revoke is idempotent", func(t *testing.T) {
		h := newHarness(t)
		repo := h.Store.RevokedTokens()
		require.NoError(t, repo.Revoke(ctx, "token-a", time.Minute))
		require.NoError(t, repo.Revoke(ctx, "token-a", time.Minute))

		revoked, err := repo.IsRevoked(ctx, "token-a")
		require.NoError(t, err)
		require.True(t, revoked)
	})

	t.Run("non-positive ttl is a no-op", func(t *testing.T) {
		h := newHarness(t)
		repo := h.Store.RevokedTokens()
		require.NoError(t, repo.Revoke(ctx, "token-a", 0))

		revoked, err := repo.IsRevoked(ctx, "token-a")
		require.NoError(t, err)
		require.False(t, revoked)
	})

	t.Run("record expires", func(t *testing.T) {
		h := newHarness(t)
		if h.Advance == nil {
			t.Skip("driver cannot advance time")
		}
		repo := h.Store.RevokedTokens()
		require.NoError(t, repo.Revoke(ctx, "token-a", time.Minute))

		h.Advance(2 * time.Minute)
		revoked, err := repo.IsRevoked(ctx, "token-a")
		require.NoError(t, err)
		require.False(t, revoked)
		requireSweep(t, h)
	})
}

func runChallenges(t *testing.T, newHarness Factory) {
	ctx := context.Background()
	alice := domain.MustParseEmail("alice@example.com")

	t.Run("get without issue", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.Store.Challenges().Get(ctx, alice)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("issue then get", func(t *testing.T) {
		h := newHarness(t)
		c := NewChallenge(t)
		require.NoError(t, h.Store.Challenges().Issue(ctx, alice, c, time.Minute))

		got, err := h.Store.Challenges().Get(ctx, alice)
		require.NoError(t, err)
		require.Equal(t, c.ID.String(), got.ID.String())
		require.Equal(t, c.Code.Expose(), got.Code.Expose())
	})

	t.Run("reissue replaces", func(t *testing.T) {
		h := newHarness(t)
		first, second := NewChallenge(t), NewChallenge(t)
		require.NoError(t, h.Store.Challenges().Issue(ctx, alice, first, time.Minute))
		require.NoError(t, h.Store.Challenges().Issue(ctx, alice, second, time.Minute))

		got, err := h.Store.Challenges().Get(ctx, alice)
		require.NoError(t, err)
		require.Equal(t, second.ID.String(), got.ID.String())

		require.ErrorIs(t, h.Store.Challenges().Consume(ctx, alice, first.ID), store.ErrNotFound)
	})

	t.Run("consume is single use", func(t *testing.T) {
		h := newHarness(t)
		c := NewChallenge(t)
		require.NoError(t, h.Store.Challenges().Issue(ctx, alice, c, time.Minute))

		require.NoError(t, h.Store.Challenges().Consume(ctx, alice, c.ID))
		require.ErrorIs(t, h.Store.Challenges().Consume(ctx, alice, c.ID), store.ErrNotFound)

		_, err := h.Store.Challenges().Get(ctx, alice)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("consume with other id leaves challenge", func(t *testing.T) {
		h := newHarness(t)
		c := NewChallenge(t)
		require.NoError(t, h.Store.Challenges().Issue(ctx, alice, c, time.Minute))

		err := h.Store.Challenges().Consume(ctx, alice, domain.NewChallengeID())
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = h.Store.Challenges().Get(ctx, alice)
		require.NoError(t, err)
	})

	t.Run("challenges are per email", func(t *testing.T) {
		h := newHarness(t)
		bob := domain.MustParseEmail("bob@example.com")
		c := NewChallenge(t)
		require.NoError(t, h.Store.Challenges().Issue(ctx, alice, c, time.Minute))

		_, err := h.Store.Challenges().Get(ctx, bob)
		require.ErrorIs(t, err, store.ErrNotFound)
		require.ErrorIs(t, h.Store.Challenges().Consume(ctx, bob, c.ID), store.ErrNotFound)
	})

	t.Run("concurrent consume has one winner", func(t *testing.T) {
		h := newHarness(t)
		c := NewChallenge(t)
		require.NoError(t, h.Store.Challenges().Issue(ctx, alice, c, time.Minute))

		const n = 8
		var wins atomic.Int32
		var wg sync.WaitGroup
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if h.Store.Challenges().Consume(ctx, alice, c.ID) == nil {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		require.EqualValues(t, 1, wins.Load())
	})

	t.Run("challenge expires", func(t *testing.T) {
		h := newHarness(t)
		if h.Advance == nil {
			t.Skip("driver cannot advance time")
		}
		c := NewChallenge(t)
		require.NoError(t, h.Store.Challenges().Issue(ctx, alice, c, time.Minute))

		h.Advance(2 * time.Minute)
		_, err := h.Store.Challenges().Get(ctx, alice)
		require.ErrorIs(t, err, store.ErrNotFound)
		require.ErrorIs(t, h.Store.Challenges().Consume(ctx, alice, c.ID), store.ErrNotFound)
		requireSweep(t, h)
	})
}

// requireSweep checks that drivers without native expiry purge the expired
// record left behind by the calling case.
func requireSweep(t *testing.T, h Harness) {
	t.Helper()
	sw, ok := h.Store.(store.Sweeper)
	if !ok {
		return
	}
	n, err := sw.DeleteExpired(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = sw.DeleteExpired(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
}

func requireSameUser(t *testing.T, want, got domain.User) {
	t.Helper()
	require.Equal(t, want.ID, got.ID)
	require.Equal(t, want.Email, got.Email)
	require.Equal(t, want.PasswordHash, got.PasswordHash)
	require.Equal(t, want.RequiresTwoFactor, got.RequiresTwoFactor)
	require.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at %v != %v", want.CreatedAt, got.CreatedAt)
}
