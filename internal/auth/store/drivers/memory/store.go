// Package memory is a process-local store driver. Every repository guards its
// map with its own mutex and records carry an expiry checked on read.
package memory

import (
	"context"
	"time"

	"github.com/aussiebroadwan/bartab/internal/auth/domain"
	"github.com/aussiebroadwan/bartab/internal/auth/store"
	"github.com/aussiebroadwan/bartab/pkg/cryptox"
)

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

type Store struct {
	now        func() time.Time
	users      *usersRepo
	revoked    *revokedTokensRepo
	challenges *challengesRepo
}

var (
	_ store.Store   = (*Store)(nil)
	_ store.Sweeper = (*Store)(nil)
)

func NewStore(hasher *cryptox.Hasher, opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	clock := func() time.Time { return s.now() }
	s.users = &usersRepo{hasher: hasher, byEmail: make(map[string]domain.User)}
	s.revoked = &revokedTokensRepo{now: clock, records: make(map[string]time.Time)}
	s.challenges = &challengesRepo{now: clock, records: make(map[string]challengeRecord)}
	return s
}

func (s *Store) Users() store.Users                 { return s.users }
func (s *Store) RevokedTokens() store.RevokedTokens { return s.revoked }
func (s *Store) Challenges() store.Challenges       { return s.challenges }

func (s *Store) Close() error                 { return nil }
func (s *Store) Ping(_ context.Context) error { return nil }

// DeleteExpired drops expired revocation records and challenges.
func (s *Store) DeleteExpired(_ context.Context) (int64, error) {
	return s.revoked.sweep() + s.challenges.sweep(), nil
}
