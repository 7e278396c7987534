// Package redis stores users, revocation records and challenges in Redis.
// Expiry is native (SET ... EX) so the driver needs no sweeper.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/bartab/internal/auth/store"
	"github.com/aussiebroadwan/bartab/pkg/cryptox"
	"github.com/redis/go-redis/v9"
)

// Default key prefixes. Revocation and challenge prefixes match the keys the
// service has always written so existing records stay readable.
const (
	DefaultUserPrefix      = "user:"
	DefaultRevokedPrefix   = "banned_token:"
	DefaultChallengePrefix = "two_fa_code:"
)

var errBackend = errors.New("redis: backend unavailable")

// Option configures a Store.
type Option func(*Store)

// WithNamespace prepends ns to every key, e.g. "auth:".
func WithNamespace(ns string) Option {
	return func(s *Store) {
		s.userPrefix = ns + DefaultUserPrefix
		s.revokedPrefix = ns + DefaultRevokedPrefix
		s.challengePrefix = ns + DefaultChallengePrefix
	}
}

type Store struct {
	client redis.UniversalClient
	hasher *cryptox.Hasher

	userPrefix      string
	revokedPrefix   string
	challengePrefix string
}

var _ store.Store = (*Store)(nil)

func NewStore(client redis.UniversalClient, hasher *cryptox.Hasher, opts ...Option) *Store {
	s := &Store{
		client:          client,
		hasher:          hasher,
		userPrefix:      DefaultUserPrefix,
		revokedPrefix:   DefaultRevokedPrefix,
		challengePrefix: DefaultChallengePrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Users() store.Users {
	return &usersRepo{client: s.client, hasher: s.hasher, prefix: s.userPrefix}
}

func (s *Store) RevokedTokens() store.RevokedTokens {
	return &revokedTokensRepo{client: s.client, prefix: s.revokedPrefix}
}

func (s *Store) Challenges() store.Challenges {
	return &challengesRepo{client: s.client, prefix: s.challengePrefix}
}

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", errBackend, err)
	}
	return nil
}
