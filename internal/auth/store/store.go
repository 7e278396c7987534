package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/bartab/internal/auth/domain"
)

var (
	ErrNotFound           = errors.New("store: not found")
	ErrAlreadyExists      = errors.New("store: already exists")
	ErrInvalidCredentials = errors.New("store: invalid credentials")
)

// Store is the root data access interface. Concrete drivers (memory, sqlite,
// redis) implement this and expose one sub-repository per concern.
type Store interface {
	Users() Users
	RevokedTokens() RevokedTokens
	Challenges() Challenges

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
}

// Sweeper is implemented by drivers whose backend has no native per-key
// expiry. DeleteExpired purges expired challenges and revocation records and
// reports how many rows were removed.
type Sweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

type Users interface {
	// AddUser inserts u. It returns ErrAlreadyExists if the email is taken;
	// concurrent calls for the same email have exactly one winner.
	AddUser(ctx context.Context, u domain.User) error

	// GetUser returns the user registered under email.
	GetUser(ctx context.Context, email domain.Email) (domain.User, error)

	// ValidateCredentials returns nil when password matches the stored hash,
	// ErrNotFound for an unknown email and ErrInvalidCredentials otherwise.
	ValidateCredentials(ctx context.Context, email domain.Email, password domain.Password) error
}

type RevokedTokens interface {
	// Revoke marks token as revoked for ttl. Revoking twice is not an error;
	// a non-positive ttl is a no-op.
	Revoke(ctx context.Context, token string, ttl time.Duration) error

	// IsRevoked reports whether an unexpired revocation record exists.
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type Challenges interface {
	// Issue stores c for email, replacing any previous challenge, and expires
	// it after ttl.
	Issue(ctx context.Context, email domain.Email, c domain.Challenge, ttl time.Duration) error

	// Get returns the live challenge for email or ErrNotFound.
	Get(ctx context.Context, email domain.Email) (domain.Challenge, error)

	// Consume deletes the challenge for email if its id equals id. It returns
	// ErrNotFound when there is nothing to delete, so of two racing calls only
	// one succeeds.
	Consume(ctx context.Context, email domain.Email, id domain.ChallengeID) error
}
