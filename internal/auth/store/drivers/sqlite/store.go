package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/bartab/internal/auth/store"
	"github.com/aussiebroadwan/bartab/pkg/cryptox"
	_ "modernc.org/sqlite"
)

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now when computing and checking expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

type Store struct {
	db     *sql.DB
	dsn    string
	hasher *cryptox.Hasher
	now    func() time.Time
}

var (
	_ store.Store   = (*Store)(nil)
	_ store.Sweeper = (*Store)(nil)
)

func NewStore(dsn string, hasher *cryptox.Hasher, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// One connection: writes are serialised and ":memory:" keeps a single
	// database instead of one per pooled connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db, dsn: dsn, hasher: hasher, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Users() store.Users                 { return &usersRepo{db: s.db, hasher: s.hasher} }
func (s *Store) RevokedTokens() store.RevokedTokens { return &revokedTokensRepo{db: s.db, now: s.now} }
func (s *Store) Challenges() store.Challenges       { return &challengesRepo{db: s.db, now: s.now} }

// DeleteExpired removes expired revocation records and challenges.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	now := toMillis(s.now())
	var total int64
	for _, q := range []string{
		`DELETE FROM revoked_tokens WHERE expires_at <= ?`,
		`DELETE FROM challenges WHERE expires_at <= ?`,
	} {
		res, err := s.db.ExecContext(ctx, q, now)
		if err != nil {
			return total, fmt.Errorf("sqlite: sweep: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
