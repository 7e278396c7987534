package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aussiebroadwan/bartab/pkg/cryptox"
)

type revokedTokensRepo struct {
	db  *sql.DB
	now func() time.Time
}

func (r *revokedTokensRepo) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO revoked_tokens (fingerprint, expires_at) VALUES (?, ?)
		ON CONFLICT (fingerprint) DO UPDATE SET expires_at = max(expires_at, excluded.expires_at)`,
		cryptox.FingerprintToken(token), toMillis(r.now().Add(ttl)),
	)
	if err != nil {
		return fmt.Errorf("sqlite: revoke token: %w", err)
	}
	return nil
}

func (r *revokedTokensRepo) IsRevoked(ctx context.Context, token string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1 FROM revoked_tokens WHERE fingerprint = ? AND expires_at > ?`,
		cryptox.FingerprintToken(token), toMillis(r.now()),
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: lookup revoked token: %w", err)
	}
	return true, nil
}
