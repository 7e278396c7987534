package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/bartab/pkg/cryptox"
	"github.com/redis/go-redis/v9"
)

type revokedTokensRepo struct {
	client redis.UniversalClient
	prefix string
}

func (r *revokedTokensRepo) key(token string) string {
	return r.prefix + cryptox.FingerprintToken(token)
}

func (r *revokedTokensRepo) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.key(token), 1, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %w", errBackend, err)
	}
	return nil
}

func (r *revokedTokensRepo) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %w", errBackend, err)
	}
	return n > 0, nil
}
