package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/bartab/internal/auth/domain"
	"github.com/aussiebroadwan/bartab/internal/auth/store"
	"github.com/redis/go-redis/v9"
)

// consumeRetries bounds optimistic retries when WATCH detects a concurrent
// write to the same challenge key.
const consumeRetries = 4

type challengeRecord struct {
	ChallengeID string `json:"challenge_id"`
	Code        string `json:"code"`
}

type challengesRepo struct {
	client redis.UniversalClient
	prefix string
}

func (r *challengesRepo) key(email domain.Email) string { return r.prefix + email.String() }

func (r *challengesRepo) Issue(ctx context.Context, email domain.Email, c domain.Challenge, ttl time.Duration) error {
	data, err := json.Marshal(challengeRecord{ChallengeID: c.ID.String(), Code: c.Code.Expose()})
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(email), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %w", errBackend, err)
	}
	return nil
}

func (r *challengesRepo) Get(ctx context.Context, email domain.Email) (domain.Challenge, error) {
	data, err := r.client.Get(ctx, r.key(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Challenge{}, store.ErrNotFound
		}
		return domain.Challenge{}, fmt.Errorf("%w: %w", errBackend, err)
	}
	return decodeChallenge(data)
}

// Consume deletes the key only if it still holds id. WATCH makes the read and
// the DEL one optimistic transaction; a concurrent change aborts EXEC and the
// loop re-reads.
func (r *challengesRepo) Consume(ctx context.Context, email domain.Email, id domain.ChallengeID) error {
	key := r.key(email)

	for range consumeRetries {
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}
			c, err := decodeChallenge(data)
			if err != nil {
				return err
			}
			if !c.ID.Equal(id) {
				return store.ErrNotFound
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			return err
		}, key)

		switch {
		case err == nil:
			return nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, redis.Nil), errors.Is(err, store.ErrNotFound):
			return store.ErrNotFound
		default:
			return fmt.Errorf("%w: %w", errBackend, err)
		}
	}
	return store.ErrNotFound
}

func decodeChallenge(data []byte) (domain.Challenge, error) {
	var rec challengeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.Challenge{}, fmt.Errorf("redis: decode challenge: %w", err)
	}
	id, err := domain.ParseChallengeID(rec.ChallengeID)
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("redis: stored challenge id: %w", err)
	}
	code, err := domain.ParseOneTimeCode(rec.Code)
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("redis: stored code: %w", err)
	}
	return domain.Challenge{ID: id, Code: code}, nil
}
