package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/bartab/internal/auth/domain"
	"github.com/aussiebroadwan/bartab/internal/auth/store"
	"github.com/aussiebroadwan/bartab/pkg/cryptox"
	"github.com/redis/go-redis/v9"
)

type userRecord struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"password_hash"`
	RequiresTwoFactor bool      `json:"requires_2fa"`
	CreatedAt         time.Time `json:"created_at"`
}

type usersRepo struct {
	client redis.UniversalClient
	hasher *cryptox.Hasher
	prefix string
}

func (r *usersRepo) key(email domain.Email) string { return r.prefix + email.String() }

// AddUser uses SETNX so concurrent signups for one email have a single winner.
func (r *usersRepo) AddUser(ctx context.Context, u domain.User) error {
	data, err := json.Marshal(userRecord{
		ID:                u.ID,
		Email:             u.Email.String(),
		PasswordHash:      u.PasswordHash,
		RequiresTwoFactor: u.RequiresTwoFactor,
		CreatedAt:         u.CreatedAt,
	})
	if err != nil {
		return err
	}

	ok, err := r.client.SetNX(ctx, r.key(u.Email), data, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %w", errBackend, err)
	}
	if !ok {
		return store.ErrAlreadyExists
	}
	return nil
}

func (r *usersRepo) GetUser(ctx context.Context, email domain.Email) (domain.User, error) {
	data, err := r.client.Get(ctx, r.key(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.User{}, store.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("%w: %w", errBackend, err)
	}

	var rec userRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.User{}, fmt.Errorf("redis: decode user: %w", err)
	}
	parsed, err := domain.ParseEmail(rec.Email)
	if err != nil {
		return domain.User{}, fmt.Errorf("redis: stored email %q: %w", rec.Email, err)
	}
	return domain.User{
		ID:                rec.ID,
		Email:             parsed,
		PasswordHash:      rec.PasswordHash,
		RequiresTwoFactor: rec.RequiresTwoFactor,
		CreatedAt:         rec.CreatedAt,
	}, nil
}

func (r *usersRepo) ValidateCredentials(ctx context.Context, email domain.Email, password domain.Password) error {
	u, err := r.GetUser(ctx, email)
	return store.CheckCredentials(r.hasher, u, err, password)
}
