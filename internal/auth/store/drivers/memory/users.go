package memory

import (
	"context"
	"sync"

	"github.com/aussiebroadwan/bartab/internal/auth/domain"
	"github.com/aussiebroadwan/bartab/internal/auth/store"
	"github.com/aussiebroadwan/bartab/pkg/cryptox"
)

type usersRepo struct {
	hasher *cryptox.Hasher

	mu      sync.RWMutex
	byEmail map[string]domain.User
}

func (r *usersRepo) AddUser(_ context.Context, u domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := u.Email.String()
	if _, ok := r.byEmail[key]; ok {
		return store.ErrAlreadyExists
	}
	r.byEmail[key] = u
	return nil
}

func (r *usersRepo) GetUser(_ context.Context, email domain.Email) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byEmail[email.String()]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

func (r *usersRepo) ValidateCredentials(ctx context.Context, email domain.Email, password domain.Password) error {
	// The hash comparison runs outside the lock.
	u, err := r.GetUser(ctx, email)
	return store.CheckCredentials(r.hasher, u, err, password)
}
