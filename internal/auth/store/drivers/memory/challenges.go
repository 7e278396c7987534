package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aussiebroadwan/bartab/internal/auth/domain"
	"github.com/aussiebroadwan/bartab/internal/auth/store"
)

type challengeRecord struct {
	challenge domain.Challenge
	expiresAt time.Time
}

type challengesRepo struct {
	now func() time.Time

	mu      sync.RWMutex
	records map[string]challengeRecord // email -> pending challenge
}

func (r *challengesRepo) Issue(_ context.Context, email domain.Email, c domain.Challenge, ttl time.Duration) error {
	rec := challengeRecord{challenge: c, expiresAt: r.now().Add(ttl)}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[email.String()] = rec
	return nil
}

func (r *challengesRepo) Get(_ context.Context, email domain.Email) (domain.Challenge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[email.String()]
	if !ok || !r.now().Before(rec.expiresAt) {
		return domain.Challenge{}, store.ErrNotFound
	}
	return rec.challenge, nil
}

func (r *challengesRepo) Consume(_ context.Context, email domain.Email, id domain.ChallengeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := email.String()
	rec, ok := r.records[key]
	if !ok || !r.now().Before(rec.expiresAt) || !rec.challenge.ID.Equal(id) {
		return store.ErrNotFound
	}
	delete(r.records, key)
	return nil
}

func (r *challengesRepo) sweep() int64 {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, rec := range r.records {
		if !now.Before(rec.expiresAt) {
			delete(r.records, k)
			n++
		}
	}
	return n
}
