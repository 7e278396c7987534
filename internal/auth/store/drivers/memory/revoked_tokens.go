package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aussiebroadwan/bartab/pkg/cryptox"
)

type revokedTokensRepo struct {
	now func() time.Time

	mu      sync.RWMutex
	records map[string]time.Time // fingerprint -> expires at
}

func (r *revokedTokensRepo) Revoke(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	key := cryptox.FingerprintToken(token)
	expires := r.now().Add(ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.records[key]; !ok || cur.Before(expires) {
		r.records[key] = expires
	}
	return nil
}

func (r *revokedTokensRepo) IsRevoked(_ context.Context, token string) (bool, error) {
	key := cryptox.FingerprintToken(token)

	r.mu.RLock()
	defer r.mu.RUnlock()
	expires, ok := r.records[key]
	return ok && r.now().Before(expires), nil
}

func (r *revokedTokensRepo) sweep() int64 {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, expires := range r.records {
		if !now.Before(expires) {
			delete(r.records, k)
			n++
		}
	}
	return n
}
