package memory_test

import (
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/bartab/internal/auth/store/drivers/memory"
	"github.com/aussiebroadwan/bartab/internal/auth/store/storetest"
)

// fakeClock is safe for the concurrent cases in the suite.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Harness {
		clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
		hasher := storetest.Hasher()
		return storetest.Harness{
			Store:   memory.NewStore(hasher, memory.WithClock(clock.Now)),
			Hasher:  hasher,
			Advance: clock.Advance,
		}
	})
}
