package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/bartab/internal/auth/domain"
	"github.com/aussiebroadwan/bartab/internal/auth/metrics"
	"github.com/aussiebroadwan/bartab/internal/auth/notify"
	"github.com/aussiebroadwan/bartab/internal/auth/service"
	"github.com/aussiebroadwan/bartab/internal/auth/store/drivers/memory"
	"github.com/aussiebroadwan/bartab/internal/auth/store/storetest"
	"github.com/aussiebroadwan/bartab/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

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

type fixture struct {
	clock    *fakeClock
	store    *memory.Store
	notifier *notify.Recorder
	metrics  *metrics.Metrics
	tokens   *service.TokenService
	login    *service.LoginService
	users    *service.UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	hasher := storetest.Hasher()
	st := memory.NewStore(hasher, memory.WithClock(clock.Now))
	m := metrics.New()

	signer, err := jwtx.NewHS256(testSecret, "bartab-auth")
	require.NoError(t, err)

	tokens := service.NewTokenService(signer, st.RevokedTokens(), 10*time.Minute)
	tokens.Now = clock.Now
	tokens.Metrics = m

	rec := notify.NewRecorder()
	return &fixture{
		clock:    clock,
		store:    st,
		notifier: rec,
		metrics:  m,
		tokens:   tokens,
		login: &service.LoginService{
			Users:        st.Users(),
			Challenges:   st.Challenges(),
			Notifier:     rec,
			Tokens:       tokens,
			ChallengeTTL: 10 * time.Minute,
			Metrics:      m,
		},
		users: &service.UserService{Users: st.Users(), Hasher: hasher, Metrics: m},
	}
}

func (f *fixture) signup(t *testing.T, email, password string, twoFactor bool) {
	t.Helper()
	_, err := f.users.Signup(context.Background(), email, password, twoFactor)
	require.NoError(t, err)
}

// emailedCode returns the last code sent to email.
func (f *fixture) emailedCode(t *testing.T, email string) string {
	t.Helper()
	msg, ok := f.notifier.Last(domain.MustParseEmail(email))
	require.True(t, ok, "no code sent to %s", email)
	return msg.Body
}

// otherCode returns a valid code different from code.
func otherCode(code string) string {
	if code == "123456" {
		return "654321"
	}
	return "123456"
}
