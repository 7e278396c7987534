package auth_test

import (
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/bartab/internal/auth/app"
	"github.com/aussiebroadwan/bartab/internal/auth/domain"
	"github.com/aussiebroadwan/bartab/internal/auth/notify"
	"github.com/aussiebroadwan/bartab/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

/*
 * Common helpers for auth service end-to-end tests. Each test gets its own
 * fully wired service behind a real listener; two-factor codes are captured
 * by a recording notifier instead of being emailed.
 */

const (
	testSecret   = "e2e-secret-e2e-secret-e2e-secret"
	testPassword = "correct horse battery"
)

type service struct {
	client *authsdk.SDKClient
	mail   *notify.Recorder
}

func baseConfig(t *testing.T) app.Config {
	t.Helper()
	return app.Config{
		JWTSecret:            testSecret,
		Issuer:               "bartab-auth",
		TokenTTL:             10 * time.Minute,
		ChallengeTTL:         10 * time.Minute,
		StoreDriver:          app.StoreMemory,
		PepperFile:           filepath.Join(t.TempDir(), "pepper"),
		Notifier:             app.NotifierLog,
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "json",
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Minute,
	}
}

// startService runs the auth service with cfg and returns a client for it.
func startService(t *testing.T, cfg app.Config) *service {
	t.Helper()

	mail := notify.NewRecorder()
	a, err := app.New(cfg, app.WithNotifier(mail))
	require.NoError(t, err)

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(func() {
		srv.Close()
		if err := a.Shutdown(); err != nil {
			t.Logf("failed to shut down service: %v", err)
		}
	})

	return &service{client: authsdk.NewSDKClient(srv.URL), mail: mail}
}

// emailedCode returns the last two-factor code sent to email.
func (s *service) emailedCode(t *testing.T, email string) string {
	t.Helper()
	msg, ok := s.mail.Last(domain.MustParseEmail(email))
	require.True(t, ok, "no code sent to %s", email)
	require.Equal(t, "2FA Code", msg.Subject)
	return msg.Body
}

func (s *service) signup(t *testing.T, email string, twoFactor bool) {
	t.Helper()
	err := s.client.Signup(t.Context(), authsdk.SignupRequest{
		Email:             email,
		Password:          testPassword,
		RequiresTwoFactor: twoFactor,
	})
	require.NoError(t, err)
}

// requireCode asserts err is an API error with the given code.
func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.ErrorIs(t, err, &authsdk.Error{Code: code})
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
