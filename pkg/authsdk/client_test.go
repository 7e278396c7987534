package authsdk

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *SDKClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewSDKClient(srv.URL + "/")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewSDKClientTrimsSlash(t *testing.T) {
	t.Parallel()
	require.Equal(t, "https://auth.example.com", NewSDKClient("https://auth.example.com/").BaseURL)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("session from cookie", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/login", r.URL.Path)
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, map[string]string{"email": "bob@example.com", "password": "hunter2hunter2"}, body)

			http.SetCookie(w, &http.Cookie{Name: SessionCookieName, Value: "tok", MaxAge: 600})
			writeJSON(w, http.StatusOK, MessageResponse{Message: "Login successful"})
		})

		session, err := client.Login(t.Context(), "bob@example.com", "hunter2hunter2")
		require.NoError(t, err)
		require.Equal(t, "tok", session.Token())
		require.Equal(t, "bob@example.com", session.Email())
		require.False(t, session.ExpiresAt().IsZero())
	})

	t.Run("two factor pending", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusPartialContent, twoFactorResponse{Message: "2FA required", LoginAttemptID: "attempt-1"})
		})

		session, err := client.Login(t.Context(), "carol@example.com", "hunter2hunter2")
		require.Nil(t, session)

		var pending *TwoFactorRequiredError
		require.ErrorAs(t, err, &pending)
		require.Equal(t, "carol@example.com", pending.Email)
		require.Equal(t, "attempt-1", pending.LoginAttemptID)
	})

	t.Run("missing cookie", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, MessageResponse{Message: "Login successful"})
		})

		_, err := client.Login(t.Context(), "bob@example.com", "hunter2hunter2")
		require.ErrorIs(t, err, ErrNoSessionCookie)
	})

	t.Run("api error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: ErrorCodeIncorrectCredentials, ErrorDescription: "nope"})
		})

		_, err := client.Login(t.Context(), "bob@example.com", "wrong-password")
		require.ErrorIs(t, err, &Error{Code: ErrorCodeIncorrectCredentials})

		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		require.Equal(t, "nope", apiErr.Description)
	})
}

func TestVerifyTwoFactorSendsAttempt(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.JSONEq(t, `{"email":"carol@example.com","loginAttemptId":"attempt-1","2FACode":"123456"}`, string(raw))

		http.SetCookie(w, &http.Cookie{Name: SessionCookieName, Value: "tok"})
		writeJSON(w, http.StatusOK, MessageResponse{Message: "Login successful"})
	})

	session, err := client.VerifyTwoFactor(t.Context(),
		&TwoFactorRequiredError{Email: "carol@example.com", LoginAttemptID: "attempt-1"}, "123456")
	require.NoError(t, err)
	require.Equal(t, "tok", session.Token())
	require.True(t, session.ExpiresAt().IsZero())
}

func TestVerifyToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    any
		want    bool
		wantErr bool
	}{
		{name: "valid", status: http.StatusOK, body: MessageResponse{Message: "Token has been validated!"}, want: true},
		{name: "rejected", status: http.StatusUnauthorized, body: errorResponse{Error: ErrorCodeInvalidToken}},
		{name: "server error", status: http.StatusInternalServerError, body: errorResponse{Error: ErrorCodeServerError}, wantErr: true},
		{name: "not json", status: http.StatusBadGateway, body: "oops", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			ok, err := client.VerifyToken(t.Context(), "tok")
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.want, ok)
		})
	}
}

func TestSessionLogout(t *testing.T) {
	t.Parallel()

	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		ck, err := r.Cookie(SessionCookieName)
		require.NoError(t, err)
		require.Equal(t, "tok", ck.Value)
		writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out"})
	})

	session, err := newSession(client, "bob@example.com", &http.Cookie{Name: SessionCookieName, Value: "tok"})
	require.NoError(t, err)

	require.NoError(t, session.Logout(t.Context()))
	require.Empty(t, session.Token())
	require.ErrorIs(t, session.Logout(t.Context()), ErrLoggedOut)

	_, err = session.Valid(t.Context())
	require.ErrorIs(t, err, ErrLoggedOut)
	require.Equal(t, 1, calls)
}

func TestGetReadinessDegraded(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "degraded",
			Checks: &HealthChecks{Store: "error: connection refused"},
		})
	})

	health, err := client.GetReadiness(t.Context())
	require.Error(t, err)
	require.NotNil(t, health)
	require.Equal(t, "degraded", health.Status)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}
