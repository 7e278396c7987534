package authsdk

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

// SessionCookieName is the cookie the service stores the session token in.
const SessionCookieName = "jwt"

// SDKClient is a client for the BarTab authentication service.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new auth service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Signup creates an account.
func (c *SDKClient) Signup(ctx context.Context, req SignupRequest) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/signup", req)
	if err != nil {
		return err
	}
	_, err = decodeJSON(resp, nil, http.StatusCreated)
	return err
}

// Login checks email and password. Accounts with two-factor enabled return a
// *TwoFactorRequiredError to be passed to VerifyTwoFactor.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*Session, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/login", loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var pending twoFactorResponse
	cookie := sessionCookie(resp)
	status, err := decodeJSON(resp, &pending, http.StatusOK, http.StatusPartialContent)
	if err != nil {
		return nil, err
	}

	if status == http.StatusPartialContent {
		return nil, &TwoFactorRequiredError{Email: email, LoginAttemptID: pending.LoginAttemptID}
	}
	return newSession(c, email, cookie)
}

// VerifyTwoFactor completes a login that returned a *TwoFactorRequiredError.
func (c *SDKClient) VerifyTwoFactor(ctx context.Context, pending *TwoFactorRequiredError, code string) (*Session, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/verify-2fa", verifyTwoFactorRequest{
		Email:          pending.Email,
		LoginAttemptID: pending.LoginAttemptID,
		Code:           code,
	})
	if err != nil {
		return nil, err
	}

	cookie := sessionCookie(resp)
	if _, err := decodeJSON(resp, nil, http.StatusOK); err != nil {
		return nil, err
	}
	return newSession(c, pending.Email, cookie)
}

// VerifyToken reports whether token is a live session token. Rejected
// tokens return false with a nil error; transport and server failures
// return an error.
func (c *SDKClient) VerifyToken(ctx context.Context, token string) (bool, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/verify-token", verifyTokenRequest{Token: token})
	if err != nil {
		return false, err
	}

	_, err = decodeJSON(resp, nil, http.StatusOK)
	var apiErr *Error
	switch {
	case err == nil:
		return true, nil
	case errors.As(err, &apiErr) && apiErr.Code == ErrorCodeInvalidToken:
		return false, nil
	default:
		return false, err
	}
}

// GetLiveness checks if the service is alive.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// GetReadiness checks if the service can reach its store. A degraded
// service returns its report along with an error.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *SDKClient) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	status, err := decodeJSON(resp, &health, http.StatusOK, http.StatusServiceUnavailable)
	if err != nil {
		return nil, err
	}
	if status == http.StatusServiceUnavailable {
		return &health, &Error{StatusCode: status, Code: ErrorCodeServerError, Description: "service degraded"}
	}
	return &health, nil
}
