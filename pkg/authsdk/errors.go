package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes sent by the service.
const (
	ErrorCodeInvalidRequest       = "invalid_request"
	ErrorCodeInvalidCredentials   = "invalid_credentials"
	ErrorCodeIncorrectCredentials = "incorrect_credentials"
	ErrorCodeUserAlreadyExists    = "user_already_exists"
	ErrorCodeInvalidLoginAttempt  = "invalid_login_attempt_id"
	ErrorCodeInvalidTwoFactorCode = "invalid_2fa_code"
	ErrorCodeMissingToken         = "missing_token"
	ErrorCodeInvalidToken         = "invalid_token"
	ErrorCodeRateLimited          = "rate_limit_exceeded"
	ErrorCodeServerError          = "server_error"
)

// Error is a failed response from the service.
type Error struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *Error) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Code, e.Description)
}

// Is matches another *Error with the same code, so callers can write
// errors.Is(err, &authsdk.Error{Code: authsdk.ErrorCodeIncorrectCredentials}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// TwoFactorRequiredError is returned by Login when the account has
// two-factor enabled. The code has been emailed to Email.
type TwoFactorRequiredError struct {
	Email          string
	LoginAttemptID string
}

func (e *TwoFactorRequiredError) Error() string {
	return "two-factor code required for " + e.Email
}

// parseErrorResponse turns a non-success response into an *Error.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &Error{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	// Fallback: create generic error from status code
	return &Error{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: http.StatusText(resp.StatusCode),
	}
}
