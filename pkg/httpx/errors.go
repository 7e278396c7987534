package httpx

import (
	"fmt"
	"net/http"
)

// Error codes returned in the "error" field of an APIError body.
const (
	CodeInvalidRequest       = "invalid_request"
	CodeInvalidCredentials   = "invalid_credentials"
	CodeIncorrectCredentials = "incorrect_credentials"
	CodeUserAlreadyExists    = "user_already_exists"
	CodeInvalidLoginAttempt  = "invalid_login_attempt_id"
	CodeInvalidTwoFactorCode = "invalid_2fa_code"
	CodeMissingToken         = "missing_token"
	CodeInvalidToken         = "invalid_token"
	CodeRateLimited          = "rate_limit_exceeded"
	CodeServerError          = "server_error"
)

// APIError is an error that knows how to render itself as a JSON response.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is a stable machine-readable identifier
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	WriteJSON(w, e.StatusCode, e)
}

// WithDescription returns a copy of e with a different description.
func (e *APIError) WithDescription(desc string) *APIError {
	cp := *e
	cp.Description = desc
	return &cp
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        CodeInvalidRequest,
		Description: "the request is malformed or missing required fields",
	}

	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        CodeInvalidCredentials,
		Description: "invalid credentials",
	}

	ErrIncorrectCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        CodeIncorrectCredentials,
		Description: "incorrect credentials",
	}

	ErrUserAlreadyExists = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        CodeUserAlreadyExists,
		Description: "user already exists",
	}

	ErrInvalidLoginAttempt = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        CodeInvalidLoginAttempt,
		Description: "invalid login attempt id",
	}

	ErrInvalidTwoFactorCode = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        CodeInvalidTwoFactorCode,
		Description: "invalid 2FA code",
	}

	ErrMissingToken = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        CodeMissingToken,
		Description: "missing auth token",
	}

	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        CodeInvalidToken,
		Description: "invalid auth token",
	}

	ErrRateLimited = &APIError{
		StatusCode:  http.StatusTooManyRequests,
		Code:        CodeRateLimited,
		Description: "too many requests, please try again later",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        CodeServerError,
		Description: "unexpected error",
	}
)
