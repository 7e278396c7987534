package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/bartab/internal/auth/service"
	"github.com/aussiebroadwan/bartab/pkg/httpx"
)

// writeServiceError maps a service error to its response. Unknown errors are
// reported as a generic 500; the service has already logged the cause.
func writeServiceError(w http.ResponseWriter, err error) {
	apiErrorFor(err).WriteError(w)
}

func apiErrorFor(err error) *httpx.APIError {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return httpx.ErrInvalidCredentials
	case errors.Is(err, service.ErrIncorrectCredentials):
		return httpx.ErrIncorrectCredentials
	case errors.Is(err, service.ErrUserAlreadyExists):
		return httpx.ErrUserAlreadyExists
	case errors.Is(err, service.ErrInvalidChallengeID):
		return httpx.ErrInvalidLoginAttempt
	case errors.Is(err, service.ErrInvalidCode):
		return httpx.ErrInvalidTwoFactorCode
	case errors.Is(err, service.ErrMissingOrInvalidToken),
		errors.Is(err, service.ErrRevoked),
		errors.Is(err, service.ErrExpired),
		errors.Is(err, service.ErrMalformed):
		return httpx.ErrInvalidToken
	default:
		return httpx.ErrServerError
	}
}
