package service

import (
	"errors"
	"fmt"
)

// Outward errors. Handlers map these to responses; anything wrapped in
// ErrUnexpected carries its cause for logs only.
var (
	ErrInvalidCredentials    = errors.New("invalid_credentials")
	ErrIncorrectCredentials  = errors.New("incorrect_credentials")
	ErrInvalidChallengeID    = errors.New("invalid_login_attempt_id")
	ErrInvalidCode           = errors.New("invalid_2fa_code")
	ErrUserAlreadyExists     = errors.New("user_already_exists")
	ErrMissingOrInvalidToken = errors.New("missing_or_invalid_token")
	ErrUnexpected            = errors.New("unexpected_error")
)

// Token validation failures.
var (
	ErrRevoked   = errors.New("token_revoked")
	ErrExpired   = errors.New("token_expired")
	ErrMalformed = errors.New("token_malformed")
)

// unexpected wraps an infrastructure failure so errors.Is matches both
// ErrUnexpected and the original cause.
func unexpected(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnexpected, op, err)
}

// metric outcome labels
const (
	outcomeAuthenticated    = "authenticated"
	outcomeTwoFactorPending = "two_factor_pending"
	outcomeInvalidInput     = "invalid_credentials"
	outcomeIncorrect        = "incorrect_credentials"
	outcomeInvalidID        = "invalid_login_attempt_id"
	outcomeInvalidCode      = "invalid_2fa_code"
	outcomeUnexpected       = "unexpected"
	outcomeCreated          = "created"
	outcomeConflict         = "conflict"

	resultValid     = "valid"
	resultRevoked   = "revoked"
	resultExpired   = "expired"
	resultMalformed = "malformed"
)
