package store

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/bartab/internal/auth/domain"
	"github.com/aussiebroadwan/bartab/pkg/cryptox"
)

// CheckCredentials is the password comparison shared by all drivers. Drivers
// pass the result of their user lookup; an unknown user still costs one hash
// so the two failure paths take comparable time.
func CheckCredentials(h *cryptox.Hasher, u domain.User, lookupErr error, password domain.Password) error {
	if lookupErr != nil {
		if errors.Is(lookupErr, ErrNotFound) {
			_ = h.VerifyDummy(password.Expose())
			return ErrNotFound
		}
		return lookupErr
	}

	if err := h.Verify(password.Expose(), u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("store: verify password: %w", err)
	}
	return nil
}
