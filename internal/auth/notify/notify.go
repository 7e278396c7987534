// Package notify delivers one-time codes to users.
package notify

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/bartab/internal/auth/domain"
)

// ErrUndeliverable is returned when a message could not be handed to the
// transport, including after any retries the implementation performs.
var ErrUndeliverable = errors.New("notify: message not delivered")

// Notifier sends a message to a user. Implementations own their retry policy;
// callers treat any error as final.
type Notifier interface {
	Send(ctx context.Context, recipient domain.Email, subject, body string) error
}
