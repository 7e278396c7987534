package notify

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/bartab/internal/auth/domain"
)

// Log writes messages to a logger instead of sending them. Development only:
// the body, and so the one-time code, ends up in the log.
type Log struct {
	logger *slog.Logger
}

var _ Notifier = (*Log)(nil)

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Send(ctx context.Context, recipient domain.Email, subject, body string) error {
	l.logger.InfoContext(ctx, "notification",
		"to", recipient.String(),
		"subject", subject,
		"body", body,
	)
	return nil
}
