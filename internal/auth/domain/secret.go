package domain

import "log/slog"

const redacted = "[REDACTED]"

// Secret holds a sensitive string. Its default formatting is redacted so it
// can be passed through loggers and error messages without leaking; call
// Expose at the point of use (signing, comparison, transport).
type Secret struct {
	value string
}

func NewSecret(s string) Secret { return Secret{value: s} }

// Expose returns the raw value.
func (s Secret) Expose() string { return s.value }

func (s Secret) IsZero() bool { return s.value == "" }

func (s Secret) String() string   { return redacted }
func (s Secret) GoString() string { return redacted }

// LogValue implements slog.LogValuer.
func (s Secret) LogValue() slog.Value { return slog.StringValue(redacted) }

// MarshalText keeps secrets out of JSON/text encoders too.
func (s Secret) MarshalText() ([]byte, error) { return []byte(redacted), nil }
