package domain

import (
	"log/slog"
	"unicode/utf8"
)

// MinPasswordLength is counted in characters (runes), not bytes.
const MinPasswordLength = 8

// Password is a plaintext password that passed the length rule. It is only
// ever hashed or compared, never stored.
type Password struct {
	secret Secret
}

func ParsePassword(raw string) (Password, error) {
	if utf8.RuneCountInString(raw) < MinPasswordLength {
		return Password{}, invalid(PasswordTooShort)
	}
	return Password{secret: NewSecret(raw)}, nil
}

// Expose returns the plaintext for hashing or verification.
func (p Password) Expose() string { return p.secret.Expose() }

func (p Password) String() string       { return redacted }
func (p Password) LogValue() slog.Value { return p.secret.LogValue() }
