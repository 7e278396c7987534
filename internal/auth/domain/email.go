package domain

import (
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	maxEmailLength  = 254
	maxLocalLength  = 64
	maxDomainLength = 253
)

// Email is a syntactically valid address in canonical form: the domain part
// is lower-cased, the local part is kept as submitted.
type Email struct {
	value string
}

// ParseEmail validates raw as a bare RFC 5322 addr-spec. Display names,
// angle brackets and surrounding whitespace are rejected.
func ParseEmail(raw string) (Email, error) {
	if raw == "" || len(raw) > maxEmailLength {
		return Email{}, invalid(MalformedEmail)
	}

	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Name != "" || addr.Address != raw {
		return Email{}, invalid(MalformedEmail)
	}

	at := strings.LastIndexByte(raw, '@')
	if at <= 0 || at == len(raw)-1 {
		return Email{}, invalid(MalformedEmail)
	}
	local, host := raw[:at], raw[at+1:]
	if len(local) > maxLocalLength || len(host) > maxDomainLength {
		return Email{}, invalid(MalformedEmail)
	}

	return Email{value: local + "@" + strings.ToLower(host)}, nil
}

// MustParseEmail panics on invalid input. Intended for tests and constants.
func MustParseEmail(raw string) Email {
	e, err := ParseEmail(raw)
	if err != nil {
		panic(err)
	}
	return e
}

func (e Email) String() string { return e.value }

func (e Email) IsZero() bool { return e.value == "" }

// Masked returns the address with most of the local part hidden, e.g.
// "b***@example.com".
func (e Email) Masked() string {
	at := strings.LastIndexByte(e.value, '@')
	if at <= 0 {
		return redacted
	}
	_, size := utf8.DecodeRuneInString(e.value)
	return e.value[:size] + "***" + e.value[at:]
}

// LogValue implements slog.LogValuer so addresses never hit logs in full.
func (e Email) LogValue() slog.Value { return slog.StringValue(e.Masked()) }
