package domain

import "errors"

// ValidationKind identifies which parse rule an input violated.
type ValidationKind int

const (
	MalformedEmail ValidationKind = iota + 1
	PasswordTooShort
	MalformedCode
	OutOfRangeCode
	MalformedChallengeID
)

var (
	ErrMalformedEmail       = errors.New("domain: malformed email")
	ErrPasswordTooShort     = errors.New("domain: password too short")
	ErrMalformedCode        = errors.New("domain: malformed one-time code")
	ErrOutOfRangeCode       = errors.New("domain: one-time code out of range")
	ErrMalformedChallengeID = errors.New("domain: malformed challenge id")
)

// ValidationError is returned by every Parse function. It never carries the
// rejected input.
type ValidationError struct {
	Kind ValidationKind
}

func (e *ValidationError) Error() string { return e.sentinel().Error() }

// Is lets callers match a kind with errors.Is(err, domain.ErrPasswordTooShort).
func (e *ValidationError) Is(target error) bool { return target == e.sentinel() }

func (e *ValidationError) sentinel() error {
	switch e.Kind {
	case MalformedEmail:
		return ErrMalformedEmail
	case PasswordTooShort:
		return ErrPasswordTooShort
	case MalformedCode:
		return ErrMalformedCode
	case OutOfRangeCode:
		return ErrOutOfRangeCode
	case MalformedChallengeID:
		return ErrMalformedChallengeID
	default:
		return errors.New("domain: validation failed")
	}
}

func invalid(kind ValidationKind) error { return &ValidationError{Kind: kind} }

// IsValidationError reports whether err came from one of the Parse functions.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
