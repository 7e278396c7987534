package domain

import (
	"crypto/rand"
	"crypto/subtle"
	"log/slog"
	"math/big"
	"strconv"
)

const (
	MinOneTimeCode = 100000
	MaxOneTimeCode = 999999
)

// OneTimeCode is a six digit second-factor code in [100000, 999999].
type OneTimeCode struct {
	secret Secret
}

// ParseOneTimeCode accepts only ASCII digits. Non-numeric input is
// MalformedCode; numeric input outside the range (including the wrong number
// of digits) is OutOfRangeCode.
func ParseOneTimeCode(raw string) (OneTimeCode, error) {
	if raw == "" {
		return OneTimeCode{}, invalid(MalformedCode)
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return OneTimeCode{}, invalid(MalformedCode)
		}
	}

	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n < MinOneTimeCode || n > MaxOneTimeCode {
		return OneTimeCode{}, invalid(OutOfRangeCode)
	}

	return OneTimeCode{secret: NewSecret(raw)}, nil
}

// NewOneTimeCode draws a code uniformly from the valid range using crypto/rand.
func NewOneTimeCode() (OneTimeCode, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(MaxOneTimeCode-MinOneTimeCode+1))
	if err != nil {
		return OneTimeCode{}, err
	}
	v := n.Int64() + MinOneTimeCode
	return OneTimeCode{secret: NewSecret(strconv.FormatInt(v, 10))}, nil
}

func (c OneTimeCode) Expose() string { return c.secret.Expose() }

// Equal compares in constant time.
func (c OneTimeCode) Equal(other OneTimeCode) bool {
	return subtle.ConstantTimeCompare([]byte(c.Expose()), []byte(other.Expose())) == 1
}

func (c OneTimeCode) String() string       { return redacted }
func (c OneTimeCode) LogValue() slog.Value { return c.secret.LogValue() }
