package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest HMAC secret NewHS256 accepts.
const MinSecretLength = 32

var ErrWeakSecret = errors.New("jwtx: secret shorter than 32 bytes")

// Signer turns claims into a compact JWS.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// HS256 signs and verifies tokens with one process-wide HMAC secret. It is
// read-only after construction and safe for concurrent use.
type HS256 struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// NewHS256 copies secret; the caller may wipe its own buffer afterwards.
// Tokens carrying a different issuer are rejected when issuer is non-empty.
func NewHS256(secret []byte, issuer string) (*HS256, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	return &HS256{
		secret: append([]byte(nil), secret...),
		issuer: issuer,
	}, nil
}

// WithLeeway returns a copy that tolerates clock skew on exp/nbf.
func (h *HS256) WithLeeway(d time.Duration) *HS256 {
	cp := *h
	cp.leeway = d
	return &cp
}

func (h *HS256) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Issuer is the "iss" value stamped on and required of every token.
func (h *HS256) Issuer() string { return h.issuer }

func (h *HS256) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}
