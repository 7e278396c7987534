package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	// Parse checks signature, structure and issuer but not time bounds.
	Parse(token string) (Claims, error)
	// Verify is Parse plus exp/nbf checks against now.
	Verify(token string, now time.Time) (Claims, error)
}

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

var _ Verifier = (*HS256)(nil)

func (h *HS256) Parse(tokenStr string) (Claims, error) {
	// Time claims are checked by the caller so expired tokens can still be
	// told apart from forged ones.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var claims Claims
	token, err := parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return h.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return Claims{}, fmt.Errorf("%w: %w", ErrInvalidSig, err)
		}
		return Claims{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if !token.Valid {
		return Claims{}, ErrMalformed
	}

	if claims.Subject == "" || claims.ExpiresAt == nil {
		return Claims{}, ErrInvalidClaim
	}
	if err := claims.ValidateIssuer(h.issuer); err != nil {
		return Claims{}, err
	}
	return claims, nil
}

func (h *HS256) Verify(tokenStr string, now time.Time) (Claims, error) {
	claims, err := h.Parse(tokenStr)
	if err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiryWithLeeway(now, h.leeway); err != nil {
		return Claims{}, err
	}
	return claims, nil
}
