package domain

import "time"

// Token is a signed bearer token handed to the caller. It is never persisted.
type Token struct {
	Value     Secret
	ExpiresAt time.Time
}

// TokenClaims is the decoded, verified payload of a Token.
type TokenClaims struct {
	Subject   Email
	ExpiresAt time.Time
	IssuedAt  time.Time
	ID        string
}
