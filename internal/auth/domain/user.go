package domain

import "time"

// User is created at signup and never mutated afterwards.
type User struct {
	ID                string // ULID
	Email             Email
	PasswordHash      string // argon2id PHC string
	RequiresTwoFactor bool
	CreatedAt         time.Time
}
