package service

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/bartab/internal/auth/domain"
	"github.com/aussiebroadwan/bartab/internal/auth/metrics"
	"github.com/aussiebroadwan/bartab/internal/auth/store"
	"github.com/aussiebroadwan/bartab/pkg/cryptox"
	"github.com/aussiebroadwan/bartab/pkg/idx"
	"github.com/aussiebroadwan/bartab/pkg/slogx"
)

type UserService struct {
	Users   store.Users
	Hasher  *cryptox.Hasher
	Metrics *metrics.Metrics
}

// Signup registers a user. Malformed email or password yields
// ErrInvalidCredentials; an existing email yields ErrUserAlreadyExists.
func (s *UserService) Signup(ctx context.Context, rawEmail, rawPassword string, requiresTwoFactor bool) (domain.User, error) {
	email, emailErr := domain.ParseEmail(rawEmail)
	password, passwordErr := domain.ParsePassword(rawPassword)
	if emailErr != nil || passwordErr != nil {
		s.Metrics.Signup(outcomeInvalidInput)
		return domain.User{}, ErrInvalidCredentials
	}
	log := slogx.FromContext(ctx).With("email", email)

	hash, err := s.Hasher.Hash(password.Expose())
	if err != nil {
		log.Error("hash password failed", "err", err)
		s.Metrics.Signup(outcomeUnexpected)
		return domain.User{}, unexpected("hash password", err)
	}

	user := domain.User{
		ID:                idx.New().String(),
		Email:             email,
		PasswordHash:      hash,
		RequiresTwoFactor: requiresTwoFactor,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.Users.AddUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			s.Metrics.Signup(outcomeConflict)
			return domain.User{}, ErrUserAlreadyExists
		}
		log.Error("add user failed", "err", err)
		s.Metrics.Signup(outcomeUnexpected)
		return domain.User{}, unexpected("add user", err)
	}

	s.Metrics.Signup(outcomeCreated)
	log.Info("user created", "user_id", user.ID, "requires_2fa", requiresTwoFactor)
	return user, nil
}
