package service

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/bartab/internal/auth/domain"
	"github.com/aussiebroadwan/bartab/internal/auth/metrics"
	"github.com/aussiebroadwan/bartab/internal/auth/notify"
	"github.com/aussiebroadwan/bartab/internal/auth/store"
	"github.com/aussiebroadwan/bartab/pkg/slogx"
)

const (
	// DefaultChallengeTTL is how long an emailed code stays usable.
	DefaultChallengeTTL = 10 * time.Minute

	twoFactorSubject = "2FA Code"
)

// LoginResult is either a session token or a pending two-factor challenge.
type LoginResult struct {
	Token       domain.Token
	ChallengeID domain.ChallengeID
}

// TwoFactorRequired reports whether the caller must complete VerifyTwoFactor.
func (r LoginResult) TwoFactorRequired() bool { return !r.ChallengeID.IsZero() }

// LoginService runs the login flow: credentials, then either a token or an
// emailed one-time code that VerifyTwoFactor exchanges for a token. It keeps
// no user state between calls; every step re-reads its store.
type LoginService struct {
	Users        store.Users
	Challenges   store.Challenges
	Notifier     notify.Notifier
	Tokens       *TokenService
	ChallengeTTL time.Duration
	Metrics      *metrics.Metrics
}

func (s *LoginService) challengeTTL() time.Duration {
	if s.ChallengeTTL <= 0 {
		return DefaultChallengeTTL
	}
	return s.ChallengeTTL
}

// Login checks email and password. Malformed input yields
// ErrInvalidCredentials without saying which field was wrong; a failed check
// yields ErrIncorrectCredentials.
func (s *LoginService) Login(ctx context.Context, rawEmail, rawPassword string) (LoginResult, error) {
	log := slogx.FromContext(ctx)

	email, emailErr := domain.ParseEmail(rawEmail)
	password, passwordErr := domain.ParsePassword(rawPassword)
	if emailErr != nil || passwordErr != nil {
		s.Metrics.Login(outcomeInvalidInput)
		return LoginResult{}, ErrInvalidCredentials
	}
	log = log.With("email", email)

	if err := s.Users.ValidateCredentials(ctx, email, password); err != nil {
		if !errors.Is(err, store.ErrNotFound) && !errors.Is(err, store.ErrInvalidCredentials) {
			log.Error("credential check failed", "err", err)
		}
		s.Metrics.Login(outcomeIncorrect)
		return LoginResult{}, ErrIncorrectCredentials
	}

	user, err := s.Users.GetUser(ctx, email)
	if err != nil {
		log.Error("user vanished after credential check", "err", err)
		s.Metrics.Login(outcomeIncorrect)
		return LoginResult{}, ErrIncorrectCredentials
	}

	if !user.RequiresTwoFactor {
		token, err := s.Tokens.Issue(ctx, email)
		if err != nil {
			log.Error("issue token failed", "err", err)
			s.Metrics.Login(outcomeUnexpected)
			return LoginResult{}, err
		}
		s.Metrics.Login(outcomeAuthenticated)
		return LoginResult{Token: token}, nil
	}

	id, err := s.startChallenge(ctx, email)
	if err != nil {
		log.Error("start two-factor challenge failed", "err", err)
		s.Metrics.Login(outcomeUnexpected)
		return LoginResult{}, err
	}
	s.Metrics.Login(outcomeTwoFactorPending)
	log.Info("two-factor challenge issued")
	return LoginResult{ChallengeID: id}, nil
}

// startChallenge stores a fresh challenge and only then sends the code, so
// an emailed code is always checkable. If sending fails the stored challenge
// is left to expire; the next login replaces it.
func (s *LoginService) startChallenge(ctx context.Context, email domain.Email) (domain.ChallengeID, error) {
	code, err := domain.NewOneTimeCode()
	if err != nil {
		return domain.ChallengeID{}, unexpected("generate code", err)
	}
	challenge := domain.Challenge{ID: domain.NewChallengeID(), Code: code}

	if err := s.Challenges.Issue(ctx, email, challenge, s.challengeTTL()); err != nil {
		return domain.ChallengeID{}, unexpected("store challenge", err)
	}

	if err := s.Notifier.Send(ctx, email, twoFactorSubject, code.Expose()); err != nil {
		s.Metrics.NotificationFailed()
		return domain.ChallengeID{}, unexpected("send code", err)
	}
	return challenge.ID, nil
}

// VerifyTwoFactor completes a pending login. A well-formed but wrong or
// stale (id, code) pair yields ErrIncorrectCredentials and leaves the stored
// challenge for another attempt; a match consumes it exactly once.
func (s *LoginService) VerifyTwoFactor(ctx context.Context, rawEmail, rawChallengeID, rawCode string) (domain.Token, error) {
	log := slogx.FromContext(ctx)

	email, err := domain.ParseEmail(rawEmail)
	if err != nil {
		s.Metrics.TwoFactor(outcomeInvalidInput)
		return domain.Token{}, ErrInvalidCredentials
	}
	id, err := domain.ParseChallengeID(rawChallengeID)
	if err != nil {
		s.Metrics.TwoFactor(outcomeInvalidID)
		return domain.Token{}, ErrInvalidChallengeID
	}
	code, err := domain.ParseOneTimeCode(rawCode)
	if err != nil {
		s.Metrics.TwoFactor(outcomeInvalidCode)
		return domain.Token{}, ErrInvalidCode
	}
	log = log.With("email", email)

	stored, err := s.Challenges.Get(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error("load challenge failed", "err", err)
			s.Metrics.TwoFactor(outcomeUnexpected)
			return domain.Token{}, unexpected("load challenge", err)
		}
		s.Metrics.TwoFactor(outcomeIncorrect)
		return domain.Token{}, ErrIncorrectCredentials
	}

	if !stored.Matches(id, code) {
		s.Metrics.TwoFactor(outcomeIncorrect)
		return domain.Token{}, ErrIncorrectCredentials
	}

	if err := s.Challenges.Consume(ctx, email, id); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error("consume challenge failed", "err", err)
		}
		s.Metrics.TwoFactor(outcomeIncorrect)
		return domain.Token{}, ErrIncorrectCredentials
	}

	token, err := s.Tokens.Issue(ctx, email)
	if err != nil {
		log.Error("issue token failed", "err", err)
		s.Metrics.TwoFactor(outcomeUnexpected)
		return domain.Token{}, err
	}
	s.Metrics.TwoFactor(outcomeAuthenticated)
	return token, nil
}

// Logout revokes a valid token. Empty, revoked, expired or forged tokens all
// yield ErrMissingOrInvalidToken.
func (s *LoginService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return ErrMissingOrInvalidToken
	}
	if _, err := s.Tokens.Validate(ctx, token); err != nil {
		return ErrMissingOrInvalidToken
	}
	if err := s.Tokens.Revoke(ctx, token); err != nil {
		slogx.FromContext(ctx).Error("revoke token failed", "err", err)
		return err
	}
	return nil
}
