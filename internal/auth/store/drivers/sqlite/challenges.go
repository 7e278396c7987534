package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aussiebroadwan/bartab/internal/auth/domain"
	"github.com/aussiebroadwan/bartab/internal/auth/store"
)

type challengesRepo struct {
	db  *sql.DB
	now func() time.Time
}

func (r *challengesRepo) Issue(ctx context.Context, email domain.Email, c domain.Challenge, ttl time.Duration) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO challenges (email, challenge_id, code, expires_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (email) DO UPDATE SET
			challenge_id = excluded.challenge_id,
			code         = excluded.code,
			expires_at   = excluded.expires_at`,
		email.String(), c.ID.String(), c.Code.Expose(), toMillis(r.now().Add(ttl)),
	)
	if err != nil {
		return fmt.Errorf("sqlite: issue challenge: %w", err)
	}
	return nil
}

func (r *challengesRepo) Get(ctx context.Context, email domain.Email) (domain.Challenge, error) {
	var rawID, rawCode string
	err := r.db.QueryRowContext(ctx, `
		SELECT challenge_id, code FROM challenges WHERE email = ? AND expires_at > ?`,
		email.String(), toMillis(r.now()),
	).Scan(&rawID, &rawCode)
	if err != nil {
		return domain.Challenge{}, mapNotFound(err)
	}
	return decodeChallenge(rawID, rawCode)
}

func (r *challengesRepo) Consume(ctx context.Context, email domain.Email, id domain.ChallengeID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM challenges WHERE email = ? AND challenge_id = ? AND expires_at > ?`,
		email.String(), id.String(), toMillis(r.now()),
	)
	if err != nil {
		return fmt.Errorf("sqlite: consume challenge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func decodeChallenge(rawID, rawCode string) (domain.Challenge, error) {
	id, err := domain.ParseChallengeID(rawID)
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("sqlite: stored challenge id: %w", err)
	}
	code, err := domain.ParseOneTimeCode(rawCode)
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("sqlite: stored code: %w", err)
	}
	return domain.Challenge{ID: id, Code: code}, nil
}
