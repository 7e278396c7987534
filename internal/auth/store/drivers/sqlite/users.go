package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aussiebroadwan/bartab/internal/auth/domain"
	"github.com/aussiebroadwan/bartab/internal/auth/store"
	"github.com/aussiebroadwan/bartab/pkg/cryptox"
)

type usersRepo struct {
	db     *sql.DB
	hasher *cryptox.Hasher
}

// AddUser relies on the UNIQUE email column; ON CONFLICT DO NOTHING turns the
// loser of a race into zero affected rows instead of a driver error.
func (r *usersRepo) AddUser(ctx context.Context, u domain.User) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, requires_two_factor, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (email) DO NOTHING`,
		u.ID, u.Email.String(), u.PasswordHash, u.RequiresTwoFactor, toMillis(u.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrAlreadyExists
	}
	return nil
}

func (r *usersRepo) GetUser(ctx context.Context, email domain.Email) (domain.User, error) {
	var (
		u         domain.User
		rawEmail  string
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, requires_two_factor, created_at
		FROM users WHERE email = ?`, email.String(),
	).Scan(&u.ID, &rawEmail, &u.PasswordHash, &u.RequiresTwoFactor, &createdAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	if u.Email, err = domain.ParseEmail(rawEmail); err != nil {
		return domain.User{}, fmt.Errorf("sqlite: stored email %q: %w", rawEmail, err)
	}
	u.CreatedAt = fromMillis(createdAt)
	return u, nil
}

func (r *usersRepo) ValidateCredentials(ctx context.Context, email domain.Email, password domain.Password) error {
	u, err := r.GetUser(ctx, email)
	return store.CheckCredentials(r.hasher, u, err, password)
}
