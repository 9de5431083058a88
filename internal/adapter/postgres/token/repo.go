// Package token implements the PasswordResetToken repository using PostgreSQL.
package token

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/bluebuchu/collect-sub000/internal/adapter/postgres"
	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// Repo provides password reset token persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new token repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type row struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	TokenHash string    `db:"token_hash"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

func (r row) toDomain() domain.PasswordResetToken {
	return domain.PasswordResetToken{
		ID:        r.ID,
		UserID:    r.UserID,
		TokenHash: r.TokenHash,
		ExpiresAt: r.ExpiresAt,
		CreatedAt: r.CreatedAt,
	}
}

// Create inserts a new reset token.
func (r *Repo) Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) (*domain.PasswordResetToken, error) {
	var out row
	err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &out,
		`INSERT INTO password_reset_tokens (user_id, token_hash, expires_at)
		 VALUES ($1, $2, $3)
		 RETURNING id, user_id, token_hash, expires_at, created_at`,
		userID, tokenHash, expiresAt)
	if err != nil {
		return nil, postgres.MapError(err, "password_reset_token", userID)
	}
	t := out.toDomain()
	return &t, nil
}

// GetByHash returns a token by its hash, expired or not. Expiry is the
// caller's decision.
func (r *Repo) GetByHash(ctx context.Context, tokenHash string) (*domain.PasswordResetToken, error) {
	var out row
	err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &out,
		`SELECT id, user_id, token_hash, expires_at, created_at
		   FROM password_reset_tokens WHERE token_hash = $1`,
		tokenHash)
	if err != nil {
		return nil, postgres.MapError(err, "password_reset_token", 0)
	}
	t := out.toDomain()
	return &t, nil
}

// Claim deletes the token if it has not expired at now. It reports false
// when another caller already claimed it or it expired.
func (r *Repo) Claim(ctx context.Context, id int64, now time.Time) (bool, error) {
	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx,
		`DELETE FROM password_reset_tokens WHERE id = $1 AND expires_at > $2`, id, now)
	if err != nil {
		return false, postgres.MapError(err, "password_reset_token", id)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteByUser removes every token of userID.
func (r *Repo) DeleteByUser(ctx context.Context, userID int64) error {
	if _, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx,
		`DELETE FROM password_reset_tokens WHERE user_id = $1`, userID); err != nil {
		return postgres.MapError(err, "password_reset_token", userID)
	}
	return nil
}

// DeleteExpired removes tokens that expired at or before now and returns
// how many were removed.
func (r *Repo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx,
		`DELETE FROM password_reset_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired reset tokens: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
