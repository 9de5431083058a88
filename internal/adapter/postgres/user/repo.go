// Package user implements the User repository using PostgreSQL.
package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/bluebuchu/collect-sub000/internal/adapter/postgres"
	"github.com/bluebuchu/collect-sub000/internal/domain"
)

const table = "users"

var columns = []string{
	"id", "email", "password_hash", "nickname", "profile_image", "bio", "created_at", "updated_at",
}

// Repo provides user persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new user repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type row struct {
	ID           int64     `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Nickname     string    `db:"nickname"`
	ProfileImage *string   `db:"profile_image"`
	Bio          *string   `db:"bio"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r row) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Nickname:     r.Nickname,
		ProfileImage: r.ProfileImage,
		Bio:          r.Bio,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (r *Repo) getOne(ctx context.Context, where sq.Sqlizer, id int64) (*domain.User, error) {
	sql, args, err := postgres.Builder.Select(columns...).From(table).Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user select: %w", err)
	}

	var out row
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &out, sql, args...); err != nil {
		return nil, postgres.MapError(err, "user", id)
	}
	return out.toDomain(), nil
}

// GetByID returns a user by primary key.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, sq.Eq{"id": id}, id)
}

// GetByEmail returns a user by (normalized) email address.
func (r *Repo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, sq.Eq{"email": email}, 0)
}

// GetByNickname returns a user by nickname.
func (r *Repo) GetByNickname(ctx context.Context, nickname string) (*domain.User, error) {
	return r.getOne(ctx, sq.Eq{"nickname": nickname}, 0)
}

// Create inserts a new user and returns the persisted row.
// A taken email or nickname yields domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	sql, args, err := postgres.Builder.
		Insert(table).
		Columns("email", "password_hash", "nickname", "profile_image", "bio").
		Values(u.Email, u.PasswordHash, u.Nickname, u.ProfileImage, u.Bio).
		Suffix("RETURNING " + joinColumns()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user insert: %w", err)
	}

	var out row
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &out, sql, args...); err != nil {
		return nil, postgres.MapError(err, "user", 0)
	}
	return out.toDomain(), nil
}

// Update applies the non-nil fields of p.
func (r *Repo) Update(ctx context.Context, id int64, p domain.UserUpdateParams) (*domain.User, error) {
	set := map[string]any{"updated_at": sq.Expr("now()")}
	if p.Nickname != nil {
		set["nickname"] = *p.Nickname
	}
	if p.Bio != nil {
		set["bio"] = emptyToNil(*p.Bio)
	}
	if p.ProfileImage != nil {
		set["profile_image"] = emptyToNil(*p.ProfileImage)
	}

	sql, args, err := postgres.Builder.
		Update(table).
		SetMap(set).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user update: %w", err)
	}

	var out row
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &out, sql, args...); err != nil {
		return nil, postgres.MapError(err, "user", id)
	}
	return out.toDomain(), nil
}

// UpdatePassword replaces the password hash.
func (r *Repo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return postgres.MapError(err, "user", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a user. Sentences, likes and memberships cascade.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return postgres.MapError(err, "user", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func joinColumns() string {
	return strings.Join(columns, ", ")
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
