package domain

import (
	"time"
)

// User represents a registered account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Nickname     string
	ProfileImage *string
	Bio          *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserUpdateParams holds optional profile changes. Nil fields are left as-is.
type UserUpdateParams struct {
	Nickname     *string
	Bio          *string
	ProfileImage *string
}

// PasswordResetToken is a single-use password reset credential.
// Only the SHA-256 hash of the raw token is persisted.
type PasswordResetToken struct {
	ID        int64
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired returns true if the token has expired relative to now.
func (t *PasswordResetToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
