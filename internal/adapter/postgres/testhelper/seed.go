package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedUser creates a user with a unique email and nickname.
func SeedUser(t *testing.T, pool *pgxpool.Pool) domain.User {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	user := domain.User{
		Email:        "testuser-" + suffix + "@example.com",
		PasswordHash: "hash-" + suffix,
		Nickname:     "reader-" + suffix,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, nickname, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		user.Email, user.PasswordHash, user.Nickname, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		t.Fatalf("testhelper: SeedUser: %v", err)
	}

	return user
}

// SeedSentence creates a sentence owned by userID with the given likes counter.
func SeedSentence(t *testing.T, pool *pgxpool.Pool, userID int64, content string, visibility domain.Visibility, likes int) domain.Sentence {
	t.Helper()
	ctx := context.Background()

	title := "Book " + uniqueSuffix()
	s := domain.Sentence{
		UserID:    &userID,
		Content:   content,
		BookTitle: &title,
		Likes:     likes,
		IsPublic:  visibility,
	}

	err := pool.QueryRow(ctx,
		`INSERT INTO sentences (user_id, content, book_title, likes, is_public)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`,
		userID, content, title, likes, int16(visibility),
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedSentence: %v", err)
	}

	return s
}

// SeedCommunity creates a community owned by creatorID together with the
// owner membership row.
func SeedCommunity(t *testing.T, pool *pgxpool.Pool, creatorID int64, visibility domain.Visibility) domain.Community {
	t.Helper()
	ctx := context.Background()

	c := domain.Community{
		Name:        "Circle " + uniqueSuffix(),
		CreatorID:   creatorID,
		MemberCount: 1,
		IsPublic:    visibility,
	}

	err := pool.QueryRow(ctx,
		`INSERT INTO communities (name, creator_id, member_count, is_public)
		 VALUES ($1, $2, 1, $3) RETURNING id, created_at, updated_at`,
		c.Name, creatorID, int16(visibility),
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedCommunity: %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO community_members (community_id, user_id, role) VALUES ($1, $2, 'owner')`,
		c.ID, creatorID)
	if err != nil {
		t.Fatalf("testhelper: SeedCommunity owner: %v", err)
	}

	return c
}
