package token_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bluebuchu/collect-sub000/internal/adapter/postgres/testhelper"
	"github.com/bluebuchu/collect-sub000/internal/adapter/postgres/token"
	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// newRepo is a test helper that sets up the DB and returns a ready Repo.
func newRepo(t *testing.T) (*token.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return token.New(pool), pool
}

func TestRepo_Create_HappyPath(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)
	hash := "testhash-" + uuid.New().String()[:8]
	expiresAt := time.Now().UTC().Add(time.Hour).Truncate(time.Microsecond)

	got, err := repo.Create(ctx, user.ID, hash, expiresAt)
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	if got.ID == 0 {
		t.Error("ID should be assigned")
	}
	if got.UserID != user.ID {
		t.Errorf("UserID mismatch: got %d, want %d", got.UserID, user.ID)
	}
	if got.TokenHash != hash {
		t.Errorf("TokenHash mismatch: got %q, want %q", got.TokenHash, hash)
	}
	if !got.ExpiresAt.Equal(expiresAt) {
		t.Errorf("ExpiresAt mismatch: got %v, want %v", got.ExpiresAt, expiresAt)
	}

	fetched, err := repo.GetByHash(ctx, hash)
	if err != nil {
		t.Fatalf("GetByHash: unexpected error: %v", err)
	}
	if fetched.ID != got.ID {
		t.Errorf("GetByHash returned id %d, want %d", fetched.ID, got.ID)
	}
}

func TestRepo_Create_DuplicateHash(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)
	hash := "dup-" + uuid.New().String()[:8]
	expiresAt := time.Now().Add(time.Hour)

	if _, err := repo.Create(ctx, user.ID, hash, expiresAt); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := repo.Create(ctx, user.ID, hash, expiresAt)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got: %v", err)
	}
}

func TestRepo_GetByHash_NotFound(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)

	_, err := repo.GetByHash(context.Background(), "missing-"+uuid.New().String())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestRepo_DeleteByUser(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)
	other := testhelper.SeedUser(t, pool)
	expiresAt := time.Now().Add(time.Hour)

	mine := "mine-" + uuid.New().String()[:8]
	theirs := "theirs-" + uuid.New().String()[:8]
	if _, err := repo.Create(ctx, user.ID, mine, expiresAt); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, other.ID, theirs, expiresAt); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.DeleteByUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteByUser: %v", err)
	}

	if _, err := repo.GetByHash(ctx, mine); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("own token should be gone, got: %v", err)
	}
	if _, err := repo.GetByHash(ctx, theirs); err != nil {
		t.Errorf("other user's token should survive, got: %v", err)
	}
}

func TestRepo_DeleteExpired(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)
	now := time.Now().UTC()

	expired := "expired-" + uuid.New().String()[:8]
	live := "live-" + uuid.New().String()[:8]
	if _, err := repo.Create(ctx, user.ID, expired, now.Add(-time.Minute)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, user.ID, live, now.Add(time.Hour)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	n, err := repo.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n < 1 {
		t.Errorf("DeleteExpired removed %d rows, want at least 1", n)
	}
	if _, err := repo.GetByHash(ctx, expired); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expired token should be gone, got: %v", err)
	}
	if _, err := repo.GetByHash(ctx, live); err != nil {
		t.Errorf("live token should survive, got: %v", err)
	}
}
