package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		mock.Close()
	})
	return mock
}

func userRows(now time.Time) *pgxmock.Rows {
	bio := "reader"
	return pgxmock.NewRows(columns).
		AddRow(int64(5), "a@example.com", "hash", "alice", (*string)(nil), &bio, now, now)
}

func TestRepo_GetByID(t *testing.T) {
	t.Parallel()

	now := time.Now()

	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr error
	}{
		{
			name: "found",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
					WithArgs(int64(5)).
					WillReturnRows(userRows(now))
			},
		},
		{
			name: "not found",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .+ FROM users`).
					WithArgs(int64(5)).
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mock := newMock(t)
			tt.setup(mock)

			got, err := New(mock).GetByID(context.Background(), 5)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != 5 || got.Nickname != "alice" {
				t.Errorf("got %+v", got)
			}
			if got.Bio == nil || *got.Bio != "reader" {
				t.Errorf("bio = %v", got.Bio)
			}
			if got.ProfileImage != nil {
				t.Errorf("profile image = %v, want nil", got.ProfileImage)
			}
		})
	}
}

func TestRepo_Create_DuplicateMapsToAlreadyExists(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("a@example.com", "hash", "alice", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "ux_users_email"})

	_, err := New(mock).Create(context.Background(), &domain.User{
		Email: "a@example.com", PasswordHash: "hash", Nickname: "alice",
	})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestRepo_Update_OnlySetsGivenFields(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	nick := "bob"
	mock.ExpectQuery(`UPDATE users SET nickname = \$1, updated_at = now\(\) WHERE id = \$2 RETURNING`).
		WithArgs("bob", int64(5)).
		WillReturnRows(userRows(time.Now()))

	if _, err := New(mock).Update(context.Background(), 5, domain.UserUpdateParams{Nickname: &nick}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRepo_UpdatePassword_Missing(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	mock.ExpectExec(`UPDATE users SET password_hash`).
		WithArgs(int64(9), "newhash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := New(mock).UpdatePassword(context.Background(), 9, "newhash")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
