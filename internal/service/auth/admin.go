package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// SetPassword overwrites the password of the account registered under
// email. Used by operators; no current password is required.
func (s *Service) SetPassword(ctx context.Context, email, password string) error {
	if errs := validatePassword(nil, "password", password); len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}

	user, err := s.users.GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("auth.SetPassword get user: %w", err)
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return fmt.Errorf("auth.SetPassword: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("auth.SetPassword update: %w", err)
	}

	s.log.InfoContext(ctx, "password set by operator", slog.Int64("user_id", user.ID))
	return nil
}

// DeleteAccount removes the account registered under email together with
// everything it owns.
func (s *Service) DeleteAccount(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("auth.DeleteAccount get user: %w", err)
	}
	if err := s.users.DeleteUser(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("auth.DeleteAccount: %w", err)
	}
	if key, ok := uploadedKey(user.ProfileImage); ok && s.images != nil {
		if err := s.images.Delete(ctx, key); err != nil {
			s.log.WarnContext(ctx, "delete profile image", slog.String("key", key), slog.String("error", err.Error()))
		}
	}

	s.log.InfoContext(ctx, "account deleted", slog.Int64("user_id", user.ID))
	return user, nil
}
