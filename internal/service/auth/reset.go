package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bluebuchu/collect-sub000/internal/auth"
	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// ForgotPassword issues a reset token and mails the link. Unknown emails
// succeed silently so the endpoint does not reveal which accounts exist.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.NewValidationError("email", "required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.InfoContext(ctx, "password reset for unknown email")
			return nil
		}
		return fmt.Errorf("auth.ForgotPassword get user: %w", err)
	}

	raw, hash, err := auth.GenerateOpaqueToken()
	if err != nil {
		return fmt.Errorf("auth.ForgotPassword: %w", err)
	}

	if err := s.tokens.ReplaceResetToken(ctx, user.ID, hash, s.now().Add(s.cfg.ResetTokenTTL)); err != nil {
		return fmt.Errorf("auth.ForgotPassword store token: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, raw); err != nil {
		return fmt.Errorf("auth.ForgotPassword send: %w", err)
	}
	return nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *Service) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	if err := input.Validate(); err != nil {
		return err
	}

	token, err := s.tokens.GetResetToken(ctx, auth.HashToken(input.Token))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewRuleError(msgInvalidResetToken)
		}
		return fmt.Errorf("auth.ResetPassword get token: %w", err)
	}
	if token.IsExpired(s.now()) {
		return domain.NewRuleError(msgInvalidResetToken)
	}

	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return fmt.Errorf("auth.ResetPassword: %w", err)
	}
	if err := s.tokens.ConsumeResetToken(ctx, token.ID, token.UserID, hash, s.now()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewRuleError(msgInvalidResetToken)
		}
		return fmt.Errorf("auth.ResetPassword consume: %w", err)
	}

	s.log.InfoContext(ctx, "password reset", slog.Int64("user_id", token.UserID))
	return nil
}

// CleanupExpiredTokens deletes expired reset tokens and returns how many.
func (s *Service) CleanupExpiredTokens(ctx context.Context) (int, error) {
	n, err := s.tokens.DeleteExpiredResetTokens(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("auth.CleanupExpiredTokens: %w", err)
	}
	return n, nil
}
