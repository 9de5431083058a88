package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// Rule messages shown to clients.
const (
	msgEmailUsed          = "email already used"
	msgNicknameUsed       = "nickname already used"
	msgEmailOrNickUsed    = "email or nickname already used"
	msgInvalidCredentials = "invalid email or password"
	msgWrongPassword      = "current password is incorrect"
	msgInvalidResetToken  = "invalid or expired reset token"
)

// Register creates a password account and signs it in.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if err := s.ensureUnique(ctx, input.Email, input.Nickname); err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	user, err := s.users.CreateUser(ctx, &domain.User{
		Email:        input.Email,
		PasswordHash: hash,
		Nickname:     input.Nickname,
		Bio:          domain.OptionalText(input.Bio),
	})
	if err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.NewRuleError(msgEmailOrNickUsed)
		}
		return nil, fmt.Errorf("auth.Register create user: %w", err)
	}

	result, err := s.issueToken(user)
	if err != nil {
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	s.log.InfoContext(ctx, "user registered", slog.Int64("user_id", user.ID))
	return result, nil
}

// ensureUnique reports which unique field is already taken.
func (s *Service) ensureUnique(ctx context.Context, email, nickname string) error {
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return domain.NewRuleError(msgEmailUsed)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("check email: %w", err)
	}
	return s.ensureNicknameFree(ctx, nickname, 0)
}

// ensureNicknameFree fails when another user than selfID holds nickname.
func (s *Service) ensureNicknameFree(ctx context.Context, nickname string, selfID int64) error {
	u, err := s.users.GetUserByNickname(ctx, nickname)
	switch {
	case err == nil && u.ID != selfID:
		return domain.NewRuleError(msgNicknameUsed)
	case err == nil, errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("check nickname: %w", err)
	}
}
