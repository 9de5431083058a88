package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bluebuchu/collect-sub000/internal/auth"
	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// Login authenticates with email and password. Unknown email and wrong
// password produce the same rule error.
func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	input.Email = domain.NormalizeEmail(input.Email)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewRuleError(msgInvalidCredentials)
		}
		return nil, fmt.Errorf("auth.Login get user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, input.Password) {
		return nil, domain.NewRuleError(msgInvalidCredentials)
	}

	result, err := s.issueToken(user)
	if err != nil {
		return nil, fmt.Errorf("auth.Login: %w", err)
	}

	s.log.InfoContext(ctx, "user logged in", slog.Int64("user_id", user.ID))
	return result, nil
}

// Me loads the signed-in user. A user deleted after the token was issued
// is reported as unauthorized.
func (s *Service) Me(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("auth.Me: %w", err)
	}
	return user, nil
}

// IssueToken signs a bearer token for an already authenticated user.
func (s *Service) IssueToken(ctx context.Context, userID int64) (*AuthResult, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.issueToken(user)
}
