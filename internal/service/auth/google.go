package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/bluebuchu/collect-sub000/internal/auth"
	"github.com/bluebuchu/collect-sub000/internal/domain"
)

const maxNicknameAttempts = 20

// GoogleAuthURL returns the consent URL for state.
func (s *Service) GoogleAuthURL(state string) (string, error) {
	if s.oauth == nil {
		return "", fmt.Errorf("google sign-in: %w", domain.ErrUnavailable)
	}
	return s.oauth.AuthCodeURL(state), nil
}

// LoginWithGoogle verifies the authorization code and signs in the
// matching local user, creating it on first login.
func (s *Service) LoginWithGoogle(ctx context.Context, code string) (*AuthResult, error) {
	if s.oauth == nil {
		return nil, fmt.Errorf("google sign-in: %w", domain.ErrUnavailable)
	}
	if code == "" {
		return nil, domain.NewValidationError("code", "required")
	}

	identity, err := s.oauth.VerifyCode(ctx, code)
	if err != nil {
		s.log.WarnContext(ctx, "google verify failed", slog.String("error", err.Error()))
		return nil, domain.ErrUnauthorized
	}

	user, err := s.findOrCreateGoogleUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	result, err := s.issueToken(user)
	if err != nil {
		return nil, fmt.Errorf("auth.LoginWithGoogle: %w", err)
	}
	return result, nil
}

func (s *Service) findOrCreateGoogleUser(ctx context.Context, identity *auth.OAuthIdentity) (*domain.User, error) {
	email := domain.NormalizeEmail(identity.Email)

	user, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if user.ProfileImage == nil && identity.AvatarURL != nil {
			updated, err := s.users.UpdateUser(ctx, user.ID, domain.UserUpdateParams{ProfileImage: identity.AvatarURL})
			if err != nil {
				return nil, fmt.Errorf("auth.LoginWithGoogle fill image: %w", err)
			}
			return updated, nil
		}
		return user, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("auth.LoginWithGoogle get user: %w", err)
	}

	nickname, err := s.freeNickname(ctx, identity.DisplayName())
	if err != nil {
		return nil, err
	}

	// The random password is never shown; the account signs in through Google
	// until the owner sets one via reset.
	raw, _, err := auth.GenerateOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("auth.LoginWithGoogle: %w", err)
	}
	hash, err := s.hashPassword(raw)
	if err != nil {
		return nil, fmt.Errorf("auth.LoginWithGoogle: %w", err)
	}

	user, err = s.users.CreateUser(ctx, &domain.User{
		Email:        email,
		PasswordHash: hash,
		Nickname:     nickname,
		ProfileImage: identity.AvatarURL,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.NewRuleError(msgEmailOrNickUsed)
		}
		return nil, fmt.Errorf("auth.LoginWithGoogle create user: %w", err)
	}

	s.log.InfoContext(ctx, "user registered via google", slog.Int64("user_id", user.ID))
	return user, nil
}

// freeNickname derives an unused nickname from the provider's display name
// by appending a counter.
func (s *Service) freeNickname(ctx context.Context, display string) (string, error) {
	base := truncateRunes(domain.CompactSpaces(display), maxNicknameLen-4)
	if utf8.RuneCountInString(base) < minNicknameLen {
		base = "reader"
	}

	candidate := base
	for i := 1; i <= maxNicknameAttempts; i++ {
		_, err := s.users.GetUserByNickname(ctx, candidate)
		if errors.Is(err, domain.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("check nickname: %w", err)
		}
		candidate = base + strconv.Itoa(i+1)
	}
	return base + uuid.NewString()[:4], nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
