package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bluebuchu/collect-sub000/internal/auth"
	"github.com/bluebuchu/collect-sub000/internal/config"
	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// userStore defines the user persistence needed by auth service.
type userStore interface {
	CreateUser(ctx context.Context, u *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByNickname(ctx context.Context, nickname string) (*domain.User, error)
	UpdateUser(ctx context.Context, id int64, p domain.UserUpdateParams) (*domain.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	DeleteUser(ctx context.Context, id int64) error
}

// resetTokenStore defines the password reset token persistence needed by auth service.
type resetTokenStore interface {
	ReplaceResetToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error
	GetResetToken(ctx context.Context, tokenHash string) (*domain.PasswordResetToken, error)
	ConsumeResetToken(ctx context.Context, tokenID, userID int64, passwordHash string, now time.Time) error
	DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int, error)
}

// tokenIssuer signs bearer tokens.
type tokenIssuer interface {
	GenerateToken(u *domain.User) (string, error)
}

// resetMailer delivers password reset links.
type resetMailer interface {
	SendPasswordReset(ctx context.Context, email, rawToken string) error
}

// imageStore keeps uploaded profile images.
type imageStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// oauthVerifier exchanges a Google authorization code for an identity.
type oauthVerifier interface {
	AuthCodeURL(state string) string
	VerifyCode(ctx context.Context, code string) (*auth.OAuthIdentity, error)
}

// Service implements account operations.
type Service struct {
	log    *slog.Logger
	users  userStore
	tokens resetTokenStore
	jwt    tokenIssuer
	mailer resetMailer
	images imageStore
	oauth  oauthVerifier
	cfg    config.AuthConfig
	objCfg config.ObjectStoreConfig
	now    func() time.Time
}

// Option enables an optional integration.
type Option func(*Service)

// WithImages enables profile image uploads.
func WithImages(images imageStore, cfg config.ObjectStoreConfig) Option {
	return func(s *Service) {
		s.images = images
		s.objCfg = cfg
	}
}

// WithGoogle enables Google sign-in.
func WithGoogle(v oauthVerifier) Option {
	return func(s *Service) { s.oauth = v }
}

// NewService creates a new auth service instance.
func NewService(
	logger *slog.Logger,
	users userStore,
	tokens resetTokenStore,
	jwt tokenIssuer,
	mailer resetMailer,
	cfg config.AuthConfig,
	opts ...Option,
) *Service {
	s := &Service{
		log:    logger.With("service", "auth"),
		users:  users,
		tokens: tokens,
		jwt:    jwt,
		mailer: mailer,
		cfg:    cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GoogleEnabled reports whether Google sign-in is wired.
func (s *Service) GoogleEnabled() bool { return s.oauth != nil }

// ImagesEnabled reports whether profile image uploads are wired.
func (s *Service) ImagesEnabled() bool { return s.images != nil }

func (s *Service) issueToken(user *domain.User) (*AuthResult, error) {
	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *Service) hashPassword(password string) (string, error) {
	return auth.HashPassword(password, s.cfg.PasswordHashCost)
}
