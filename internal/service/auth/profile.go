package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/bluebuchu/collect-sub000/internal/auth"
	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// UploadPathPrefix is the public path under which stored images are served.
const UploadPathPrefix = "/api/uploads/"

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UpdateProfile applies a partial profile change.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*domain.User, error) {
	input.normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if input.Nickname != nil {
		if err := s.ensureNicknameFree(ctx, *input.Nickname, userID); err != nil {
			return nil, err
		}
	}

	user, err := s.users.UpdateUser(ctx, userID, domain.UserUpdateParams{
		Nickname:     input.Nickname,
		Bio:          input.Bio,
		ProfileImage: input.ProfileImage,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.NewRuleError(msgNicknameUsed)
		}
		return nil, fmt.Errorf("auth.UpdateProfile: %w", err)
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, userID int64, input ChangePasswordInput) error {
	if err := input.Validate(); err != nil {
		return err
	}

	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, input.CurrentPassword) {
		return domain.NewRuleError(msgWrongPassword)
	}

	hash, err := s.hashPassword(input.NewPassword)
	if err != nil {
		return fmt.Errorf("auth.ChangePassword: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("auth.ChangePassword: %w", err)
	}

	s.log.InfoContext(ctx, "password changed", slog.Int64("user_id", userID))
	return nil
}

// ImageUpload is a profile image read from a multipart form.
type ImageUpload struct {
	Body        io.Reader
	Size        int64
	ContentType string
}

// UploadProfileImage stores the image and points the profile at it. The
// previously uploaded image, if any, is removed afterwards.
func (s *Service) UploadProfileImage(ctx context.Context, userID int64, img ImageUpload) (*domain.User, error) {
	if s.images == nil {
		return nil, fmt.Errorf("image uploads: %w", domain.ErrUnavailable)
	}

	ext, ok := imageExtensions[img.ContentType]
	if !ok {
		return nil, domain.NewValidationError("image", "must be a jpeg, png, gif or webp image")
	}
	if img.Size <= 0 {
		return nil, domain.NewValidationError("image", "required")
	}
	if img.Size > s.objCfg.MaxUploadBytes {
		return nil, domain.NewValidationError("image", fmt.Sprintf("must be at most %d bytes", s.objCfg.MaxUploadBytes))
	}

	prev, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("profile/%d/%s%s", userID, uuid.NewString(), ext)
	if err := s.images.Put(ctx, key, img.Body, img.Size, img.ContentType); err != nil {
		return nil, fmt.Errorf("auth.UploadProfileImage: %w", err)
	}

	path := UploadPathPrefix + key
	user, err := s.users.UpdateUser(ctx, userID, domain.UserUpdateParams{ProfileImage: &path})
	if err != nil {
		return nil, fmt.Errorf("auth.UploadProfileImage: %w", err)
	}

	if oldKey, ok := uploadedKey(prev.ProfileImage); ok {
		if err := s.images.Delete(ctx, oldKey); err != nil {
			s.log.WarnContext(ctx, "delete previous profile image",
				slog.String("key", oldKey), slog.String("error", err.Error()))
		}
	}
	return user, nil
}

// ImageURL returns a short-lived URL for an uploaded object key.
func (s *Service) ImageURL(ctx context.Context, key string) (string, error) {
	if s.images == nil {
		return "", fmt.Errorf("image uploads: %w", domain.ErrUnavailable)
	}
	if key == "" || strings.Contains(key, "..") || !strings.HasPrefix(key, "profile/") {
		return "", fmt.Errorf("image %q: %w", key, domain.ErrNotFound)
	}
	u, err := s.images.PresignGet(ctx, key, s.objCfg.PresignTTL)
	if err != nil {
		return "", fmt.Errorf("auth.ImageURL: %w", err)
	}
	return u, nil
}

func uploadedKey(image *string) (string, bool) {
	if image == nil {
		return "", false
	}
	return strings.CutPrefix(*image, UploadPathPrefix)
}
