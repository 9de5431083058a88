package auth

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// Field bounds.
const (
	minPasswordLen = 6
	maxPasswordLen = 72 // bcrypt ignores bytes past 72
	minNicknameLen = 2
	maxNicknameLen = 30
	maxBioLen      = 500
	maxEmailLen    = 255
	maxImageURLLen = 2048
)

func validateEmail(errs []domain.FieldError, email string) []domain.FieldError {
	if email == "" {
		return append(errs, domain.FieldError{Field: "email", Message: "required"})
	}
	if len(email) > maxEmailLen {
		return append(errs, domain.FieldError{Field: "email", Message: "too long"})
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return append(errs, domain.FieldError{Field: "email", Message: "invalid format"})
	}
	return errs
}

func validatePassword(errs []domain.FieldError, field, password string) []domain.FieldError {
	switch {
	case password == "":
		return append(errs, domain.FieldError{Field: field, Message: "required"})
	case len(password) < minPasswordLen:
		return append(errs, domain.FieldError{Field: field, Message: "must be at least 6 characters"})
	case len(password) > maxPasswordLen:
		return append(errs, domain.FieldError{Field: field, Message: "too long"})
	}
	return errs
}

func validateNickname(errs []domain.FieldError, nickname string) []domain.FieldError {
	n := utf8.RuneCountInString(nickname)
	switch {
	case nickname == "":
		return append(errs, domain.FieldError{Field: "nickname", Message: "required"})
	case n < minNicknameLen:
		return append(errs, domain.FieldError{Field: "nickname", Message: "must be at least 2 characters"})
	case n > maxNicknameLen:
		return append(errs, domain.FieldError{Field: "nickname", Message: "must be at most 30 characters"})
	}
	return errs
}

func validateBio(errs []domain.FieldError, bio *string) []domain.FieldError {
	if bio != nil && utf8.RuneCountInString(*bio) > maxBioLen {
		return append(errs, domain.FieldError{Field: "bio", Message: "must be at most 500 characters"})
	}
	return errs
}

func finish(errs []domain.FieldError) error {
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// RegisterInput holds parameters for password registration.
type RegisterInput struct {
	Email    string
	Password string
	Nickname string
	Bio      *string
}

func (i *RegisterInput) normalize() {
	i.Email = domain.NormalizeEmail(i.Email)
	i.Nickname = domain.CompactSpaces(i.Nickname)
}

// Validate validates the register input.
func (i RegisterInput) Validate() error {
	var errs []domain.FieldError
	errs = validateEmail(errs, i.Email)
	errs = validatePassword(errs, "password", i.Password)
	errs = validateNickname(errs, i.Nickname)
	errs = validateBio(errs, i.Bio)
	return finish(errs)
}

// LoginInput holds parameters for password login.
type LoginInput struct {
	Email    string
	Password string
}

// Validate validates the login input.
func (i LoginInput) Validate() error {
	var errs []domain.FieldError
	if i.Email == "" {
		errs = append(errs, domain.FieldError{Field: "email", Message: "required"})
	}
	if i.Password == "" {
		errs = append(errs, domain.FieldError{Field: "password", Message: "required"})
	}
	return finish(errs)
}

// UpdateProfileInput holds a partial profile change.
// A pointer to "" clears bio or profileImage.
type UpdateProfileInput struct {
	Nickname     *string
	Bio          *string
	ProfileImage *string
}

func (i *UpdateProfileInput) normalize() {
	if i.Nickname != nil {
		n := domain.CompactSpaces(*i.Nickname)
		i.Nickname = &n
	}
	if i.ProfileImage != nil {
		v := strings.TrimSpace(*i.ProfileImage)
		i.ProfileImage = &v
	}
}

// Validate validates the update profile input.
func (i UpdateProfileInput) Validate() error {
	var errs []domain.FieldError
	if i.Nickname != nil {
		errs = validateNickname(errs, *i.Nickname)
	}
	errs = validateBio(errs, i.Bio)
	if i.ProfileImage != nil && len(*i.ProfileImage) > maxImageURLLen {
		errs = append(errs, domain.FieldError{Field: "profileImage", Message: "too long"})
	}
	return finish(errs)
}

// ChangePasswordInput holds parameters for a password change.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// Validate validates the change password input.
func (i ChangePasswordInput) Validate() error {
	var errs []domain.FieldError
	if i.CurrentPassword == "" {
		errs = append(errs, domain.FieldError{Field: "currentPassword", Message: "required"})
	}
	errs = validatePassword(errs, "newPassword", i.NewPassword)
	return finish(errs)
}

// ResetPasswordInput holds parameters for confirming a password reset.
type ResetPasswordInput struct {
	Token    string
	Password string
}

// Validate validates the reset password input.
func (i ResetPasswordInput) Validate() error {
	var errs []domain.FieldError
	if i.Token == "" {
		errs = append(errs, domain.FieldError{Field: "token", Message: "required"})
	} else if len(i.Token) > 512 {
		errs = append(errs, domain.FieldError{Field: "token", Message: "too long"})
	}
	errs = validatePassword(errs, "password", i.Password)
	return finish(errs)
}
