package community

import (
	"unicode/utf8"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

const (
	maxNameLen        = 100
	maxDescriptionLen = 1000
	maxCategoryLen    = 50
	maxRelatedBookLen = 255
	maxSearchLen      = 200
)

// CreateInput holds parameters for creating a community.
type CreateInput struct {
	Name        string
	Description *string
	Category    *string
	RelatedBook *string
	IsPublic    bool
}

func (i CreateInput) fields() domain.CommunityFields {
	return domain.CommunityFields{
		Name:        domain.CompactSpaces(i.Name),
		Description: domain.OptionalText(i.Description),
		Category:    domain.OptionalText(i.Category),
		RelatedBook: domain.OptionalText(i.RelatedBook),
		IsPublic:    domain.VisibilityFromBool(i.IsPublic),
	}
}

// Validate validates the create input.
func (i CreateInput) Validate() error {
	f := i.fields()
	errs := validateName(nil, f.Name)
	errs = validateOptional(errs, f.Description, f.Category, f.RelatedBook)
	return finish(errs)
}

// UpdateInput holds a partial community change. Nil fields are left as-is.
type UpdateInput struct {
	Name        *string
	Description *string
	Category    *string
	RelatedBook *string
	IsPublic    *bool
}

func (i UpdateInput) update() domain.CommunityUpdate {
	var u domain.CommunityUpdate
	if i.Name != nil {
		n := domain.CompactSpaces(*i.Name)
		u.Name = &n
	}
	u.Description = compactPtr(i.Description)
	u.Category = compactPtr(i.Category)
	u.RelatedBook = compactPtr(i.RelatedBook)
	if i.IsPublic != nil {
		v := domain.VisibilityFromBool(*i.IsPublic)
		u.IsPublic = &v
	}
	return u
}

// Validate validates the update input.
func (i UpdateInput) Validate() error {
	u := i.update()
	var errs []domain.FieldError
	if u.Name != nil {
		errs = validateName(errs, *u.Name)
	}
	errs = validateOptional(errs, u.Description, u.Category, u.RelatedBook)
	return finish(errs)
}

// compactPtr normalizes spacing but keeps "" so an update can blank a field.
func compactPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := domain.CompactSpaces(*s)
	return &v
}

func validateName(errs []domain.FieldError, name string) []domain.FieldError {
	if name == "" {
		return append(errs, domain.FieldError{Field: "name", Message: "required"})
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return append(errs, domain.FieldError{Field: "name", Message: "must be at most 100 characters"})
	}
	return errs
}

func validateOptional(errs []domain.FieldError, description, category, relatedBook *string) []domain.FieldError {
	if description != nil && utf8.RuneCountInString(*description) > maxDescriptionLen {
		errs = append(errs, domain.FieldError{Field: "description", Message: "must be at most 1000 characters"})
	}
	if category != nil && utf8.RuneCountInString(*category) > maxCategoryLen {
		errs = append(errs, domain.FieldError{Field: "category", Message: "must be at most 50 characters"})
	}
	if relatedBook != nil && utf8.RuneCountInString(*relatedBook) > maxRelatedBookLen {
		errs = append(errs, domain.FieldError{Field: "relatedBook", Message: "must be at most 255 characters"})
	}
	return errs
}

func finish(errs []domain.FieldError) error {
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ListInput holds the query parameters of the discovery list.
type ListInput struct {
	Sort   string
	Search string
	Offset int
	Limit  int
}

// Validate validates the list input.
func (i ListInput) Validate() error {
	var errs []domain.FieldError
	if i.Sort != "" && !domain.CommunitySort(i.Sort).IsValid() {
		errs = append(errs, domain.FieldError{Field: "sort", Message: "must be activity, members or recent"})
	}
	if len(i.Search) > maxSearchLen {
		errs = append(errs, domain.FieldError{Field: "q", Message: "too long"})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be >= 0"})
	}
	return finish(errs)
}

// RoleInput is the target role of SetMemberRole.
type RoleInput struct {
	Role string
}

// Validate accepts admin and member; ownership is not transferable.
func (i RoleInput) Validate() error {
	switch domain.MemberRole(i.Role) {
	case domain.MemberRoleAdmin, domain.MemberRoleMember:
		return nil
	}
	return domain.NewValidationError("role", "must be admin or member")
}
