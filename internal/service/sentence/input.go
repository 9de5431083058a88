package sentence

import (
	"strings"
	"unicode/utf8"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

const (
	maxContentLen = 5000
	maxMetaLen    = 255
	maxNoteLen    = 2000
	maxPageNumber = 100000
	maxSearchLen  = 200
)

// CreateInput holds parameters for saving a sentence.
type CreateInput struct {
	Content      string
	BookTitle    *string
	Author       *string
	Publisher    *string
	PageNumber   *int
	IsPublic     bool
	PrivateNote  *string
	IsBookmarked bool
}

func (i CreateInput) fields() domain.SentenceFields {
	return domain.SentenceFields{
		Content:      strings.TrimSpace(i.Content),
		BookTitle:    domain.OptionalText(i.BookTitle),
		Author:       domain.OptionalText(i.Author),
		Publisher:    domain.OptionalText(i.Publisher),
		PageNumber:   i.PageNumber,
		IsPublic:     domain.VisibilityFromBool(i.IsPublic),
		PrivateNote:  trimOrNil(i.PrivateNote),
		IsBookmarked: i.IsBookmarked,
	}
}

// UpdateInput holds a partial sentence change. Nil fields are left as-is;
// a pointer to "" clears an optional text field.
type UpdateInput struct {
	Content      *string
	BookTitle    *string
	Author       *string
	Publisher    *string
	PageNumber   *int
	ClearPage    bool
	IsPublic     *bool
	PrivateNote  *string
	IsBookmarked *bool
}

// apply merges the change into the current fields.
func (i UpdateInput) apply(cur *domain.Sentence) domain.SentenceFields {
	f := domain.SentenceFields{
		Content:      cur.Content,
		BookTitle:    cur.BookTitle,
		Author:       cur.Author,
		Publisher:    cur.Publisher,
		PageNumber:   cur.PageNumber,
		IsPublic:     cur.IsPublic,
		PrivateNote:  cur.PrivateNote,
		IsBookmarked: cur.IsBookmarked,
	}
	if i.Content != nil {
		f.Content = strings.TrimSpace(*i.Content)
	}
	if i.BookTitle != nil {
		f.BookTitle = domain.OptionalText(i.BookTitle)
	}
	if i.Author != nil {
		f.Author = domain.OptionalText(i.Author)
	}
	if i.Publisher != nil {
		f.Publisher = domain.OptionalText(i.Publisher)
	}
	if i.ClearPage {
		f.PageNumber = nil
	} else if i.PageNumber != nil {
		f.PageNumber = i.PageNumber
	}
	if i.IsPublic != nil {
		f.IsPublic = domain.VisibilityFromBool(*i.IsPublic)
	}
	if i.PrivateNote != nil {
		f.PrivateNote = trimOrNil(i.PrivateNote)
	}
	if i.IsBookmarked != nil {
		f.IsBookmarked = *i.IsBookmarked
	}
	return f
}

func validateFields(f domain.SentenceFields) error {
	var errs []domain.FieldError

	if f.Content == "" {
		errs = append(errs, domain.FieldError{Field: "content", Message: "required"})
	} else if utf8.RuneCountInString(f.Content) > maxContentLen {
		errs = append(errs, domain.FieldError{Field: "content", Message: "must be at most 5000 characters"})
	}

	for _, m := range []struct {
		field string
		value *string
	}{{"bookTitle", f.BookTitle}, {"author", f.Author}, {"publisher", f.Publisher}} {
		if m.value != nil && utf8.RuneCountInString(*m.value) > maxMetaLen {
			errs = append(errs, domain.FieldError{Field: m.field, Message: "must be at most 255 characters"})
		}
	}

	if f.PageNumber != nil && (*f.PageNumber < 1 || *f.PageNumber > maxPageNumber) {
		errs = append(errs, domain.FieldError{Field: "pageNumber", Message: "must be between 1 and 100000"})
	}

	if f.PrivateNote != nil && utf8.RuneCountInString(*f.PrivateNote) > maxNoteLen {
		errs = append(errs, domain.FieldError{Field: "privateNote", Message: "must be at most 2000 characters"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ListInput holds the query parameters of a sentence list.
type ListInput struct {
	Search string
	Book   string
	Author string
	Sort   string
	Offset int
	Limit  int
}

// Validate validates the list input.
func (i ListInput) Validate() error {
	var errs []domain.FieldError
	if i.Sort != "" && !domain.SentenceSort(i.Sort).IsValid() {
		errs = append(errs, domain.FieldError{Field: "sort", Message: "must be latest, oldest or likes"})
	}
	if len(i.Search) > maxSearchLen {
		errs = append(errs, domain.FieldError{Field: "q", Message: "too long"})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be >= 0"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func (i ListInput) query() domain.SentenceQuery {
	return domain.SentenceQuery{
		Sort:   domain.SentenceSort(i.Sort),
		Search: i.Search,
		Book:   i.Book,
		Author: i.Author,
		Offset: i.Offset,
		Limit:  i.Limit,
	}
}

func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
