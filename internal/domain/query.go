package domain

import (
	"strings"
	"time"
)

// Pagination bounds shared by list endpoints.
const (
	DefaultCommunityLimit = 9
	DefaultSentenceLimit  = 20
	MaxPageLimit          = 50
	TopSentencesPerGroup  = 3
)

// CommunityQuery specifies one page of the community discovery list.
// ViewerID == 0 means anonymous: only public communities are visible.
type CommunityQuery struct {
	Sort                CommunitySort
	Search              string
	Offset              int
	Limit               int
	ViewerID            int64
	IncludeTopSentences bool
	Now                 time.Time
}

// Normalize fills defaults and clamps bounds. It returns a copy.
func (q CommunityQuery) Normalize() CommunityQuery {
	if !q.Sort.IsValid() {
		q.Sort = CommunitySortActivity
	}
	q.Search = strings.TrimSpace(q.Search)
	q.Offset, q.Limit = clampPage(q.Offset, q.Limit, DefaultCommunityLimit)
	if q.Now.IsZero() {
		q.Now = time.Now()
	}
	return q
}

// SentenceQuery specifies a page of sentences. OwnerID > 0 restricts to one
// user's collection (all visibilities); OwnerID == 0 lists the public feed.
type SentenceQuery struct {
	OwnerID  int64
	ViewerID int64
	Sort     SentenceSort
	Search   string
	Book     string
	Author   string
	Offset   int
	Limit    int
}

// Normalize fills defaults and clamps bounds. It returns a copy.
func (q SentenceQuery) Normalize() SentenceQuery {
	if !q.Sort.IsValid() {
		q.Sort = SentenceSortLatest
	}
	q.Search = strings.TrimSpace(q.Search)
	q.Book = strings.TrimSpace(q.Book)
	q.Author = strings.TrimSpace(q.Author)
	q.Offset, q.Limit = clampPage(q.Offset, q.Limit, DefaultSentenceLimit)
	return q
}

// PageQuery is a bare offset/limit pair.
type PageQuery struct {
	Offset int
	Limit  int
}

// Normalize fills defaults and clamps bounds.
func (q PageQuery) Normalize(defaultLimit int) PageQuery {
	q.Offset, q.Limit = clampPage(q.Offset, q.Limit, defaultLimit)
	return q
}

// ExportFilter selects a user's sentences for export. From/To are inclusive
// calendar days; nil means unbounded.
type ExportFilter struct {
	Scope ExportScope
	Book  string
	From  *time.Time
	To    *time.Time
}

// Matches reports whether s passes the filter.
func (f ExportFilter) Matches(s *Sentence) bool {
	switch f.Scope {
	case ExportScopeBook:
		return s.BookTitle != nil && *s.BookTitle == f.Book
	case ExportScopeDate:
		if f.From != nil && s.CreatedAt.Before(*f.From) {
			return false
		}
		if f.To != nil && !s.CreatedAt.Before(f.To.AddDate(0, 0, 1)) {
			return false
		}
	}
	return true
}

func clampPage(offset, limit, def int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = def
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return offset, limit
}
