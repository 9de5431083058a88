package domain

import (
	"strings"
	"time"
)

// Sentence is a quoted passage saved by a user.
// Likes is a denormalized counter kept equal to the number of SentenceLike rows.
type Sentence struct {
	ID             int64
	UserID         *int64
	Content        string
	BookTitle      *string
	Author         *string
	Publisher      *string
	PageNumber     *int
	Likes          int
	IsPublic       Visibility
	PrivateNote    *string
	IsBookmarked   bool
	LegacyNickname *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsOwnedBy reports whether userID owns the sentence.
func (s *Sentence) IsOwnedBy(userID int64) bool {
	return s.UserID != nil && *s.UserID == userID
}

// VisibleTo reports whether the viewer may read the sentence.
// viewerID == 0 means anonymous.
func (s *Sentence) VisibleTo(viewerID int64) bool {
	return s.IsPublic.IsPublic() || (viewerID != 0 && s.IsOwnedBy(viewerID))
}

// PageOrZero returns the page number, treating a missing page as 0.
func (s *Sentence) PageOrZero() int {
	if s.PageNumber == nil {
		return 0
	}
	return *s.PageNumber
}

// SentenceAuthor is the public projection of the sentence owner.
type SentenceAuthor struct {
	ID           int64
	Nickname     string
	ProfileImage *string
}

// SentenceWithUser is a sentence joined with its owner for feeds.
// User is nil for legacy sentences without a linked account, in which case
// DisplayName falls back to LegacyNickname.
type SentenceWithUser struct {
	Sentence
	User    *SentenceAuthor
	IsLiked bool
}

// DisplayName returns the nickname shown next to the sentence.
func (s *SentenceWithUser) DisplayName() string {
	if s.User != nil {
		return s.User.Nickname
	}
	if s.LegacyNickname != nil && strings.TrimSpace(*s.LegacyNickname) != "" {
		return *s.LegacyNickname
	}
	return "anonymous"
}

// LikeState is the result of a like mutation.
type LikeState struct {
	IsLiked bool
	Likes   int
}

// SentenceFields holds the writable fields of a sentence.
type SentenceFields struct {
	Content      string
	BookTitle    *string
	Author       *string
	Publisher    *string
	PageNumber   *int
	IsPublic     Visibility
	PrivateNote  *string
	IsBookmarked bool
}
