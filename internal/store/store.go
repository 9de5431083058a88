// Package store defines the storage capabilities shared by the postgres and
// in-memory backends. Each method is atomic: operations that touch a join
// row and a denormalized counter do both or neither.
package store

import (
	"context"
	"time"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// Users persists accounts.
type Users interface {
	// CreateUser returns domain.ErrAlreadyExists when the email or nickname is taken.
	CreateUser(ctx context.Context, u *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByNickname(ctx context.Context, nickname string) (*domain.User, error)
	UpdateUser(ctx context.Context, id int64, p domain.UserUpdateParams) (*domain.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	DeleteUser(ctx context.Context, id int64) error
}

// Sentences persists sentences and serves the feed, export and stats queries.
type Sentences interface {
	CreateSentence(ctx context.Context, ownerID int64, f domain.SentenceFields) (*domain.Sentence, error)
	GetSentence(ctx context.Context, id int64) (*domain.Sentence, error)
	UpdateSentence(ctx context.Context, id int64, f domain.SentenceFields) (*domain.Sentence, error)
	// DeleteSentence also unlinks the sentence from communities and
	// adjusts their sentence_count and total_likes.
	DeleteSentence(ctx context.Context, id int64) error
	ListSentences(ctx context.Context, q domain.SentenceQuery) ([]domain.SentenceWithUser, error)
	ListSentencesForExport(ctx context.Context, ownerID int64, f domain.ExportFilter) ([]domain.Sentence, error)
	// SentenceTotals counts a user's sentences; ownerID 0 counts public sentences.
	SentenceTotals(ctx context.Context, ownerID int64) (domain.SentenceTotals, error)
	// TopBooks and TopAuthors aggregate a user's sentences, or all public
	// sentences when ownerID is 0.
	TopBooks(ctx context.Context, ownerID int64, limit int) ([]domain.BookStat, error)
	TopAuthors(ctx context.Context, ownerID int64, limit int) ([]domain.AuthorStat, error)
}

// Likes maintains sentence_likes together with sentences.likes and the
// total_likes of every community linking the sentence.
type Likes interface {
	ToggleLike(ctx context.Context, sentenceID, userID int64) (domain.LikeState, error)
	// Unlike is a no-op when the pair is not liked.
	Unlike(ctx context.Context, sentenceID, userID int64) (domain.LikeState, error)
}

// Communities persists communities, memberships and sentence links.
type Communities interface {
	CreateCommunity(ctx context.Context, creatorID int64, f domain.CommunityFields, now time.Time) (*domain.Community, error)
	GetCommunity(ctx context.Context, id int64) (*domain.Community, error)
	UpdateCommunity(ctx context.Context, id int64, u domain.CommunityUpdate) (*domain.Community, error)
	DeleteCommunity(ctx context.Context, id int64) error
	ListCommunities(ctx context.Context, q domain.CommunityQuery) ([]domain.CommunityWithStats, error)
	ListUserCommunities(ctx context.Context, userID int64, now time.Time) ([]domain.CommunityWithStats, error)
	CountUserCommunities(ctx context.Context, userID int64) (int, error)

	// GetMember returns domain.ErrNotFound when the user is not a member.
	GetMember(ctx context.Context, communityID, userID int64) (*domain.CommunityMember, error)
	ListMembers(ctx context.Context, communityID int64) ([]domain.MemberWithUser, error)
	// JoinCommunity returns domain.ErrAlreadyExists for an existing member.
	JoinCommunity(ctx context.Context, communityID, userID int64, now time.Time) error
	// LeaveCommunity returns domain.ErrNotFound for a non-member.
	LeaveCommunity(ctx context.Context, communityID, userID int64) error
	SetMemberRole(ctx context.Context, communityID, userID int64, role domain.MemberRole) error

	// AddSentenceToCommunity returns domain.ErrAlreadyExists for a duplicate link.
	AddSentenceToCommunity(ctx context.Context, communityID, sentenceID, addedBy int64, now time.Time) error
	// RemoveSentenceFromCommunity returns domain.ErrNotFound when not linked.
	RemoveSentenceFromCommunity(ctx context.Context, communityID, sentenceID int64) error
	// ListCommunitySentences returns linked sentences that are public or
	// owned by viewerID, most recently added first.
	ListCommunitySentences(ctx context.Context, communityID, viewerID int64, page domain.PageQuery) ([]domain.SentenceWithUser, error)
	// TopSentencesByCommunity returns up to perCommunity linked public
	// sentences per community ordered by likes DESC, id ASC.
	TopSentencesByCommunity(ctx context.Context, communityIDs []int64, perCommunity int) (map[int64][]domain.Sentence, error)

	// RefreshActivityScores stores the computed score on every community.
	RefreshActivityScores(ctx context.Context, now time.Time) (int, error)
	// ClearActivityScores resets stored scores so lists compute them on the fly.
	ClearActivityScores(ctx context.Context) (int, error)
}

// Books maintains the book autocomplete cache.
type Books interface {
	// TouchBook upserts a book by (title, author) and bumps its sentence_count.
	TouchBook(ctx context.Context, title string, author, publisher *string) error
	// SearchBooks matches title or author and bumps search_count of the rows returned.
	SearchBooks(ctx context.Context, query string, limit int) ([]domain.Book, error)
	PopularBooks(ctx context.Context, limit int) ([]domain.Book, error)
}

// ResetTokens persists password reset tokens.
type ResetTokens interface {
	// ReplaceResetToken deletes the user's prior tokens and stores a new one.
	ReplaceResetToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error
	GetResetToken(ctx context.Context, tokenHash string) (*domain.PasswordResetToken, error)
	// ConsumeResetToken claims the token if it is still unexpired at now
	// and sets the new password hash in the same step. A token that is
	// gone or expired yields domain.ErrNotFound, so each token changes the
	// password at most once.
	ConsumeResetToken(ctx context.Context, tokenID, userID int64, passwordHash string, now time.Time) error
	DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int, error)
}

// Store is the full storage capability selected at startup by
// storage.backend.
type Store interface {
	Users
	Sentences
	Likes
	Communities
	Books
	ResetTokens

	Ping(ctx context.Context) error
	Close()
}
