// Package pgstore composes the PostgreSQL repositories into a store.Store.
// Every method that touches more than one row runs in one transaction.
package pgstore

import (
	"context"
	"fmt"
	"time"

	postgres "github.com/bluebuchu/collect-sub000/internal/adapter/postgres"
	"github.com/bluebuchu/collect-sub000/internal/adapter/postgres/book"
	"github.com/bluebuchu/collect-sub000/internal/adapter/postgres/community"
	"github.com/bluebuchu/collect-sub000/internal/adapter/postgres/sentence"
	"github.com/bluebuchu/collect-sub000/internal/adapter/postgres/token"
	"github.com/bluebuchu/collect-sub000/internal/adapter/postgres/user"
	"github.com/bluebuchu/collect-sub000/internal/domain"
	"github.com/bluebuchu/collect-sub000/internal/store"
)

var _ store.Store = (*Store)(nil)

// Pool is the connection pool the store runs on: *pgxpool.Pool in
// production, a pgxmock pool in tests.
type Pool interface {
	postgres.DB
	Ping(ctx context.Context) error
	Close()
}

// Store implements store.Store on PostgreSQL.
type Store struct {
	pool        Pool
	tx          *postgres.TxManager
	users       *user.Repo
	sentences   *sentence.Repo
	likes       *sentence.LikeRepo
	communities *community.Repo
	books       *book.Repo
	tokens      *token.Repo
}

// New wires all repositories on pool.
func New(pool Pool) *Store {
	return &Store{
		pool:        pool,
		tx:          postgres.NewTxManager(pool),
		users:       user.New(pool),
		sentences:   sentence.New(pool),
		likes:       sentence.NewLikeRepo(pool),
		communities: community.New(pool),
		books:       book.New(pool),
		tokens:      token.New(pool),
	}
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close releases the pool.
func (s *Store) Close() { s.pool.Close() }

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	return s.users.Create(ctx, u)
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.GetByEmail(ctx, email)
}

func (s *Store) GetUserByNickname(ctx context.Context, nickname string) (*domain.User, error) {
	return s.users.GetByNickname(ctx, nickname)
}

func (s *Store) UpdateUser(ctx context.Context, id int64, p domain.UserUpdateParams) (*domain.User, error) {
	return s.users.Update(ctx, id, p)
}

func (s *Store) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return s.users.UpdatePassword(ctx, id, passwordHash)
}

// DeleteUser removes the user after subtracting their contributions from
// community and sentence counters.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.users.GetByID(ctx, id); err != nil {
			return err
		}
		if err := s.communities.DetachUser(ctx, id); err != nil {
			return err
		}
		return s.users.Delete(ctx, id)
	})
}

// ---------------------------------------------------------------------------
// Sentences
// ---------------------------------------------------------------------------

func (s *Store) CreateSentence(ctx context.Context, ownerID int64, f domain.SentenceFields) (*domain.Sentence, error) {
	return s.sentences.Create(ctx, ownerID, f)
}

func (s *Store) GetSentence(ctx context.Context, id int64) (*domain.Sentence, error) {
	return s.sentences.GetByID(ctx, id)
}

func (s *Store) UpdateSentence(ctx context.Context, id int64, f domain.SentenceFields) (*domain.Sentence, error) {
	return s.sentences.Update(ctx, id, f)
}

func (s *Store) DeleteSentence(ctx context.Context, id int64) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.communities.DetachSentence(ctx, id); err != nil {
			return err
		}
		return s.sentences.Delete(ctx, id)
	})
}

func (s *Store) ListSentences(ctx context.Context, q domain.SentenceQuery) ([]domain.SentenceWithUser, error) {
	return s.sentences.List(ctx, q)
}

func (s *Store) ListSentencesForExport(ctx context.Context, ownerID int64, f domain.ExportFilter) ([]domain.Sentence, error) {
	return s.sentences.ListForExport(ctx, ownerID, f)
}

func (s *Store) SentenceTotals(ctx context.Context, ownerID int64) (domain.SentenceTotals, error) {
	return s.sentences.Totals(ctx, ownerID)
}

func (s *Store) TopBooks(ctx context.Context, ownerID int64, limit int) ([]domain.BookStat, error) {
	return s.sentences.TopBooks(ctx, ownerID, limit)
}

func (s *Store) TopAuthors(ctx context.Context, ownerID int64, limit int) ([]domain.AuthorStat, error) {
	return s.sentences.TopAuthors(ctx, ownerID, limit)
}

// ---------------------------------------------------------------------------
// Likes
// ---------------------------------------------------------------------------

// ToggleLike flips the like pair and moves the sentence counter and the
// total_likes of linking communities by the same amount. The sentence row
// is locked first so concurrent toggles on one sentence run one at a time.
func (s *Store) ToggleLike(ctx context.Context, sentenceID, userID int64) (domain.LikeState, error) {
	var state domain.LikeState
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		likes, err := s.sentences.LockLikes(ctx, sentenceID)
		if err != nil {
			return err
		}

		removed, err := s.likes.Delete(ctx, sentenceID, userID)
		if err != nil {
			return err
		}
		if removed {
			state, err = s.applyLikeDelta(ctx, sentenceID, -1)
			return err
		}

		inserted, err := s.likes.Insert(ctx, sentenceID, userID)
		if err != nil {
			return err
		}
		if !inserted {
			// The pair exists already; the counter includes it.
			state = domain.LikeState{IsLiked: true, Likes: likes}
			return nil
		}
		state, err = s.applyLikeDelta(ctx, sentenceID, 1)
		return err
	})
	return state, err
}

// Unlike removes the like pair if present.
func (s *Store) Unlike(ctx context.Context, sentenceID, userID int64) (domain.LikeState, error) {
	var state domain.LikeState
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		likes, err := s.sentences.LockLikes(ctx, sentenceID)
		if err != nil {
			return err
		}

		removed, err := s.likes.Delete(ctx, sentenceID, userID)
		if err != nil {
			return err
		}
		if !removed {
			state = domain.LikeState{IsLiked: false, Likes: likes}
			return nil
		}

		state, err = s.applyLikeDelta(ctx, sentenceID, -1)
		return err
	})
	return state, err
}

func (s *Store) applyLikeDelta(ctx context.Context, sentenceID int64, delta int) (domain.LikeState, error) {
	likes, err := s.sentences.AdjustLikes(ctx, sentenceID, delta)
	if err != nil {
		return domain.LikeState{}, err
	}
	if err := s.communities.AdjustLikesForSentence(ctx, sentenceID, delta); err != nil {
		return domain.LikeState{}, err
	}
	return domain.LikeState{IsLiked: delta > 0, Likes: likes}, nil
}

// ---------------------------------------------------------------------------
// Communities
// ---------------------------------------------------------------------------

// CreateCommunity inserts the community and its owner membership.
func (s *Store) CreateCommunity(ctx context.Context, creatorID int64, f domain.CommunityFields, now time.Time) (*domain.Community, error) {
	var c *domain.Community
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.communities.Create(ctx, creatorID, f, now)
		if err != nil {
			return err
		}
		return s.communities.InsertMember(ctx, c.ID, creatorID, domain.MemberRoleOwner, now)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) GetCommunity(ctx context.Context, id int64) (*domain.Community, error) {
	return s.communities.GetByID(ctx, id)
}

func (s *Store) UpdateCommunity(ctx context.Context, id int64, u domain.CommunityUpdate) (*domain.Community, error) {
	return s.communities.Update(ctx, id, u)
}

func (s *Store) DeleteCommunity(ctx context.Context, id int64) error {
	return s.communities.Delete(ctx, id)
}

func (s *Store) ListCommunities(ctx context.Context, q domain.CommunityQuery) ([]domain.CommunityWithStats, error) {
	return s.communities.List(ctx, q.Normalize())
}

func (s *Store) ListUserCommunities(ctx context.Context, userID int64, now time.Time) ([]domain.CommunityWithStats, error) {
	return s.communities.ListForUser(ctx, userID, now)
}

func (s *Store) CountUserCommunities(ctx context.Context, userID int64) (int, error) {
	return s.communities.CountForUser(ctx, userID)
}

func (s *Store) GetMember(ctx context.Context, communityID, userID int64) (*domain.CommunityMember, error) {
	return s.communities.GetMember(ctx, communityID, userID)
}

func (s *Store) ListMembers(ctx context.Context, communityID int64) ([]domain.MemberWithUser, error) {
	return s.communities.ListMembers(ctx, communityID)
}

// JoinCommunity inserts a member row and bumps member_count.
func (s *Store) JoinCommunity(ctx context.Context, communityID, userID int64, now time.Time) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.communities.InsertMember(ctx, communityID, userID, domain.MemberRoleMember, now); err != nil {
			return err
		}
		return s.communities.AdjustMemberCount(ctx, communityID, 1)
	})
}

// LeaveCommunity deletes the member row and decrements member_count.
func (s *Store) LeaveCommunity(ctx context.Context, communityID, userID int64) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.communities.DeleteMember(ctx, communityID, userID); err != nil {
			return err
		}
		return s.communities.AdjustMemberCount(ctx, communityID, -1)
	})
}

func (s *Store) SetMemberRole(ctx context.Context, communityID, userID int64, role domain.MemberRole) error {
	return s.communities.UpdateRole(ctx, communityID, userID, role)
}

// AddSentenceToCommunity links the sentence and folds its likes into the
// community counters.
func (s *Store) AddSentenceToCommunity(ctx context.Context, communityID, sentenceID, addedBy int64, now time.Time) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		likes, err := s.sentences.LockLikes(ctx, sentenceID)
		if err != nil {
			return err
		}
		if err := s.communities.InsertLink(ctx, communityID, sentenceID, addedBy, now); err != nil {
			return err
		}
		return s.communities.AdjustSentenceStats(ctx, communityID, 1, likes, &now)
	})
}

// RemoveSentenceFromCommunity unlinks the sentence and subtracts its likes.
func (s *Store) RemoveSentenceFromCommunity(ctx context.Context, communityID, sentenceID int64) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		likes, err := s.sentences.LockLikes(ctx, sentenceID)
		if err != nil {
			return err
		}
		if err := s.communities.DeleteLink(ctx, communityID, sentenceID); err != nil {
			return err
		}
		return s.communities.AdjustSentenceStats(ctx, communityID, -1, -likes, nil)
	})
}

func (s *Store) ListCommunitySentences(ctx context.Context, communityID, viewerID int64, page domain.PageQuery) ([]domain.SentenceWithUser, error) {
	return s.communities.ListSentences(ctx, communityID, viewerID, page.Normalize(domain.DefaultSentenceLimit))
}

func (s *Store) TopSentencesByCommunity(ctx context.Context, communityIDs []int64, perCommunity int) (map[int64][]domain.Sentence, error) {
	return s.communities.TopSentences(ctx, communityIDs, perCommunity)
}

func (s *Store) RefreshActivityScores(ctx context.Context, now time.Time) (int, error) {
	return s.communities.RefreshScores(ctx, now)
}

func (s *Store) ClearActivityScores(ctx context.Context) (int, error) {
	return s.communities.ClearScores(ctx)
}

// ---------------------------------------------------------------------------
// Books
// ---------------------------------------------------------------------------

func (s *Store) TouchBook(ctx context.Context, title string, author, publisher *string) error {
	return s.books.Touch(ctx, title, author, publisher)
}

func (s *Store) SearchBooks(ctx context.Context, query string, limit int) ([]domain.Book, error) {
	return s.books.Search(ctx, query, limit)
}

func (s *Store) PopularBooks(ctx context.Context, limit int) ([]domain.Book, error) {
	return s.books.Popular(ctx, limit)
}

// ---------------------------------------------------------------------------
// Reset tokens
// ---------------------------------------------------------------------------

// ReplaceResetToken deletes the user's earlier tokens and stores a new one.
func (s *Store) ReplaceResetToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.tokens.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		_, err := s.tokens.Create(ctx, userID, tokenHash, expiresAt)
		return err
	})
}

func (s *Store) GetResetToken(ctx context.Context, tokenHash string) (*domain.PasswordResetToken, error) {
	return s.tokens.GetByHash(ctx, tokenHash)
}

// ConsumeResetToken claims the token before touching the password. The
// claiming DELETE takes the row lock, so a concurrent reset with the same
// token finds nothing to delete and gets ErrNotFound.
func (s *Store) ConsumeResetToken(ctx context.Context, tokenID, userID int64, passwordHash string, now time.Time) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		claimed, err := s.tokens.Claim(ctx, tokenID, now)
		if err != nil {
			return err
		}
		if !claimed {
			return fmt.Errorf("password_reset_token %d: %w", tokenID, domain.ErrNotFound)
		}
		return s.users.UpdatePassword(ctx, userID, passwordHash)
	})
}

func (s *Store) DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int, error) {
	return s.tokens.DeleteExpired(ctx, now)
}
