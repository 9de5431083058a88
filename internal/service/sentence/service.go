// Package sentence implements the sentence collection, the public feed and
// likes.
package sentence

import (
	"context"
	"log/slog"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

type sentenceStore interface {
	CreateSentence(ctx context.Context, ownerID int64, f domain.SentenceFields) (*domain.Sentence, error)
	GetSentence(ctx context.Context, id int64) (*domain.Sentence, error)
	UpdateSentence(ctx context.Context, id int64, f domain.SentenceFields) (*domain.Sentence, error)
	DeleteSentence(ctx context.Context, id int64) error
	ListSentences(ctx context.Context, q domain.SentenceQuery) ([]domain.SentenceWithUser, error)
}

type likeStore interface {
	ToggleLike(ctx context.Context, sentenceID, userID int64) (domain.LikeState, error)
	Unlike(ctx context.Context, sentenceID, userID int64) (domain.LikeState, error)
}

type bookCache interface {
	TouchBook(ctx context.Context, title string, author, publisher *string) error
}

// Service provides sentence operations.
type Service struct {
	sentences sentenceStore
	likes     likeStore
	books     bookCache
	log       *slog.Logger
}

// NewService creates a new sentence service.
func NewService(log *slog.Logger, sentences sentenceStore, likes likeStore, books bookCache) *Service {
	return &Service{
		sentences: sentences,
		likes:     likes,
		books:     books,
		log:       log.With("service", "sentence"),
	}
}

// visible loads a sentence the viewer may read. Private sentences of other
// users are reported as missing.
func (s *Service) visible(ctx context.Context, viewerID, id int64) (*domain.Sentence, error) {
	sent, err := s.sentences.GetSentence(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sent.VisibleTo(viewerID) {
		return nil, domain.ErrNotFound
	}
	return sent, nil
}

// owned loads a sentence and checks that userID owns it.
func (s *Service) owned(ctx context.Context, userID, id int64) (*domain.Sentence, error) {
	sent, err := s.visible(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !sent.IsOwnedBy(userID) {
		return nil, domain.ErrForbidden
	}
	return sent, nil
}

// touchBook feeds the autocomplete cache. Failures are logged and ignored:
// the cache is never authoritative.
func (s *Service) touchBook(ctx context.Context, sent *domain.Sentence) {
	if sent.BookTitle == nil {
		return
	}
	if err := s.books.TouchBook(ctx, *sent.BookTitle, sent.Author, sent.Publisher); err != nil {
		s.log.WarnContext(ctx, "touch book cache",
			slog.Int64("sentence_id", sent.ID), slog.String("error", err.Error()))
	}
}
