package sentence

import (
	"context"
	"fmt"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// ListMine returns one page of the user's own collection, public and private.
func (s *Service) ListMine(ctx context.Context, userID int64, input ListInput) ([]domain.SentenceWithUser, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	q := input.query()
	q.OwnerID = userID
	q.ViewerID = userID

	list, err := s.sentences.ListSentences(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sentence.ListMine: %w", err)
	}
	return list, nil
}

// Feed returns one page of public sentences from every user. IsLiked is
// computed for viewerID (0 = anonymous).
func (s *Service) Feed(ctx context.Context, viewerID int64, input ListInput) ([]domain.SentenceWithUser, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	q := input.query()
	q.ViewerID = viewerID

	list, err := s.sentences.ListSentences(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sentence.Feed: %w", err)
	}
	return list, nil
}
