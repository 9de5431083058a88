package sentence

import (
	"context"
	"fmt"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// Update applies a partial change to a sentence owned by userID.
func (s *Service) Update(ctx context.Context, userID, id int64, input UpdateInput) (*domain.Sentence, error) {
	cur, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("sentence.Update %d: %w", id, err)
	}

	f := input.apply(cur)
	if err := validateFields(f); err != nil {
		return nil, err
	}

	sent, err := s.sentences.UpdateSentence(ctx, id, f)
	if err != nil {
		return nil, fmt.Errorf("sentence.Update %d: %w", id, err)
	}
	if !sameText(cur.BookTitle, sent.BookTitle) || !sameText(cur.Author, sent.Author) {
		s.touchBook(ctx, sent)
	}
	return sent, nil
}

func sameText(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
