package sentence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// Create saves a sentence owned by userID.
func (s *Service) Create(ctx context.Context, userID int64, input CreateInput) (*domain.Sentence, error) {
	f := input.fields()
	if err := validateFields(f); err != nil {
		return nil, err
	}

	sent, err := s.sentences.CreateSentence(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("sentence.Create: %w", err)
	}
	s.touchBook(ctx, sent)

	s.log.InfoContext(ctx, "sentence created",
		slog.Int64("user_id", userID), slog.Int64("sentence_id", sent.ID))
	return sent, nil
}
