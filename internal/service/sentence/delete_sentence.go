package sentence

import (
	"context"
	"fmt"
	"log/slog"
)

// Delete removes a sentence owned by userID together with its likes and
// community links.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return fmt.Errorf("sentence.Delete %d: %w", id, err)
	}
	if err := s.sentences.DeleteSentence(ctx, id); err != nil {
		return fmt.Errorf("sentence.Delete %d: %w", id, err)
	}

	s.log.InfoContext(ctx, "sentence deleted",
		slog.Int64("user_id", userID), slog.Int64("sentence_id", id))
	return nil
}
