package sentence

import (
	"context"
	"fmt"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// Get returns a sentence visible to viewerID (0 = anonymous).
func (s *Service) Get(ctx context.Context, viewerID, id int64) (*domain.Sentence, error) {
	sent, err := s.visible(ctx, viewerID, id)
	if err != nil {
		return nil, fmt.Errorf("sentence.Get %d: %w", id, err)
	}
	return sent, nil
}
