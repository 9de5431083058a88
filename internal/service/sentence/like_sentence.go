package sentence

import (
	"context"
	"fmt"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// ToggleLike likes the sentence when the user has not liked it yet and
// unlikes it otherwise.
func (s *Service) ToggleLike(ctx context.Context, userID, id int64) (domain.LikeState, error) {
	if _, err := s.visible(ctx, userID, id); err != nil {
		return domain.LikeState{}, fmt.Errorf("sentence.ToggleLike %d: %w", id, err)
	}
	state, err := s.likes.ToggleLike(ctx, id, userID)
	if err != nil {
		return domain.LikeState{}, fmt.Errorf("sentence.ToggleLike %d: %w", id, err)
	}
	return state, nil
}

// Unlike removes the user's like. It is a no-op when there is none.
func (s *Service) Unlike(ctx context.Context, userID, id int64) (domain.LikeState, error) {
	if _, err := s.visible(ctx, userID, id); err != nil {
		return domain.LikeState{}, fmt.Errorf("sentence.Unlike %d: %w", id, err)
	}
	state, err := s.likes.Unlike(ctx, id, userID)
	if err != nil {
		return domain.LikeState{}, fmt.Errorf("sentence.Unlike %d: %w", id, err)
	}
	return state, nil
}
