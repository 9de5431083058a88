package community

import (
	"context"
	"fmt"
	"log/slog"
)

// RefreshScores stores the current activity score on every community so
// lists sort by the stored value.
func (s *Service) RefreshScores(ctx context.Context) (int, error) {
	n, err := s.communities.RefreshActivityScores(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("community.RefreshScores: %w", err)
	}
	s.log.InfoContext(ctx, "activity scores refreshed", slog.Int("communities", n))
	return n, nil
}

// ClearScores drops stored scores; lists then compute them per request.
func (s *Service) ClearScores(ctx context.Context) (int, error) {
	n, err := s.communities.ClearActivityScores(ctx)
	if err != nil {
		return 0, fmt.Errorf("community.ClearScores: %w", err)
	}
	s.log.InfoContext(ctx, "activity scores cleared", slog.Int("communities", n))
	return n, nil
}
