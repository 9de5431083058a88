package community

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// Create creates a community owned by userID.
func (s *Service) Create(ctx context.Context, userID int64, input CreateInput) (*domain.Community, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	c, err := s.communities.CreateCommunity(ctx, userID, input.fields(), s.now())
	if err != nil {
		return nil, fmt.Errorf("community.Create: %w", err)
	}

	s.log.InfoContext(ctx, "community created",
		slog.Int64("user_id", userID), slog.Int64("community_id", c.ID))
	return c, nil
}
