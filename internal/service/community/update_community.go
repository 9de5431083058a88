package community

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// Update applies a partial change. Owners and admins only.
func (s *Service) Update(ctx context.Context, userID, id int64, input UpdateInput) (*domain.Community, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if _, _, err := s.requireRole(ctx, id, userID, domain.MemberRole.CanModerate); err != nil {
		return nil, fmt.Errorf("community.Update %d: %w", id, err)
	}

	c, err := s.communities.UpdateCommunity(ctx, id, input.update())
	if err != nil {
		return nil, fmt.Errorf("community.Update %d: %w", id, err)
	}
	return c, nil
}

// Delete removes the community with its memberships and links. Owner only.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if _, _, err := s.requireRole(ctx, id, userID, isOwner); err != nil {
		return fmt.Errorf("community.Delete %d: %w", id, err)
	}
	if err := s.communities.DeleteCommunity(ctx, id); err != nil {
		return fmt.Errorf("community.Delete %d: %w", id, err)
	}

	s.log.InfoContext(ctx, "community deleted",
		slog.Int64("user_id", userID), slog.Int64("community_id", id))
	return nil
}
