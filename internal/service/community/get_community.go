package community

import (
	"context"
	"errors"
	"fmt"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// Get returns a community with its effective score, creator name and the
// viewer's role. Private communities are visible to members only.
func (s *Service) Get(ctx context.Context, viewerID, id int64) (*domain.CommunityWithStats, error) {
	c, m, err := s.access(ctx, id, viewerID)
	if err != nil {
		return nil, fmt.Errorf("community.Get %d: %w", id, err)
	}

	out := &domain.CommunityWithStats{
		Community:      *c,
		EffectiveScore: domain.EffectiveActivityScore(c, s.now()),
	}
	if m != nil {
		role := m.Role
		out.MyRole = &role
	}

	creator, err := s.users.GetUserByID(ctx, c.CreatorID)
	switch {
	case err == nil:
		out.CreatorName = creator.Nickname
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("community.Get %d creator: %w", id, err)
	}
	return out, nil
}

// IsMember reports whether userID belongs to the community.
func (s *Service) IsMember(ctx context.Context, communityID, userID int64) (bool, error) {
	m, err := s.membership(ctx, communityID, userID)
	if err != nil {
		return false, fmt.Errorf("community.IsMember: %w", err)
	}
	return m != nil, nil
}
