package community

import (
	"context"
	"fmt"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// List returns one page of the discovery list as seen by viewerID
// (0 = anonymous): public communities plus private ones the viewer belongs to.
func (s *Service) List(ctx context.Context, viewerID int64, input ListInput) ([]domain.CommunityWithStats, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	q := domain.CommunityQuery{
		Sort:     domain.CommunitySort(input.Sort),
		Search:   input.Search,
		Offset:   input.Offset,
		Limit:    input.Limit,
		ViewerID: viewerID,
		Now:      s.now(),
	}.Normalize()

	list, err := s.communities.ListCommunities(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("community.List: %w", err)
	}
	return list, nil
}

// ListMine returns every community the user belongs to, most recently joined first.
func (s *Service) ListMine(ctx context.Context, userID int64) ([]domain.CommunityWithStats, error) {
	list, err := s.communities.ListUserCommunities(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("community.ListMine: %w", err)
	}
	return list, nil
}
