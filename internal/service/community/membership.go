package community

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// Join adds userID as a member. Private communities cannot be joined
// without an existing membership.
func (s *Service) Join(ctx context.Context, userID, id int64) error {
	c, err := s.communities.GetCommunity(ctx, id)
	if err != nil {
		return fmt.Errorf("community.Join %d: %w", id, err)
	}
	m, err := s.membership(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("community.Join %d: %w", id, err)
	}
	if m != nil {
		return domain.NewRuleError(msgAlreadyMember)
	}
	if !c.IsPublic.IsPublic() {
		return fmt.Errorf("community.Join %d: %w", id, domain.ErrForbidden)
	}

	if err := s.communities.JoinCommunity(ctx, id, userID, s.now()); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return domain.NewRuleError(msgAlreadyMember)
		}
		return fmt.Errorf("community.Join %d: %w", id, err)
	}

	s.log.InfoContext(ctx, "community joined",
		slog.Int64("user_id", userID), slog.Int64("community_id", id))
	return nil
}

// Leave removes userID's membership. The owner cannot leave.
func (s *Service) Leave(ctx context.Context, userID, id int64) error {
	if _, err := s.communities.GetCommunity(ctx, id); err != nil {
		return fmt.Errorf("community.Leave %d: %w", id, err)
	}
	m, err := s.membership(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("community.Leave %d: %w", id, err)
	}
	if m == nil {
		return domain.NewRuleError(msgNotMember)
	}
	if m.Role == domain.MemberRoleOwner {
		return domain.NewRuleError(msgOwnerCannotLeave)
	}

	if err := s.communities.LeaveCommunity(ctx, id, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewRuleError(msgNotMember)
		}
		return fmt.Errorf("community.Leave %d: %w", id, err)
	}
	return nil
}

// Members lists the members of a community readable by viewerID.
func (s *Service) Members(ctx context.Context, viewerID, id int64) ([]domain.MemberWithUser, error) {
	if _, _, err := s.access(ctx, id, viewerID); err != nil {
		return nil, fmt.Errorf("community.Members %d: %w", id, err)
	}
	list, err := s.communities.ListMembers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("community.Members %d: %w", id, err)
	}
	return list, nil
}

// SetMemberRole promotes or demotes a member. Owner only.
func (s *Service) SetMemberRole(ctx context.Context, actorID, id, targetID int64, input RoleInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	if _, _, err := s.requireRole(ctx, id, actorID, isOwner); err != nil {
		return fmt.Errorf("community.SetMemberRole %d: %w", id, err)
	}

	target, err := s.membership(ctx, id, targetID)
	if err != nil {
		return fmt.Errorf("community.SetMemberRole %d: %w", id, err)
	}
	if target == nil {
		return domain.NewRuleError(msgNotMember)
	}
	if target.Role == domain.MemberRoleOwner {
		return domain.NewRuleError(msgOwnerRole)
	}

	if err := s.communities.SetMemberRole(ctx, id, targetID, domain.MemberRole(input.Role)); err != nil {
		return fmt.Errorf("community.SetMemberRole %d: %w", id, err)
	}
	return nil
}
