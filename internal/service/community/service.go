// Package community implements communities: discovery and ranking,
// membership, visibility gates and sentence links.
package community

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// Rule messages shown to clients.
const (
	msgAlreadyMember    = "already a member"
	msgNotMember        = "not a member of this community"
	msgOwnerCannotLeave = "owner cannot leave the community"
	msgAlreadyLinked    = "sentence already in this community"
	msgOwnerRole        = "the owner's role cannot be changed"
)

type communityStore interface {
	CreateCommunity(ctx context.Context, creatorID int64, f domain.CommunityFields, now time.Time) (*domain.Community, error)
	GetCommunity(ctx context.Context, id int64) (*domain.Community, error)
	UpdateCommunity(ctx context.Context, id int64, u domain.CommunityUpdate) (*domain.Community, error)
	DeleteCommunity(ctx context.Context, id int64) error
	ListCommunities(ctx context.Context, q domain.CommunityQuery) ([]domain.CommunityWithStats, error)
	ListUserCommunities(ctx context.Context, userID int64, now time.Time) ([]domain.CommunityWithStats, error)

	GetMember(ctx context.Context, communityID, userID int64) (*domain.CommunityMember, error)
	ListMembers(ctx context.Context, communityID int64) ([]domain.MemberWithUser, error)
	JoinCommunity(ctx context.Context, communityID, userID int64, now time.Time) error
	LeaveCommunity(ctx context.Context, communityID, userID int64) error
	SetMemberRole(ctx context.Context, communityID, userID int64, role domain.MemberRole) error

	AddSentenceToCommunity(ctx context.Context, communityID, sentenceID, addedBy int64, now time.Time) error
	RemoveSentenceFromCommunity(ctx context.Context, communityID, sentenceID int64) error
	ListCommunitySentences(ctx context.Context, communityID, viewerID int64, page domain.PageQuery) ([]domain.SentenceWithUser, error)

	RefreshActivityScores(ctx context.Context, now time.Time) (int, error)
	ClearActivityScores(ctx context.Context) (int, error)
}

type sentenceReader interface {
	GetSentence(ctx context.Context, id int64) (*domain.Sentence, error)
}

type userReader interface {
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
}

// Service provides community operations.
type Service struct {
	communities communityStore
	sentences   sentenceReader
	users       userReader
	log         *slog.Logger
	now         func() time.Time
}

// NewService creates a new community service.
func NewService(log *slog.Logger, communities communityStore, sentences sentenceReader, users userReader) *Service {
	return &Service{
		communities: communities,
		sentences:   sentences,
		users:       users,
		log:         log.With("service", "community"),
		now:         time.Now,
	}
}

// membership returns the viewer's membership, or nil when the viewer is
// anonymous or not a member.
func (s *Service) membership(ctx context.Context, communityID, viewerID int64) (*domain.CommunityMember, error) {
	if viewerID == 0 {
		return nil, nil
	}
	m, err := s.communities.GetMember(ctx, communityID, viewerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

// access loads a community and applies the visibility gate: private
// communities are readable by members only.
func (s *Service) access(ctx context.Context, communityID, viewerID int64) (*domain.Community, *domain.CommunityMember, error) {
	c, err := s.communities.GetCommunity(ctx, communityID)
	if err != nil {
		return nil, nil, err
	}
	m, err := s.membership(ctx, communityID, viewerID)
	if err != nil {
		return nil, nil, err
	}
	if !c.IsPublic.IsPublic() && m == nil {
		return nil, nil, domain.ErrForbidden
	}
	return c, m, nil
}

// requireRole loads a community and checks that userID is a member whose
// role passes allowed.
func (s *Service) requireRole(ctx context.Context, communityID, userID int64, allowed func(domain.MemberRole) bool) (*domain.Community, *domain.CommunityMember, error) {
	c, err := s.communities.GetCommunity(ctx, communityID)
	if err != nil {
		return nil, nil, err
	}
	m, err := s.membership(ctx, communityID, userID)
	if err != nil {
		return nil, nil, err
	}
	if m == nil || !allowed(m.Role) {
		return nil, nil, domain.ErrForbidden
	}
	return c, m, nil
}

func isOwner(r domain.MemberRole) bool { return r == domain.MemberRoleOwner }

func anyRole(domain.MemberRole) bool { return true }
