package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

func (s *Store) CreateCommunity(_ context.Context, creatorID int64, f domain.CommunityFields, now time.Time) (*domain.Community, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[creatorID]; !ok {
		return nil, notFound("user", creatorID)
	}

	c := domain.Community{
		ID:             s.id(),
		Name:           f.Name,
		Description:    f.Description,
		Category:       f.Category,
		RelatedBook:    f.RelatedBook,
		CreatorID:      creatorID,
		MemberCount:    1,
		IsPublic:       f.IsPublic,
		LastActivityAt: &now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.communities[c.ID] = c
	s.members[memberKey{communityID: c.ID, userID: creatorID}] = domain.CommunityMember{
		CommunityID: c.ID,
		UserID:      creatorID,
		Role:        domain.MemberRoleOwner,
		JoinedAt:    now,
	}
	return &c, nil
}

func (s *Store) GetCommunity(_ context.Context, id int64) (*domain.Community, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.communities[id]
	if !ok {
		return nil, notFound("community", id)
	}
	return &c, nil
}

func (s *Store) UpdateCommunity(_ context.Context, id int64, u domain.CommunityUpdate) (*domain.Community, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.communities[id]
	if !ok {
		return nil, notFound("community", id)
	}
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Description != nil {
		c.Description = u.Description
	}
	if u.Category != nil {
		c.Category = u.Category
	}
	if u.RelatedBook != nil {
		c.RelatedBook = u.RelatedBook
	}
	if u.IsPublic != nil {
		c.IsPublic = *u.IsPublic
	}
	c.UpdatedAt = s.now()
	s.communities[id] = c
	return &c, nil
}

func (s *Store) DeleteCommunity(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.communities[id]; !ok {
		return notFound("community", id)
	}
	s.deleteCommunityLocked(id)
	return nil
}

func (s *Store) deleteCommunityLocked(id int64) {
	for k := range s.members {
		if k.communityID == id {
			delete(s.members, k)
		}
	}
	for k := range s.links {
		if k.communityID == id {
			delete(s.links, k)
		}
	}
	delete(s.communities, id)
}

func (s *Store) withStats(c domain.Community, viewerID int64, now time.Time) domain.CommunityWithStats {
	out := domain.CommunityWithStats{
		Community:      c,
		EffectiveScore: domain.EffectiveActivityScore(&c, now),
	}
	if u, ok := s.users[c.CreatorID]; ok {
		out.CreatorName = u.Nickname
	}
	if m, ok := s.members[memberKey{communityID: c.ID, userID: viewerID}]; ok {
		role := m.Role
		out.MyRole = &role
	}
	return out
}

func sortCommunities(list []domain.CommunityWithStats, sort domain.CommunitySort) {
	slices.SortFunc(list, func(a, b domain.CommunityWithStats) int {
		var c int
		switch sort {
		case domain.CommunitySortMembers:
			c = cmp.Compare(b.MemberCount, a.MemberCount)
		case domain.CommunitySortRecent:
			c = b.LastActive().Compare(a.LastActive())
		default:
			c = cmp.Compare(b.EffectiveScore, a.EffectiveScore)
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func (s *Store) ListCommunities(_ context.Context, q domain.CommunityQuery) ([]domain.CommunityWithStats, error) {
	q = q.Normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []domain.CommunityWithStats
	for _, c := range s.communities {
		if !c.IsPublic.IsPublic() {
			if q.ViewerID <= 0 {
				continue
			}
			if _, member := s.members[memberKey{communityID: c.ID, userID: q.ViewerID}]; !member {
				continue
			}
		}
		if q.Search != "" && !containsFold(&c.Name, q.Search) && !containsFold(c.Description, q.Search) {
			continue
		}
		list = append(list, s.withStats(c, q.ViewerID, q.Now))
	}

	sortCommunities(list, q.Sort)
	return page(list, q.Offset, q.Limit), nil
}

func (s *Store) ListUserCommunities(_ context.Context, userID int64, now time.Time) ([]domain.CommunityWithStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type joined struct {
		c  domain.CommunityWithStats
		at time.Time
	}
	var rows []joined
	for k, m := range s.members {
		if k.userID != userID {
			continue
		}
		if c, ok := s.communities[k.communityID]; ok {
			rows = append(rows, joined{c: s.withStats(c, userID, now), at: m.JoinedAt})
		}
	}
	slices.SortFunc(rows, func(a, b joined) int {
		if c := b.at.Compare(a.at); c != 0 {
			return c
		}
		return cmp.Compare(a.c.ID, b.c.ID)
	})

	out := make([]domain.CommunityWithStats, len(rows))
	for i, r := range rows {
		out[i] = r.c
	}
	return out, nil
}

func (s *Store) CountUserCommunities(_ context.Context, userID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for k := range s.members {
		if k.userID == userID {
			n++
		}
	}
	return n, nil
}

func (s *Store) GetMember(_ context.Context, communityID, userID int64) (*domain.CommunityMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[memberKey{communityID: communityID, userID: userID}]
	if !ok {
		return nil, notFound("community_member", userID)
	}
	return &m, nil
}

func roleRank(r domain.MemberRole) int {
	switch r {
	case domain.MemberRoleOwner:
		return 0
	case domain.MemberRoleAdmin:
		return 1
	default:
		return 2
	}
}

func (s *Store) ListMembers(_ context.Context, communityID int64) ([]domain.MemberWithUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.MemberWithUser
	for k, m := range s.members {
		if k.communityID != communityID {
			continue
		}
		u, ok := s.users[k.userID]
		if !ok {
			continue
		}
		out = append(out, domain.MemberWithUser{CommunityMember: m, Nickname: u.Nickname, ProfileImage: u.ProfileImage})
	}
	slices.SortFunc(out, func(a, b domain.MemberWithUser) int {
		if c := cmp.Compare(roleRank(a.Role), roleRank(b.Role)); c != 0 {
			return c
		}
		if c := a.JoinedAt.Compare(b.JoinedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	return out, nil
}

func (s *Store) JoinCommunity(_ context.Context, communityID, userID int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.communities[communityID]
	if !ok {
		return notFound("community", communityID)
	}
	k := memberKey{communityID: communityID, userID: userID}
	if _, exists := s.members[k]; exists {
		return alreadyExists("community_member", userID)
	}
	s.members[k] = domain.CommunityMember{CommunityID: communityID, UserID: userID, Role: domain.MemberRoleMember, JoinedAt: now}
	c.MemberCount++
	c.UpdatedAt = s.now()
	s.communities[communityID] = c
	return nil
}

func (s *Store) LeaveCommunity(_ context.Context, communityID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := memberKey{communityID: communityID, userID: userID}
	if _, exists := s.members[k]; !exists {
		return notFound("community_member", userID)
	}
	delete(s.members, k)
	if c, ok := s.communities[communityID]; ok {
		c.MemberCount = clampZero(c.MemberCount - 1)
		c.UpdatedAt = s.now()
		s.communities[communityID] = c
	}
	return nil
}

func (s *Store) SetMemberRole(_ context.Context, communityID, userID int64, role domain.MemberRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := memberKey{communityID: communityID, userID: userID}
	m, ok := s.members[k]
	if !ok {
		return notFound("community_member", userID)
	}
	m.Role = role
	s.members[k] = m
	return nil
}

func (s *Store) AddSentenceToCommunity(_ context.Context, communityID, sentenceID, addedBy int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sent, ok := s.sentences[sentenceID]
	if !ok {
		return notFound("sentence", sentenceID)
	}
	c, ok := s.communities[communityID]
	if !ok {
		return notFound("community", communityID)
	}
	k := linkKey{communityID: communityID, sentenceID: sentenceID}
	if _, exists := s.links[k]; exists {
		return alreadyExists("community_sentence", sentenceID)
	}

	s.links[k] = domain.CommunitySentence{CommunityID: communityID, SentenceID: sentenceID, AddedBy: addedBy, AddedAt: now}
	c.SentenceCount++
	c.TotalLikes += sent.Likes
	c.LastActivityAt = &now
	c.UpdatedAt = s.now()
	s.communities[communityID] = c
	return nil
}

func (s *Store) RemoveSentenceFromCommunity(_ context.Context, communityID, sentenceID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sent, ok := s.sentences[sentenceID]
	if !ok {
		return notFound("sentence", sentenceID)
	}
	k := linkKey{communityID: communityID, sentenceID: sentenceID}
	if _, exists := s.links[k]; !exists {
		return notFound("community_sentence", sentenceID)
	}

	delete(s.links, k)
	if c, ok := s.communities[communityID]; ok {
		c.SentenceCount = clampZero(c.SentenceCount - 1)
		c.TotalLikes = clampZero(c.TotalLikes - sent.Likes)
		c.UpdatedAt = s.now()
		s.communities[communityID] = c
	}
	return nil
}

func (s *Store) ListCommunitySentences(_ context.Context, communityID, viewerID int64, pq domain.PageQuery) ([]domain.SentenceWithUser, error) {
	pq = pq.Normalize(domain.DefaultSentenceLimit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	type linked struct {
		sent domain.SentenceWithUser
		at   time.Time
	}
	var rows []linked
	for k, link := range s.links {
		if k.communityID != communityID {
			continue
		}
		sent, ok := s.sentences[k.sentenceID]
		if !ok {
			continue
		}
		rows = append(rows, linked{sent: s.withUser(sent, viewerID), at: link.AddedAt})
	}
	slices.SortFunc(rows, func(a, b linked) int {
		if c := b.at.Compare(a.at); c != 0 {
			return c
		}
		return cmp.Compare(b.sent.ID, a.sent.ID)
	})

	rows = page(rows, pq.Offset, pq.Limit)
	out := make([]domain.SentenceWithUser, len(rows))
	for i, r := range rows {
		out[i] = r.sent
	}
	return out, nil
}

func (s *Store) TopSentencesByCommunity(_ context.Context, communityIDs []int64, perCommunity int) (map[int64][]domain.Sentence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[int64]bool, len(communityIDs))
	for _, id := range communityIDs {
		wanted[id] = true
	}

	out := make(map[int64][]domain.Sentence, len(communityIDs))
	for k := range s.links {
		if !wanted[k.communityID] {
			continue
		}
		if sent, ok := s.sentences[k.sentenceID]; ok {
			out[k.communityID] = append(out[k.communityID], sent)
		}
	}
	for id, list := range out {
		slices.SortFunc(list, func(a, b domain.Sentence) int {
			if c := cmp.Compare(b.Likes, a.Likes); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})
		out[id] = page(list, 0, perCommunity)
	}
	return out, nil
}

func (s *Store) RefreshActivityScores(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, c := range s.communities {
		score := domain.ActivityScore(&c, now)
		c.ActivityScore = &score
		s.communities[id] = c
	}
	return len(s.communities), nil
}

func (s *Store) ClearActivityScores(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, c := range s.communities {
		if c.ActivityScore != nil {
			c.ActivityScore = nil
			s.communities[id] = c
			n++
		}
	}
	return n, nil
}
