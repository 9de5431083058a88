package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

func (s *Store) CreateSentence(_ context.Context, ownerID int64, f domain.SentenceFields) (*domain.Sentence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[ownerID]; !ok {
		return nil, notFound("user", ownerID)
	}

	now := s.now()
	owner := ownerID
	sent := domain.Sentence{ID: s.id(), UserID: &owner, CreatedAt: now}
	applySentenceFields(&sent, f, now)
	s.sentences[sent.ID] = sent
	return &sent, nil
}

func applySentenceFields(sent *domain.Sentence, f domain.SentenceFields, now time.Time) {
	sent.Content = f.Content
	sent.BookTitle = f.BookTitle
	sent.Author = f.Author
	sent.Publisher = f.Publisher
	sent.PageNumber = f.PageNumber
	sent.IsPublic = f.IsPublic
	sent.PrivateNote = f.PrivateNote
	sent.IsBookmarked = f.IsBookmarked
	sent.UpdatedAt = now
}

func (s *Store) GetSentence(_ context.Context, id int64) (*domain.Sentence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sent, ok := s.sentences[id]
	if !ok {
		return nil, notFound("sentence", id)
	}
	return &sent, nil
}

func (s *Store) UpdateSentence(_ context.Context, id int64, f domain.SentenceFields) (*domain.Sentence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sent, ok := s.sentences[id]
	if !ok {
		return nil, notFound("sentence", id)
	}
	applySentenceFields(&sent, f, s.now())
	s.sentences[id] = sent
	return &sent, nil
}

func (s *Store) DeleteSentence(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sentences[id]; !ok {
		return notFound("sentence", id)
	}
	s.deleteSentenceLocked(id)
	return nil
}

// deleteSentenceLocked removes the sentence, its likes and its links,
// subtracting it from every linking community.
func (s *Store) deleteSentenceLocked(id int64) {
	sent := s.sentences[id]
	for k := range s.links {
		if k.sentenceID != id {
			continue
		}
		if c, ok := s.communities[k.communityID]; ok {
			c.SentenceCount = clampZero(c.SentenceCount - 1)
			c.TotalLikes = clampZero(c.TotalLikes - sent.Likes)
			c.UpdatedAt = s.now()
			s.communities[k.communityID] = c
		}
		delete(s.links, k)
	}
	for k := range s.likes {
		if k.sentenceID == id {
			delete(s.likes, k)
		}
	}
	delete(s.sentences, id)
}

func (s *Store) withUser(sent domain.Sentence, viewerID int64) domain.SentenceWithUser {
	out := domain.SentenceWithUser{Sentence: sent}
	if sent.UserID != nil {
		if u, ok := s.users[*sent.UserID]; ok {
			out.User = &domain.SentenceAuthor{ID: u.ID, Nickname: u.Nickname, ProfileImage: u.ProfileImage}
		}
	}
	_, out.IsLiked = s.likes[likeKey{sentenceID: sent.ID, userID: viewerID}]
	return out
}

func sortSentences(list []domain.SentenceWithUser, sort domain.SentenceSort) {
	slices.SortFunc(list, func(a, b domain.SentenceWithUser) int {
		switch sort {
		case domain.SentenceSortOldest:
			if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		case domain.SentenceSortLikes:
			if c := cmp.Compare(b.Likes, a.Likes); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		default:
			if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
				return c
			}
			return cmp.Compare(b.ID, a.ID)
		}
	})
}

func (s *Store) ListSentences(_ context.Context, q domain.SentenceQuery) ([]domain.SentenceWithUser, error) {
	q = q.Normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []domain.SentenceWithUser
	for _, sent := range s.sentences {
		if q.OwnerID > 0 {
			if !sent.IsOwnedBy(q.OwnerID) {
				continue
			}
		} else if !sent.IsPublic.IsPublic() {
			continue
		}
		if q.Search != "" && !containsFold(&sent.Content, q.Search) &&
			!containsFold(sent.BookTitle, q.Search) && !containsFold(sent.Author, q.Search) {
			continue
		}
		if q.Book != "" && !containsFold(sent.BookTitle, q.Book) {
			continue
		}
		if q.Author != "" && !containsFold(sent.Author, q.Author) {
			continue
		}
		list = append(list, s.withUser(sent, q.ViewerID))
	}

	sortSentences(list, q.Sort)
	return page(list, q.Offset, q.Limit), nil
}

func (s *Store) ListSentencesForExport(_ context.Context, ownerID int64, f domain.ExportFilter) ([]domain.Sentence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []domain.Sentence
	for _, sent := range s.sentences {
		if sent.IsOwnedBy(ownerID) && f.Matches(&sent) {
			list = append(list, sent)
		}
	}
	slices.SortFunc(list, func(a, b domain.Sentence) int { return cmp.Compare(a.ID, b.ID) })
	return list, nil
}

// inScope mirrors the postgres stats scope: one owner, or every public
// sentence when ownerID is 0.
func inScope(sent *domain.Sentence, ownerID int64) bool {
	if ownerID > 0 {
		return sent.IsOwnedBy(ownerID)
	}
	return sent.IsPublic.IsPublic()
}

func nonEmpty(p *string) bool { return p != nil && *p != "" }

func (s *Store) SentenceTotals(_ context.Context, ownerID int64) (domain.SentenceTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var t domain.SentenceTotals
	books := make(map[string]struct{})
	for _, sent := range s.sentences {
		if !inScope(&sent, ownerID) {
			continue
		}
		t.Total++
		if sent.IsPublic.IsPublic() {
			t.Public++
		}
		t.TotalLikes += sent.Likes
		if nonEmpty(sent.BookTitle) {
			books[*sent.BookTitle] = struct{}{}
		}
	}
	t.Books = len(books)
	return t, nil
}

func (s *Store) TopBooks(_ context.Context, ownerID int64, limit int) ([]domain.BookStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byTitle := make(map[string]*domain.BookStat)
	for _, sent := range s.sentences {
		if !inScope(&sent, ownerID) || !nonEmpty(sent.BookTitle) {
			continue
		}
		st, ok := byTitle[*sent.BookTitle]
		if !ok {
			st = &domain.BookStat{Title: *sent.BookTitle}
			byTitle[*sent.BookTitle] = st
		}
		st.SentenceCount++
		st.TotalLikes += sent.Likes
		if sent.Author != nil && (st.Author == nil || *sent.Author < *st.Author) {
			author := *sent.Author
			st.Author = &author
		}
	}

	out := make([]domain.BookStat, 0, len(byTitle))
	for _, st := range byTitle {
		out = append(out, *st)
	}
	slices.SortFunc(out, func(a, b domain.BookStat) int {
		if c := cmp.Compare(b.SentenceCount, a.SentenceCount); c != 0 {
			return c
		}
		return cmp.Compare(a.Title, b.Title)
	})
	return page(out, 0, limit), nil
}

func (s *Store) TopAuthors(_ context.Context, ownerID int64, limit int) ([]domain.AuthorStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type acc struct {
		stat  domain.AuthorStat
		books map[string]struct{}
	}
	byAuthor := make(map[string]*acc)
	for _, sent := range s.sentences {
		if !inScope(&sent, ownerID) || !nonEmpty(sent.Author) {
			continue
		}
		a, ok := byAuthor[*sent.Author]
		if !ok {
			a = &acc{stat: domain.AuthorStat{Author: *sent.Author}, books: make(map[string]struct{})}
			byAuthor[*sent.Author] = a
		}
		a.stat.SentenceCount++
		a.stat.TotalLikes += sent.Likes
		if sent.BookTitle != nil {
			a.books[*sent.BookTitle] = struct{}{}
		}
	}

	out := make([]domain.AuthorStat, 0, len(byAuthor))
	for _, a := range byAuthor {
		a.stat.BookCount = len(a.books)
		out = append(out, a.stat)
	}
	slices.SortFunc(out, func(a, b domain.AuthorStat) int {
		if c := cmp.Compare(b.SentenceCount, a.SentenceCount); c != 0 {
			return c
		}
		return cmp.Compare(a.Author, b.Author)
	})
	return page(out, 0, limit), nil
}

// ---------------------------------------------------------------------------
// Likes
// ---------------------------------------------------------------------------

func (s *Store) ToggleLike(_ context.Context, sentenceID, userID int64) (domain.LikeState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sent, ok := s.sentences[sentenceID]
	if !ok {
		return domain.LikeState{}, notFound("sentence", sentenceID)
	}
	if _, ok := s.users[userID]; !ok {
		return domain.LikeState{}, notFound("user", userID)
	}

	k := likeKey{sentenceID: sentenceID, userID: userID}
	if _, liked := s.likes[k]; liked {
		likes := s.removeLikeLocked(k)
		return domain.LikeState{IsLiked: false, Likes: likes}, nil
	}

	s.likes[k] = struct{}{}
	sent.Likes++
	s.sentences[sentenceID] = sent
	s.adjustLinkedLikesLocked(sentenceID, 1)
	return domain.LikeState{IsLiked: true, Likes: sent.Likes}, nil
}

func (s *Store) Unlike(_ context.Context, sentenceID, userID int64) (domain.LikeState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sent, ok := s.sentences[sentenceID]
	if !ok {
		return domain.LikeState{}, notFound("sentence", sentenceID)
	}
	k := likeKey{sentenceID: sentenceID, userID: userID}
	if _, liked := s.likes[k]; !liked {
		return domain.LikeState{IsLiked: false, Likes: sent.Likes}, nil
	}
	return domain.LikeState{IsLiked: false, Likes: s.removeLikeLocked(k)}, nil
}

// removeLikeLocked deletes an existing like pair and returns the new counter.
func (s *Store) removeLikeLocked(k likeKey) int {
	delete(s.likes, k)
	sent, ok := s.sentences[k.sentenceID]
	if !ok {
		return 0
	}
	sent.Likes = clampZero(sent.Likes - 1)
	s.sentences[k.sentenceID] = sent
	s.adjustLinkedLikesLocked(k.sentenceID, -1)
	return sent.Likes
}

func (s *Store) adjustLinkedLikesLocked(sentenceID int64, delta int) {
	for k := range s.links {
		if k.sentenceID != sentenceID {
			continue
		}
		if c, ok := s.communities[k.communityID]; ok {
			c.TotalLikes = clampZero(c.TotalLikes + delta)
			s.communities[k.communityID] = c
		}
	}
}
