package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// bookKey matches the postgres unique index on
// (lower(title), coalesce(lower(author), '')).
func bookKey(title string, author *string) string {
	a := ""
	if author != nil {
		a = strings.ToLower(*author)
	}
	return strings.ToLower(title) + "\x00" + a
}

func (s *Store) TouchBook(_ context.Context, title string, author, publisher *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	key := bookKey(title, author)
	for id, b := range s.books {
		if bookKey(b.Title, b.Author) != key {
			continue
		}
		b.SentenceCount++
		if b.Publisher == nil {
			b.Publisher = publisher
		}
		b.UpdatedAt = now
		s.books[id] = b
		return nil
	}

	id := s.id()
	s.books[id] = domain.Book{
		ID:            id,
		Title:         title,
		Author:        author,
		Publisher:     publisher,
		SentenceCount: 1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return nil
}

func compareBookRank(a, b domain.Book) int {
	if c := cmp.Compare(b.SearchCount, a.SearchCount); c != 0 {
		return c
	}
	if c := cmp.Compare(b.SentenceCount, a.SentenceCount); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func (s *Store) SearchBooks(_ context.Context, query string, limit int) ([]domain.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var hits []domain.Book
	for _, b := range s.books {
		if containsFold(&b.Title, query) || containsFold(b.Author, query) {
			hits = append(hits, b)
		}
	}
	slices.SortFunc(hits, compareBookRank)
	hits = page(hits, 0, limit)

	for i := range hits {
		hits[i].SearchCount++
		s.books[hits[i].ID] = hits[i]
	}
	return hits, nil
}

func (s *Store) PopularBooks(_ context.Context, limit int) ([]domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Book
	for _, b := range s.books {
		if b.SentenceCount > 0 {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b domain.Book) int {
		if c := cmp.Compare(b.SentenceCount, a.SentenceCount); c != 0 {
			return c
		}
		if c := cmp.Compare(b.SearchCount, a.SearchCount); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return page(out, 0, limit), nil
}
