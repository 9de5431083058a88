package book

import (
	"context"
	"fmt"
	"strings"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// Search returns cached books whose title or author contains query. An
// empty query yields an empty list rather than the whole cache.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]domain.Book, error) {
	query = strings.TrimSpace(query)
	if len(query) > maxQueryLen {
		return nil, domain.NewValidationError("q", "too long")
	}
	if query == "" {
		return []domain.Book{}, nil
	}

	books, err := s.books.SearchBooks(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("book.Search: %w", err)
	}
	return books, nil
}

// Popular returns the books with the most saved sentences.
func (s *Service) Popular(ctx context.Context, limit int) ([]domain.Book, error) {
	books, err := s.books.PopularBooks(ctx, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("book.Popular: %w", err)
	}
	return books, nil
}
