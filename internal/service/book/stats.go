package book

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// UserStats loads the user's overview. The four queries are independent
// and run in parallel.
func (s *Service) UserStats(ctx context.Context, userID int64) (*domain.UserStats, error) {
	var (
		totals      domain.SentenceTotals
		books       []domain.BookStat
		authors     []domain.AuthorStat
		communities int
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		totals, err = s.stats.SentenceTotals(gctx, userID)
		if err != nil {
			return fmt.Errorf("sentence totals: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		books, err = s.stats.TopBooks(gctx, userID, topStatsLimit)
		if err != nil {
			return fmt.Errorf("top books: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		authors, err = s.stats.TopAuthors(gctx, userID, topStatsLimit)
		if err != nil {
			return fmt.Errorf("top authors: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		communities, err = s.communities.CountUserCommunities(gctx, userID)
		if err != nil {
			return fmt.Errorf("count communities: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("book.UserStats: %w", err)
	}

	return &domain.UserStats{
		TotalSentences:  totals.Total,
		PublicSentences: totals.Public,
		TotalLikes:      totals.TotalLikes,
		BookCount:       totals.Books,
		CommunityCount:  communities,
		TopBooks:        books,
		TopAuthors:      authors,
	}, nil
}

// TopBooks aggregates every public sentence by book title.
func (s *Service) TopBooks(ctx context.Context, limit int) ([]domain.BookStat, error) {
	list, err := s.stats.TopBooks(ctx, 0, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("book.TopBooks: %w", err)
	}
	return list, nil
}

// TopAuthors aggregates every public sentence by author.
func (s *Service) TopAuthors(ctx context.Context, limit int) ([]domain.AuthorStat, error) {
	list, err := s.stats.TopAuthors(ctx, 0, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("book.TopAuthors: %w", err)
	}
	return list, nil
}
