// Package book implements the book autocomplete cache and sentence statistics.
package book

import (
	"context"
	"log/slog"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

const (
	defaultBookLimit = 10
	maxBookLimit     = 50
	topStatsLimit    = 10
	maxQueryLen      = 200
)

type bookStore interface {
	SearchBooks(ctx context.Context, query string, limit int) ([]domain.Book, error)
	PopularBooks(ctx context.Context, limit int) ([]domain.Book, error)
}

type statsStore interface {
	SentenceTotals(ctx context.Context, ownerID int64) (domain.SentenceTotals, error)
	TopBooks(ctx context.Context, ownerID int64, limit int) ([]domain.BookStat, error)
	TopAuthors(ctx context.Context, ownerID int64, limit int) ([]domain.AuthorStat, error)
}

type membershipCounter interface {
	CountUserCommunities(ctx context.Context, userID int64) (int, error)
}

// Service provides book search and statistics.
type Service struct {
	books       bookStore
	stats       statsStore
	communities membershipCounter
	log         *slog.Logger
}

// NewService creates a new book service.
func NewService(log *slog.Logger, books bookStore, stats statsStore, communities membershipCounter) *Service {
	return &Service{
		books:       books,
		stats:       stats,
		communities: communities,
		log:         log.With("service", "book"),
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultBookLimit
	}
	if limit > maxBookLimit {
		return maxBookLimit
	}
	return limit
}
