package sentence

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/bluebuchu/collect-sub000/internal/adapter/postgres"
	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// scope restricts aggregates to one owner, or to public sentences when
// ownerID is 0.
func scope(ownerID int64) sq.Sqlizer {
	if ownerID > 0 {
		return sq.Eq{"user_id": ownerID}
	}
	return sq.Eq{"is_public": int16(domain.VisibilityPublic)}
}

// Totals returns scalar counters for the stats overview.
func (r *Repo) Totals(ctx context.Context, ownerID int64) (domain.SentenceTotals, error) {
	sql, args, err := postgres.Builder.
		Select(
			"count(*)",
			"count(*) FILTER (WHERE is_public = 1)",
			"COALESCE(sum(likes), 0)",
			"count(DISTINCT NULLIF(book_title, ''))",
		).
		From(table).
		Where(scope(ownerID)).
		ToSql()
	if err != nil {
		return domain.SentenceTotals{}, fmt.Errorf("build totals: %w", err)
	}

	var total, public, likes, books int64
	if err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&total, &public, &likes, &books); err != nil {
		return domain.SentenceTotals{}, postgres.MapError(err, "sentence", ownerID)
	}
	return domain.SentenceTotals{
		Total:      int(total),
		Public:     int(public),
		TotalLikes: int(likes),
		Books:      int(books),
	}, nil
}

type bookStatRow struct {
	Title         string  `db:"title"`
	Author        *string `db:"author"`
	SentenceCount int64   `db:"sentence_count"`
	TotalLikes    int64   `db:"total_likes"`
}

// TopBooks groups sentences by book title, most sentences first.
func (r *Repo) TopBooks(ctx context.Context, ownerID int64, limit int) ([]domain.BookStat, error) {
	sql, args, err := postgres.Builder.
		Select(
			"book_title AS title",
			"min(author) AS author",
			"count(*) AS sentence_count",
			"COALESCE(sum(likes), 0) AS total_likes",
		).
		From(table).
		Where(scope(ownerID)).
		Where("book_title IS NOT NULL AND book_title <> ''").
		GroupBy("book_title").
		OrderBy("sentence_count DESC", "title ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build top books: %w", err)
	}

	var rows []bookStatRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "sentence", ownerID)
	}

	out := make([]domain.BookStat, len(rows))
	for i, row := range rows {
		out[i] = domain.BookStat{
			Title:         row.Title,
			Author:        row.Author,
			SentenceCount: int(row.SentenceCount),
			TotalLikes:    int(row.TotalLikes),
		}
	}
	return out, nil
}

type authorStatRow struct {
	Author        string `db:"author"`
	SentenceCount int64  `db:"sentence_count"`
	BookCount     int64  `db:"book_count"`
	TotalLikes    int64  `db:"total_likes"`
}

// TopAuthors groups sentences by author, most sentences first.
func (r *Repo) TopAuthors(ctx context.Context, ownerID int64, limit int) ([]domain.AuthorStat, error) {
	sql, args, err := postgres.Builder.
		Select(
			"author",
			"count(*) AS sentence_count",
			"count(DISTINCT book_title) AS book_count",
			"COALESCE(sum(likes), 0) AS total_likes",
		).
		From(table).
		Where(scope(ownerID)).
		Where("author IS NOT NULL AND author <> ''").
		GroupBy("author").
		OrderBy("sentence_count DESC", "author ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build top authors: %w", err)
	}

	var rows []authorStatRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "sentence", ownerID)
	}

	out := make([]domain.AuthorStat, len(rows))
	for i, row := range rows {
		out[i] = domain.AuthorStat{
			Author:        row.Author,
			SentenceCount: int(row.SentenceCount),
			BookCount:     int(row.BookCount),
			TotalLikes:    int(row.TotalLikes),
		}
	}
	return out, nil
}
