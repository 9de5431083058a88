// Package book implements the Book cache repository using PostgreSQL.
package book

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/bluebuchu/collect-sub000/internal/adapter/postgres"
	"github.com/bluebuchu/collect-sub000/internal/domain"
)

var columns = []string{
	"id", "isbn", "title", "author", "publisher", "cover",
	"search_count", "sentence_count", "created_at", "updated_at",
}

// Repo provides book cache persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new book repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type row struct {
	ID            int64     `db:"id"`
	ISBN          *string   `db:"isbn"`
	Title         string    `db:"title"`
	Author        *string   `db:"author"`
	Publisher     *string   `db:"publisher"`
	Cover         *string   `db:"cover"`
	SearchCount   int32     `db:"search_count"`
	SentenceCount int32     `db:"sentence_count"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r row) toDomain() domain.Book {
	return domain.Book{
		ID:            r.ID,
		ISBN:          r.ISBN,
		Title:         r.Title,
		Author:        r.Author,
		Publisher:     r.Publisher,
		Cover:         r.Cover,
		SearchCount:   int(r.SearchCount),
		SentenceCount: int(r.SentenceCount),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toDomainList(rows []row) []domain.Book {
	out := make([]domain.Book, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out
}

// Touch records that a sentence was saved from (title, author). Title and
// author match case-insensitively; a missing publisher is filled in.
func (r *Repo) Touch(ctx context.Context, title string, author, publisher *string) error {
	_, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx,
		`INSERT INTO books (title, author, publisher, sentence_count)
		 VALUES ($1, $2, $3, 1)
		 ON CONFLICT ((lower(title)), (coalesce(lower(author), '')))
		 DO UPDATE SET sentence_count = books.sentence_count + 1,
		               publisher      = COALESCE(books.publisher, EXCLUDED.publisher),
		               updated_at     = now()`,
		title, author, publisher)
	if err != nil {
		return postgres.MapError(err, "book", 0)
	}
	return nil
}

// Search returns books whose title or author contains query, most searched
// first, and bumps search_count on the returned rows.
func (r *Repo) Search(ctx context.Context, query string, limit int) ([]domain.Book, error) {
	match, args, err := postgres.Builder.
		Select("id").
		From("books").
		Where(postgres.ILikeAny(postgres.ContainsPattern(query), "title", "author")).
		OrderBy("search_count DESC", "sentence_count DESC", "id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build book search: %w", err)
	}

	sql := `WITH hits AS (` + match + `)
		UPDATE books b SET search_count = b.search_count + 1
		  FROM hits WHERE b.id = hits.id
		RETURNING ` + joinPrefixed("b")

	var rows []row
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "book", 0)
	}
	// UPDATE ... RETURNING has no ORDER BY; restore the ranking.
	sortRanked(rows)
	return toDomainList(rows), nil
}

// Popular returns the most used books.
func (r *Repo) Popular(ctx context.Context, limit int) ([]domain.Book, error) {
	sql, args, err := postgres.Builder.
		Select(columns...).
		From("books").
		Where(sq.Gt{"sentence_count": 0}).
		OrderBy("sentence_count DESC", "search_count DESC", "id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build popular books: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "book", 0)
	}
	return toDomainList(rows), nil
}

func joinPrefixed(alias string) string {
	return strings.Join(postgres.Prefixed(alias, columns), ", ")
}

func sortRanked(rows []row) {
	slices.SortFunc(rows, func(a, b row) int {
		if c := cmp.Compare(b.SearchCount, a.SearchCount); c != 0 {
			return c
		}
		if c := cmp.Compare(b.SentenceCount, a.SentenceCount); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
