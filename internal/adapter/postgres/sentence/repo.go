// Package sentence implements the Sentence and SentenceLike repositories
// using PostgreSQL.
package sentence

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/bluebuchu/collect-sub000/internal/adapter/postgres"
	"github.com/bluebuchu/collect-sub000/internal/domain"
)

const table = "sentences"

// Columns lists the sentences table columns in scan order.
var Columns = []string{
	"id", "user_id", "content", "book_title", "author", "publisher", "page_number",
	"likes", "is_public", "private_note", "is_bookmarked", "legacy_nickname",
	"created_at", "updated_at",
}

// Repo provides sentence persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new sentence repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Row is the scan target for a sentences row.
type Row struct {
	ID             int64     `db:"id"`
	UserID         *int64    `db:"user_id"`
	Content        string    `db:"content"`
	BookTitle      *string   `db:"book_title"`
	Author         *string   `db:"author"`
	Publisher      *string   `db:"publisher"`
	PageNumber     *int32    `db:"page_number"`
	Likes          int32     `db:"likes"`
	IsPublic       int16     `db:"is_public"`
	PrivateNote    *string   `db:"private_note"`
	IsBookmarked   bool      `db:"is_bookmarked"`
	LegacyNickname *string   `db:"legacy_nickname"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// ToDomain converts the row into a domain.Sentence.
func (r Row) ToDomain() domain.Sentence {
	s := domain.Sentence{
		ID:             r.ID,
		UserID:         r.UserID,
		Content:        r.Content,
		BookTitle:      r.BookTitle,
		Author:         r.Author,
		Publisher:      r.Publisher,
		Likes:          int(r.Likes),
		IsPublic:       domain.Visibility(r.IsPublic),
		PrivateNote:    r.PrivateNote,
		IsBookmarked:   r.IsBookmarked,
		LegacyNickname: r.LegacyNickname,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.PageNumber != nil {
		p := int(*r.PageNumber)
		s.PageNumber = &p
	}
	return s
}

// WithUserRow is a sentence joined with its owner and the viewer's like.
type WithUserRow struct {
	Row
	OwnerNickname     *string `db:"owner_nickname"`
	OwnerProfileImage *string `db:"owner_profile_image"`
	IsLiked           bool    `db:"is_liked"`
}

// ToDomain converts the row into a domain.SentenceWithUser.
func (r WithUserRow) ToDomain() domain.SentenceWithUser {
	out := domain.SentenceWithUser{Sentence: r.Row.ToDomain(), IsLiked: r.IsLiked}
	if r.UserID != nil && r.OwnerNickname != nil {
		out.User = &domain.SentenceAuthor{
			ID:           *r.UserID,
			Nickname:     *r.OwnerNickname,
			ProfileImage: r.OwnerProfileImage,
		}
	}
	return out
}

// SelectWithUser starts a select of sentences aliased "s" joined with their
// owner and the viewer's like flag.
func SelectWithUser(viewerID int64) sq.SelectBuilder {
	return postgres.Builder.
		Select(postgres.Prefixed("s", Columns)...).
		Column("u.nickname AS owner_nickname").
		Column("u.profile_image AS owner_profile_image").
		Column(sq.Expr("EXISTS (SELECT 1 FROM sentence_likes sl WHERE sl.sentence_id = s.id AND sl.user_id = ?) AS is_liked", viewerID)).
		From("sentences s").
		LeftJoin("users u ON u.id = s.user_id")
}

func returning() string {
	return "RETURNING " + strings.Join(Columns, ", ")
}

func (r *Repo) getRow(ctx context.Context, sql string, args []any, id int64) (*domain.Sentence, error) {
	var out Row
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &out, sql, args...); err != nil {
		return nil, postgres.MapError(err, "sentence", id)
	}
	s := out.ToDomain()
	return &s, nil
}

// Create inserts a sentence owned by ownerID.
func (r *Repo) Create(ctx context.Context, ownerID int64, f domain.SentenceFields) (*domain.Sentence, error) {
	sql, args, err := postgres.Builder.
		Insert(table).
		Columns("user_id", "content", "book_title", "author", "publisher", "page_number",
			"is_public", "private_note", "is_bookmarked").
		Values(ownerID, f.Content, f.BookTitle, f.Author, f.Publisher, f.PageNumber,
			int16(f.IsPublic), f.PrivateNote, f.IsBookmarked).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sentence insert: %w", err)
	}
	return r.getRow(ctx, sql, args, 0)
}

// GetByID returns a sentence by primary key.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Sentence, error) {
	sql, args, err := postgres.Builder.Select(Columns...).From(table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sentence select: %w", err)
	}
	return r.getRow(ctx, sql, args, id)
}

// Update overwrites the writable fields of a sentence.
func (r *Repo) Update(ctx context.Context, id int64, f domain.SentenceFields) (*domain.Sentence, error) {
	sql, args, err := postgres.Builder.
		Update(table).
		Set("content", f.Content).
		Set("book_title", f.BookTitle).
		Set("author", f.Author).
		Set("publisher", f.Publisher).
		Set("page_number", f.PageNumber).
		Set("is_public", int16(f.IsPublic)).
		Set("private_note", f.PrivateNote).
		Set("is_bookmarked", f.IsBookmarked).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sentence update: %w", err)
	}
	return r.getRow(ctx, sql, args, id)
}

// Delete removes a sentence; likes and community links cascade.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, `DELETE FROM sentences WHERE id = $1`, id)
	if err != nil {
		return postgres.MapError(err, "sentence", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sentence %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// List returns one page of sentences. OwnerID > 0 lists that user's
// collection; otherwise the public feed.
func (r *Repo) List(ctx context.Context, q domain.SentenceQuery) ([]domain.SentenceWithUser, error) {
	b := SelectWithUser(q.ViewerID)

	if q.OwnerID > 0 {
		b = b.Where(sq.Eq{"s.user_id": q.OwnerID})
	} else {
		b = b.Where(sq.Eq{"s.is_public": int16(domain.VisibilityPublic)})
	}
	if q.Search != "" {
		b = b.Where(postgres.ILikeAny(postgres.ContainsPattern(q.Search), "s.content", "s.book_title", "s.author"))
	}
	if q.Book != "" {
		b = b.Where(sq.ILike{"s.book_title": postgres.ContainsPattern(q.Book)})
	}
	if q.Author != "" {
		b = b.Where(sq.ILike{"s.author": postgres.ContainsPattern(q.Author)})
	}

	switch q.Sort {
	case domain.SentenceSortOldest:
		b = b.OrderBy("s.created_at ASC", "s.id ASC")
	case domain.SentenceSortLikes:
		b = b.OrderBy("s.likes DESC", "s.id ASC")
	default:
		b = b.OrderBy("s.created_at DESC", "s.id DESC")
	}

	sql, args, err := b.Limit(uint64(q.Limit)).Offset(uint64(q.Offset)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sentence list: %w", err)
	}

	var rows []WithUserRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "sentence", 0)
	}

	out := make([]domain.SentenceWithUser, len(rows))
	for i, row := range rows {
		out[i] = row.ToDomain()
	}
	return out, nil
}

// ListForExport returns all of a user's sentences matching f, by id.
func (r *Repo) ListForExport(ctx context.Context, ownerID int64, f domain.ExportFilter) ([]domain.Sentence, error) {
	b := postgres.Builder.Select(Columns...).From(table).Where(sq.Eq{"user_id": ownerID})

	switch f.Scope {
	case domain.ExportScopeBook:
		b = b.Where(sq.Eq{"book_title": f.Book})
	case domain.ExportScopeDate:
		if f.From != nil {
			b = b.Where(sq.GtOrEq{"created_at": *f.From})
		}
		if f.To != nil {
			b = b.Where(sq.Lt{"created_at": f.To.AddDate(0, 0, 1)})
		}
	}

	sql, args, err := b.OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build export select: %w", err)
	}

	var rows []Row
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "sentence", 0)
	}

	out := make([]domain.Sentence, len(rows))
	for i, row := range rows {
		out[i] = row.ToDomain()
	}
	return out, nil
}

// AdjustLikes applies a relative change to the like counter, clamped at 0,
// and returns the new value.
func (r *Repo) AdjustLikes(ctx context.Context, id int64, delta int) (int, error) {
	var likes int32
	err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx,
		`UPDATE sentences SET likes = GREATEST(likes + $2, 0) WHERE id = $1 RETURNING likes`,
		id, delta,
	).Scan(&likes)
	if err != nil {
		return 0, postgres.MapError(err, "sentence", id)
	}
	return int(likes), nil
}

// LockLikes returns the like counter and holds the sentence row lock until
// the surrounding transaction ends, serialising like changes per sentence.
func (r *Repo) LockLikes(ctx context.Context, id int64) (int, error) {
	var likes int32
	err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx,
		`SELECT likes FROM sentences WHERE id = $1 FOR UPDATE`, id,
	).Scan(&likes)
	if err != nil {
		return 0, postgres.MapError(err, "sentence", id)
	}
	return int(likes), nil
}
