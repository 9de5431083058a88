// Package community implements the Community, CommunityMember and
// CommunitySentence repositories using PostgreSQL.
package community

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

const table = "communities"

var columns = []string{
	"id", "name", "description", "category", "related_book", "creator_id",
	"member_count", "is_public", "sentence_count", "total_likes", "total_comments",
	"activity_score", "last_activity_at", "created_at", "updated_at",
}

// Repo provides community persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new community repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type row struct {
	ID             int64      `db:"id"`
	Name           string     `db:"name"`
	Description    *string    `db:"description"`
	Category       *string    `db:"category"`
	RelatedBook    *string    `db:"related_book"`
	CreatorID      int64      `db:"creator_id"`
	MemberCount    int32      `db:"member_count"`
	IsPublic       int16      `db:"is_public"`
	SentenceCount  int32      `db:"sentence_count"`
	TotalLikes     int32      `db:"total_likes"`
	TotalComments  int32      `db:"total_comments"`
	ActivityScore  *int32     `db:"activity_score"`
	LastActivityAt *time.Time `db:"last_activity_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

func (r row) toDomain() domain.Community {
	c := domain.Community{
		ID:             r.ID,
		Name:           r.Name,
		Description:    r.Description,
		Category:       r.Category,
		RelatedBook:    r.RelatedBook,
		CreatorID:      r.CreatorID,
		MemberCount:    int(r.MemberCount),
		IsPublic:       domain.Visibility(r.IsPublic),
		SentenceCount:  int(r.SentenceCount),
		TotalLikes:     int(r.TotalLikes),
		TotalComments:  int(r.TotalComments),
		LastActivityAt: r.LastActivityAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.ActivityScore != nil {
		s := int(*r.ActivityScore)
		c.ActivityScore = &s
	}
	return c
}

type statsRow struct {
	row
	EffectiveScore int64   `db:"effective_score"`
	CreatorName    string  `db:"creator_name"`
	MyRole         *string `db:"my_role"`
}

func (r statsRow) toDomain() domain.CommunityWithStats {
	out := domain.CommunityWithStats{
		Community:      r.row.toDomain(),
		EffectiveScore: int(r.EffectiveScore),
		CreatorName:    r.CreatorName,
	}
	if r.MyRole != nil {
		role := domain.MemberRole(*r.MyRole)
		out.MyRole = &role
	}
	return out
}

// scoreSQL is the activity score fallback, identical to
// domain.ActivityScore. The single placeholder is the reference time.
var scoreSQL = fmt.Sprintf(
	"c.total_likes * %d + c.total_comments * %d + c.sentence_count * %d + c.member_count * %d"+
		" + GREATEST(0, %d - GREATEST(1, FLOOR(EXTRACT(EPOCH FROM (?::timestamptz - c.created_at)) / 86400)::int))",
	domain.ScoreWeightLike, domain.ScoreWeightComment, domain.ScoreWeightSentence,
	domain.ScoreWeightMember, domain.ScoreRecencyWindow,
)

func returning() string {
	return "RETURNING " + strings.Join(columns, ", ")
}

func (r *Repo) getRow(ctx context.Context, sql string, args []any, id int64) (*domain.Community, error) {
	var out row
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &out, sql, args...); err != nil {
		return nil, postgres.MapError(err, "community", id)
	}
	c := out.toDomain()
	return &c, nil
}

// Create inserts a community with member_count 1 for its creator. The
// caller inserts the owner membership in the same transaction.
func (r *Repo) Create(ctx context.Context, creatorID int64, f domain.CommunityFields, now time.Time) (*domain.Community, error) {
	sql, args, err := postgres.Builder.
		Insert(table).
		Columns("name", "description", "category", "related_book", "creator_id",
			"member_count", "is_public", "last_activity_at", "created_at", "updated_at").
		Values(f.Name, f.Description, f.Category, f.RelatedBook, creatorID,
			1, int16(f.IsPublic), now, now, now).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build community insert: %w", err)
	}
	return r.getRow(ctx, sql, args, 0)
}

// GetByID returns a community by primary key.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Community, error) {
	sql, args, err := postgres.Builder.Select(columns...).From(table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build community select: %w", err)
	}
	return r.getRow(ctx, sql, args, id)
}

// Update applies the non-nil fields of u.
func (r *Repo) Update(ctx context.Context, id int64, u domain.CommunityUpdate) (*domain.Community, error) {
	set := map[string]any{"updated_at": sq.Expr("now()")}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.RelatedBook != nil {
		set["related_book"] = *u.RelatedBook
	}
	if u.IsPublic != nil {
		set["is_public"] = int16(*u.IsPublic)
	}

	sql, args, err := postgres.Builder.
		Update(table).
		SetMap(set).
		Where(sq.Eq{"id": id}).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build community update: %w", err)
	}
	return r.getRow(ctx, sql, args, id)
}

// Delete removes a community; memberships and links cascade.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, `DELETE FROM communities WHERE id = $1`, id)
	if err != nil {
		return postgres.MapError(err, "community", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("community %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// selectWithStats selects communities aliased "c" with the effective score,
// the creator nickname and the viewer's role (NULL for non-members).
func selectWithStats(viewerID int64, now time.Time) sq.SelectBuilder {
	return postgres.Builder.
		Select(postgres.Prefixed("c", columns)...).
		Column(sq.Expr("COALESCE(c.activity_score, "+scoreSQL+") AS effective_score", now)).
		Column("COALESCE(u.nickname, '') AS creator_name").
		Column("m.role AS my_role").
		From("communities c").
		LeftJoin("users u ON u.id = c.creator_id").
		LeftJoin("community_members m ON m.community_id = c.id AND m.user_id = ?", viewerID)
}

// ListQuery builds the discovery list query for a normalized q.
func ListQuery(q domain.CommunityQuery) sq.SelectBuilder {
	inner := selectWithStats(q.ViewerID, q.Now)

	if q.ViewerID > 0 {
		inner = inner.Where(sq.Or{
			sq.Eq{"c.is_public": int16(domain.VisibilityPublic)},
			sq.NotEq{"m.user_id": nil},
		})
	} else {
		inner = inner.Where(sq.Eq{"c.is_public": int16(domain.VisibilityPublic)})
	}
	if q.Search != "" {
		inner = inner.Where(postgres.ILikeAny(postgres.ContainsPattern(q.Search), "c.name", "c.description"))
	}

	outer := postgres.Builder.Select("*").FromSelect(inner, "ranked")
	switch q.Sort {
	case domain.CommunitySortMembers:
		outer = outer.OrderBy("member_count DESC", "id ASC")
	case domain.CommunitySortRecent:
		outer = outer.OrderBy("COALESCE(last_activity_at, created_at) DESC", "id ASC")
	default:
		outer = outer.OrderBy("effective_score DESC", "id ASC")
	}
	return outer.Limit(uint64(q.Limit)).Offset(uint64(q.Offset))
}

// List returns one page of the discovery list.
func (r *Repo) List(ctx context.Context, q domain.CommunityQuery) ([]domain.CommunityWithStats, error) {
	sql, args, err := ListQuery(q).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build community list: %w", err)
	}
	return r.selectStats(ctx, sql, args)
}

// ListForUser returns the communities userID belongs to, newest membership first.
func (r *Repo) ListForUser(ctx context.Context, userID int64, now time.Time) ([]domain.CommunityWithStats, error) {
	sql, args, err := selectWithStats(userID, now).
		Where(sq.NotEq{"m.user_id": nil}).
		OrderBy("m.joined_at DESC", "c.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user communities: %w", err)
	}
	return r.selectStats(ctx, sql, args)
}

func (r *Repo) selectStats(ctx context.Context, sql string, args []any) ([]domain.CommunityWithStats, error) {
	var rows []statsRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "community", 0)
	}
	out := make([]domain.CommunityWithStats, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

// CountForUser returns how many communities userID belongs to.
func (r *Repo) CountForUser(ctx context.Context, userID int64) (int, error) {
	var n int64
	err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx,
		`SELECT count(*) FROM community_members WHERE user_id = $1`, userID,
	).Scan(&n)
	if err != nil {
		return 0, postgres.MapError(err, "community_member", userID)
	}
	return int(n), nil
}

// AdjustMemberCount applies a relative change to member_count, clamped at 0.
func (r *Repo) AdjustMemberCount(ctx context.Context, id int64, delta int) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx,
		`UPDATE communities SET member_count = GREATEST(member_count + $2, 0), updated_at = now() WHERE id = $1`,
		id, delta)
	if err != nil {
		return postgres.MapError(err, "community", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("community %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// AdjustSentenceStats applies relative changes to sentence_count and
// total_likes (both clamped at 0) and optionally touches last_activity_at.
func (r *Repo) AdjustSentenceStats(ctx context.Context, id int64, sentenceDelta, likesDelta int, touch *time.Time) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx,
		`UPDATE communities
		    SET sentence_count   = GREATEST(sentence_count + $2, 0),
		        total_likes      = GREATEST(total_likes + $3, 0),
		        last_activity_at = COALESCE($4, last_activity_at),
		        updated_at       = now()
		  WHERE id = $1`,
		id, sentenceDelta, likesDelta, touch)
	if err != nil {
		return postgres.MapError(err, "community", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("community %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// AdjustLikesForSentence applies delta to total_likes of every community
// linking sentenceID, clamped at 0.
func (r *Repo) AdjustLikesForSentence(ctx context.Context, sentenceID int64, delta int) error {
	_, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx,
		`UPDATE communities
		    SET total_likes = GREATEST(total_likes + $2, 0)
		  WHERE id IN (SELECT community_id FROM community_sentences WHERE sentence_id = $1)`,
		sentenceID, delta)
	if err != nil {
		return postgres.MapError(err, "community", 0)
	}
	return nil
}

// DetachSentence decrements sentence_count and subtracts the sentence's
// likes from every community linking it. The link rows themselves go with
// the sentence via ON DELETE CASCADE.
func (r *Repo) DetachSentence(ctx context.Context, sentenceID int64) error {
	_, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx,
		`UPDATE communities c
		    SET sentence_count = GREATEST(c.sentence_count - 1, 0),
		        total_likes    = GREATEST(c.total_likes - s.likes, 0),
		        updated_at     = now()
		   FROM community_sentences cs
		   JOIN sentences s ON s.id = cs.sentence_id
		  WHERE cs.community_id = c.id AND cs.sentence_id = $1`,
		sentenceID)
	if err != nil {
		return postgres.MapError(err, "community", 0)
	}
	return nil
}

// RefreshScores stores the computed activity score on every community.
func (r *Repo) RefreshScores(ctx context.Context, now time.Time) (int, error) {
	sql, args, err := postgres.Builder.
		Update("communities c").
		Set("activity_score", sq.Expr(scoreSQL, now)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build score refresh: %w", err)
	}
	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		return 0, postgres.MapError(err, "community", 0)
	}
	return int(tag.RowsAffected()), nil
}

// ClearScores resets stored activity scores to NULL.
func (r *Repo) ClearScores(ctx context.Context) (int, error) {
	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx,
		`UPDATE communities SET activity_score = NULL WHERE activity_score IS NOT NULL`)
	if err != nil {
		return 0, postgres.MapError(err, "community", 0)
	}
	return int(tag.RowsAffected()), nil
}

// DetachUser keeps counters consistent before userID is deleted: their
// likes, their linked sentences and their memberships are subtracted from
// every affected community, and their likes from every liked sentence.
func (r *Repo) DetachUser(ctx context.Context, userID int64) error {
	stmts := []string{
		`UPDATE communities c
		    SET total_likes = GREATEST(c.total_likes - x.n, 0)
		   FROM (SELECT cs.community_id, count(*) AS n
		           FROM sentence_likes l
		           JOIN community_sentences cs ON cs.sentence_id = l.sentence_id
		          WHERE l.user_id = $1
		          GROUP BY cs.community_id) x
		  WHERE c.id = x.community_id`,
		`UPDATE sentences s
		    SET likes = GREATEST(s.likes - 1, 0)
		   FROM sentence_likes l
		  WHERE l.sentence_id = s.id AND l.user_id = $1`,
		`UPDATE communities c
		    SET sentence_count = GREATEST(c.sentence_count - x.n, 0),
		        total_likes    = GREATEST(c.total_likes - x.likes, 0)
		   FROM (SELECT cs.community_id, count(*) AS n, COALESCE(sum(s.likes), 0) AS likes
		           FROM community_sentences cs
		           JOIN sentences s ON s.id = cs.sentence_id
		          WHERE s.user_id = $1
		          GROUP BY cs.community_id) x
		  WHERE c.id = x.community_id`,
		`UPDATE communities c
		    SET member_count = GREATEST(c.member_count - 1, 0)
		   FROM community_members m
		  WHERE m.community_id = c.id AND m.user_id = $1 AND c.creator_id <> $1`,
	}
	q := postgres.QuerierFromCtx(ctx, r.db)
	for _, stmt := range stmts {
		if _, err := q.Exec(ctx, stmt, userID); err != nil {
			return postgres.MapError(err, "user", userID)
		}
	}
	return nil
}
