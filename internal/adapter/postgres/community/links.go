package community

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/bluebuchu/collect-sub000/internal/adapter/postgres"
	"github.com/bluebuchu/collect-sub000/internal/adapter/postgres/sentence"
	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// InsertLink adds sentenceID to communityID. A duplicate maps to
// domain.ErrAlreadyExists.
func (r *Repo) InsertLink(ctx context.Context, communityID, sentenceID, addedBy int64, now time.Time) error {
	_, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx,
		`INSERT INTO community_sentences (community_id, sentence_id, added_by, added_at) VALUES ($1, $2, $3, $4)`,
		communityID, sentenceID, addedBy, now)
	if err != nil {
		return postgres.MapError(err, "community_sentence", sentenceID)
	}
	return nil
}

// DeleteLink removes sentenceID from communityID.
func (r *Repo) DeleteLink(ctx context.Context, communityID, sentenceID int64) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx,
		`DELETE FROM community_sentences WHERE community_id = $1 AND sentence_id = $2`,
		communityID, sentenceID)
	if err != nil {
		return postgres.MapError(err, "community_sentence", sentenceID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("community_sentence %d: %w", sentenceID, domain.ErrNotFound)
	}
	return nil
}

// ListSentences returns every sentence linked to communityID, most recently
// added first. A link publishes the sentence to the community whatever its
// own visibility; access to the community is checked by the caller.
// viewerID only drives is_liked.
func (r *Repo) ListSentences(ctx context.Context, communityID, viewerID int64, page domain.PageQuery) ([]domain.SentenceWithUser, error) {
	sql, args, err := sentence.SelectWithUser(viewerID).
		Join("community_sentences cs ON cs.sentence_id = s.id").
		Where(sq.Eq{"cs.community_id": communityID}).
		OrderBy("cs.added_at DESC", "s.id DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build community sentences: %w", err)
	}

	var rows []sentence.WithUserRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "community_sentence", communityID)
	}
	out := make([]domain.SentenceWithUser, len(rows))
	for i, row := range rows {
		out[i] = row.ToDomain()
	}
	return out, nil
}

type topRow struct {
	sentence.Row
	CommunityID int64 `db:"community_id"`
}

// TopSentences returns up to perCommunity linked sentences for each of ids,
// by likes descending then id ascending. Communities without sentences are
// absent from the map.
func (r *Repo) TopSentences(ctx context.Context, ids []int64, perCommunity int) (map[int64][]domain.Sentence, error) {
	out := make(map[int64][]domain.Sentence, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	inner := postgres.Builder.
		Select(postgres.Prefixed("s", sentence.Columns)...).
		Column("cs.community_id").
		Column("ROW_NUMBER() OVER (PARTITION BY cs.community_id ORDER BY s.likes DESC, s.id ASC) AS rn").
		From("community_sentences cs").
		Join("sentences s ON s.id = cs.sentence_id").
		Where("cs.community_id = ANY(?)", ids)

	sql, args, err := postgres.Builder.
		Select(append(append([]string{}, sentence.Columns...), "community_id")...).
		FromSelect(inner, "ranked").
		Where(sq.LtOrEq{"rn": perCommunity}).
		OrderBy("community_id ASC", "rn ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build top sentences: %w", err)
	}

	var rows []topRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "community_sentence", 0)
	}
	for _, row := range rows {
		out[row.CommunityID] = append(out[row.CommunityID], row.Row.ToDomain())
	}
	return out, nil
}
