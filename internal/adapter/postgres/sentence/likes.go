package sentence

import (
	"context"

	postgres "github.com/bluebuchu/collect-sub000/internal/adapter/postgres"
)

// LikeRepo provides sentence_likes persistence. Counter maintenance is the
// caller's job, inside the same transaction.
type LikeRepo struct {
	db postgres.Querier
}

// NewLikeRepo creates a new like repository.
func NewLikeRepo(db postgres.Querier) *LikeRepo {
	return &LikeRepo{db: db}
}

// Insert adds the like pair. It reports false when the pair already existed.
func (r *LikeRepo) Insert(ctx context.Context, sentenceID, userID int64) (bool, error) {
	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx,
		`INSERT INTO sentence_likes (sentence_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		sentenceID, userID)
	if err != nil {
		return false, postgres.MapError(err, "sentence_like", sentenceID)
	}
	return tag.RowsAffected() == 1, nil
}

// Delete removes the like pair. It reports false when the pair did not exist.
func (r *LikeRepo) Delete(ctx context.Context, sentenceID, userID int64) (bool, error) {
	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx,
		`DELETE FROM sentence_likes WHERE sentence_id = $1 AND user_id = $2`,
		sentenceID, userID)
	if err != nil {
		return false, postgres.MapError(err, "sentence_like", sentenceID)
	}
	return tag.RowsAffected() == 1, nil
}

// Exists reports whether userID likes sentenceID.
func (r *LikeRepo) Exists(ctx context.Context, sentenceID, userID int64) (bool, error) {
	var ok bool
	err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM sentence_likes WHERE sentence_id = $1 AND user_id = $2)`,
		sentenceID, userID,
	).Scan(&ok)
	if err != nil {
		return false, postgres.MapError(err, "sentence_like", sentenceID)
	}
	return ok, nil
}
