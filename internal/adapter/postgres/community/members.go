package community

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/bluebuchu/collect-sub000/internal/adapter/postgres"
	"github.com/bluebuchu/collect-sub000/internal/domain"
)

type memberRow struct {
	CommunityID  int64     `db:"community_id"`
	UserID       int64     `db:"user_id"`
	Role         string    `db:"role"`
	JoinedAt     time.Time `db:"joined_at"`
	Nickname     string    `db:"nickname"`
	ProfileImage *string   `db:"profile_image"`
}

func (r memberRow) member() domain.CommunityMember {
	return domain.CommunityMember{
		CommunityID: r.CommunityID,
		UserID:      r.UserID,
		Role:        domain.MemberRole(r.Role),
		JoinedAt:    r.JoinedAt,
	}
}

// GetMember returns the membership of userID in communityID.
func (r *Repo) GetMember(ctx context.Context, communityID, userID int64) (*domain.CommunityMember, error) {
	var out memberRow
	err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &out,
		`SELECT community_id, user_id, role, joined_at, '' AS nickname, NULL::text AS profile_image
		   FROM community_members
		  WHERE community_id = $1 AND user_id = $2`,
		communityID, userID)
	if err != nil {
		return nil, postgres.MapError(err, "community_member", userID)
	}
	m := out.member()
	return &m, nil
}

// ListMembers returns members with their profile, owner first then by join time.
func (r *Repo) ListMembers(ctx context.Context, communityID int64) ([]domain.MemberWithUser, error) {
	var rows []memberRow
	err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows,
		`SELECT m.community_id, m.user_id, m.role, m.joined_at, u.nickname, u.profile_image
		   FROM community_members m
		   JOIN users u ON u.id = m.user_id
		  WHERE m.community_id = $1
		  ORDER BY CASE m.role WHEN 'owner' THEN 0 WHEN 'admin' THEN 1 ELSE 2 END, m.joined_at ASC, m.user_id ASC`,
		communityID)
	if err != nil {
		return nil, postgres.MapError(err, "community_member", communityID)
	}

	out := make([]domain.MemberWithUser, len(rows))
	for i, row := range rows {
		out[i] = domain.MemberWithUser{
			CommunityMember: row.member(),
			Nickname:        row.Nickname,
			ProfileImage:    row.ProfileImage,
		}
	}
	return out, nil
}

// InsertMember adds a membership row. An existing membership maps to
// domain.ErrAlreadyExists.
func (r *Repo) InsertMember(ctx context.Context, communityID, userID int64, role domain.MemberRole, now time.Time) error {
	_, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx,
		`INSERT INTO community_members (community_id, user_id, role, joined_at) VALUES ($1, $2, $3, $4)`,
		communityID, userID, role.String(), now)
	if err != nil {
		return postgres.MapError(err, "community_member", userID)
	}
	return nil
}

// DeleteMember removes a membership row.
func (r *Repo) DeleteMember(ctx context.Context, communityID, userID int64) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx,
		`DELETE FROM community_members WHERE community_id = $1 AND user_id = $2`,
		communityID, userID)
	if err != nil {
		return postgres.MapError(err, "community_member", userID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("community_member %d: %w", userID, domain.ErrNotFound)
	}
	return nil
}

// UpdateRole changes a member's role.
func (r *Repo) UpdateRole(ctx context.Context, communityID, userID int64, role domain.MemberRole) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx,
		`UPDATE community_members SET role = $3 WHERE community_id = $1 AND user_id = $2`,
		communityID, userID, role.String())
	if err != nil {
		return postgres.MapError(err, "community_member", userID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("community_member %d: %w", userID, domain.ErrNotFound)
	}
	return nil
}
