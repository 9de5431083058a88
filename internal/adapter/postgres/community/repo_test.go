package community

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/bluebuchu/collect-sub000/internal/adapter/postgres/sentence"
	"github.com/bluebuchu/collect-sub000/internal/domain"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		mock.Close()
	})
	return mock
}

func statsColumns() []string {
	return append(append([]string{}, columns...), "effective_score", "creator_name", "my_role")
}

func TestListQuery_SortOrders(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		sort domain.CommunitySort
		want string
	}{
		{domain.CommunitySortActivity, "ORDER BY effective_score DESC, id ASC"},
		{domain.CommunitySortMembers, "ORDER BY member_count DESC, id ASC"},
		{domain.CommunitySortRecent, "ORDER BY COALESCE(last_activity_at, created_at) DESC, id ASC"},
	}
	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			t.Parallel()
			sql, _, err := ListQuery(domain.CommunityQuery{Sort: tt.sort, Now: now}.Normalize()).ToSql()
			if err != nil {
				t.Fatalf("ToSql: %v", err)
			}
			if !strings.Contains(sql, tt.want) {
				t.Errorf("sql %q does not contain %q", sql, tt.want)
			}
		})
	}
}

func TestListQuery_PlaceholdersAreNumberedAcrossSubquery(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	sql, args, err := ListQuery(domain.CommunityQuery{ViewerID: 4, Search: "poem", Now: now}.Normalize()).ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}
	// now, viewer, public flag, two search patterns
	if len(args) != 5 {
		t.Fatalf("len(args) = %d, want 5: %v", len(args), args)
	}
	if !strings.Contains(sql, "$5") || strings.Contains(sql, "?") {
		t.Errorf("unexpected placeholders in %q", sql)
	}
	if !strings.Contains(sql, "LIMIT 9 OFFSET 0") {
		t.Errorf("default page not applied: %q", sql)
	}
}

func TestRepo_List_MapsRoleAndScore(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	role := "owner"

	mock.ExpectQuery(`SELECT \* FROM \(SELECT .+ FROM communities c LEFT JOIN users u .+\) AS ranked ORDER BY effective_score DESC, id ASC`).
		WithArgs(now, int64(4), int16(1)).
		WillReturnRows(pgxmock.NewRows(statsColumns()).AddRow(
			int64(1), "Poets", (*string)(nil), (*string)(nil), (*string)(nil), int64(4),
			int32(2), int16(0), int32(3), int32(5), int32(0),
			(*int32)(nil), (*time.Time)(nil), now, now,
			int64(54), "alice", &role,
		))

	got, err := New(mock).List(context.Background(), domain.CommunityQuery{ViewerID: 4, Now: now}.Normalize())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	c := got[0]
	if c.EffectiveScore != 54 || c.CreatorName != "alice" {
		t.Errorf("got %+v", c)
	}
	if c.MyRole == nil || *c.MyRole != domain.MemberRoleOwner {
		t.Errorf("role = %v, want owner", c.MyRole)
	}
	if c.IsPublic.IsPublic() {
		t.Error("community should be private")
	}
}

func TestRepo_InsertMember_Duplicate(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	now := time.Now()
	mock.ExpectExec(`INSERT INTO community_members`).
		WithArgs(int64(1), int64(2), "member", now).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := New(mock).InsertMember(context.Background(), 1, 2, domain.MemberRoleMember, now)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestRepo_DeleteLink_Missing(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	mock.ExpectExec(`DELETE FROM community_sentences`).
		WithArgs(int64(1), int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := New(mock).DeleteLink(context.Background(), 1, 9); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRepo_TopSentences_GroupsByCommunity(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	now := time.Now()
	uid := int64(2)
	cols := append(append([]string{}, sentence.Columns...), "community_id")
	row := func(id int64, likes int32, cid int64) []any {
		return []any{id, &uid, "text", (*string)(nil), (*string)(nil), (*string)(nil), (*int32)(nil),
			likes, int16(1), (*string)(nil), false, (*string)(nil), now, now, cid}
	}

	mock.ExpectQuery(`ROW_NUMBER\(\) OVER \(PARTITION BY cs.community_id ORDER BY s.likes DESC, s.id ASC\)`).
		WithArgs([]int64{1, 2}, 3).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(row(10, 9, 1)...).
			AddRow(row(11, 4, 1)...).
			AddRow(row(20, 1, 2)...))

	got, err := New(mock).TopSentences(context.Background(), []int64{1, 2}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got[1]) != 2 || got[1][0].ID != 10 || got[1][1].ID != 11 {
		t.Errorf("community 1 = %+v", got[1])
	}
	if len(got[2]) != 1 || got[2][0].ID != 20 {
		t.Errorf("community 2 = %+v", got[2])
	}
}

func TestRepo_ListSentences_IncludesEveryLinkedSentence(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	now := time.Now()
	uid := int64(2)
	cols := append(append([]string{}, sentence.Columns...), "owner_nickname", "owner_profile_image", "is_liked")
	nick := "alice"

	// Only the viewer (for is_liked) and the community bind; nothing filters
	// on the sentence's own visibility.
	mock.ExpectQuery(`JOIN community_sentences cs ON cs.sentence_id = s.id WHERE cs.community_id = \$2 ORDER BY cs.added_at DESC`).
		WithArgs(int64(7), int64(1)).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(30), &uid, "kept private", (*string)(nil), (*string)(nil), (*string)(nil), (*int32)(nil),
				int32(0), int16(0), (*string)(nil), false, (*string)(nil), now, now, &nick, (*string)(nil), false))

	got, err := New(mock).ListSentences(context.Background(), 1, 7, domain.PageQuery{Limit: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != 30 || got[0].IsPublic != domain.VisibilityPrivate {
		t.Errorf("got %+v", got)
	}
}

func TestRepo_TopSentences_EmptyIDsSkipsQuery(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	got, err := New(mock).TopSentences(context.Background(), nil, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}

func TestRepo_ClearScores(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	mock.ExpectExec(`UPDATE communities SET activity_score = NULL`).
		WillReturnResult(pgxmock.NewResult("UPDATE", 4))

	n, err := New(mock).ClearScores(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("n = %d, want 4", n)
	}
}
