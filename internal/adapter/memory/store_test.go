package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// newStore returns a store whose clock advances one second per call so
// created_at ordering is deterministic.
func newStore(t *testing.T) *Store {
	t.Helper()
	tick := 0
	return New(WithClock(func() time.Time {
		tick++
		return baseTime.Add(time.Duration(tick) * time.Second)
	}))
}

func seedUser(t *testing.T, s *Store, nick string) *domain.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), &domain.User{
		Email:        nick + "@example.com",
		PasswordHash: "hash",
		Nickname:     nick,
	})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", nick, err)
	}
	return u
}

func seedSentence(t *testing.T, s *Store, ownerID int64, content string, v domain.Visibility) *domain.Sentence {
	t.Helper()
	sent, err := s.CreateSentence(context.Background(), ownerID, domain.SentenceFields{Content: content, IsPublic: v})
	if err != nil {
		t.Fatalf("CreateSentence: %v", err)
	}
	return sent
}

func seedCommunity(t *testing.T, s *Store, ownerID int64, name string, v domain.Visibility) *domain.Community {
	t.Helper()
	c, err := s.CreateCommunity(context.Background(), ownerID, domain.CommunityFields{Name: name, IsPublic: v}, baseTime)
	if err != nil {
		t.Fatalf("CreateCommunity: %v", err)
	}
	return c
}

func TestStore_CreateUser_Duplicates(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()
	seedUser(t, s, "alice")

	tests := []struct {
		name string
		user domain.User
	}{
		{"same email", domain.User{Email: "alice@example.com", Nickname: "other"}},
		{"same nickname", domain.User{Email: "other@example.com", Nickname: "alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateUser(ctx, &tt.user)
			if !errors.Is(err, domain.ErrAlreadyExists) {
				t.Fatalf("err = %v, want ErrAlreadyExists", err)
			}
		})
	}
}

func TestStore_ToggleLike_TwiceRestoresState(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner")
	fan := seedUser(t, s, "fan")
	sent := seedSentence(t, s, owner.ID, "line", domain.VisibilityPublic)
	c := seedCommunity(t, s, owner.ID, "circle", domain.VisibilityPublic)
	if err := s.AddSentenceToCommunity(ctx, c.ID, sent.ID, owner.ID, baseTime); err != nil {
		t.Fatalf("AddSentenceToCommunity: %v", err)
	}

	first, err := s.ToggleLike(ctx, sent.ID, fan.ID)
	if err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if !first.IsLiked || first.Likes != 1 {
		t.Fatalf("first toggle = %+v", first)
	}
	got, _ := s.GetCommunity(ctx, c.ID)
	if got.TotalLikes != 1 {
		t.Errorf("total_likes after like = %d, want 1", got.TotalLikes)
	}

	second, err := s.ToggleLike(ctx, sent.ID, fan.ID)
	if err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if second.IsLiked || second.Likes != 0 {
		t.Fatalf("second toggle = %+v", second)
	}
	got, _ = s.GetCommunity(ctx, c.ID)
	if got.TotalLikes != 0 {
		t.Errorf("total_likes after unlike = %d, want 0", got.TotalLikes)
	}
}

func TestStore_Unlike_NeverNegative(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner")
	sent := seedSentence(t, s, owner.ID, "line", domain.VisibilityPublic)

	for i := 0; i < 3; i++ {
		st, err := s.Unlike(ctx, sent.ID, owner.ID)
		if err != nil {
			t.Fatalf("Unlike: %v", err)
		}
		if st.Likes != 0 || st.IsLiked {
			t.Fatalf("state = %+v", st)
		}
	}
}

func TestStore_ToggleLike_MissingSentence(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	u := seedUser(t, s, "u")

	if _, err := s.ToggleLike(context.Background(), 404, u.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_ListCommunities_Visibility(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner")
	outsider := seedUser(t, s, "outsider")
	pub := seedCommunity(t, s, owner.ID, "open", domain.VisibilityPublic)
	priv := seedCommunity(t, s, owner.ID, "closed", domain.VisibilityPrivate)

	ids := func(list []domain.CommunityWithStats) map[int64]bool {
		out := make(map[int64]bool)
		for _, c := range list {
			out[c.ID] = true
		}
		return out
	}

	tests := []struct {
		name        string
		viewer      int64
		wantPrivate bool
	}{
		{"anonymous", 0, false},
		{"outsider", outsider.ID, false},
		{"member", owner.ID, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := s.ListCommunities(ctx, domain.CommunityQuery{ViewerID: tt.viewer, Now: baseTime})
			if err != nil {
				t.Fatalf("ListCommunities: %v", err)
			}
			got := ids(list)
			if !got[pub.ID] {
				t.Error("public community missing")
			}
			if got[priv.ID] != tt.wantPrivate {
				t.Errorf("private visible = %v, want %v", got[priv.ID], tt.wantPrivate)
			}
		})
	}
}

func TestStore_ListCommunities_PagesDoNotOverlap(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()
	owner := seedUser(t, s, "owner")

	for i := 0; i < 20; i++ {
		seedCommunity(t, s, owner.ID, fmt.Sprintf("c%02d", i), domain.VisibilityPublic)
	}

	first, err := s.ListCommunities(ctx, domain.CommunityQuery{Offset: 0, Limit: 9, Now: baseTime})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	second, err := s.ListCommunities(ctx, domain.CommunityQuery{Offset: 9, Limit: 9, Now: baseTime})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(first) != 9 || len(second) != 9 {
		t.Fatalf("page sizes = %d, %d", len(first), len(second))
	}
	seen := make(map[int64]bool)
	for _, c := range first {
		seen[c.ID] = true
	}
	for _, c := range second {
		if seen[c.ID] {
			t.Errorf("community %d appears on both pages", c.ID)
		}
	}

	// equal scores fall back to id order
	for i := 1; i < len(first); i++ {
		if first[i-1].ID > first[i].ID {
			t.Errorf("ties not broken by id: %d before %d", first[i-1].ID, first[i].ID)
		}
	}
}

func TestStore_ListCommunities_SortAndSearch(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner")
	joiner := seedUser(t, s, "joiner")
	quiet := seedCommunity(t, s, owner.ID, "Quiet Poems", domain.VisibilityPublic)
	busy := seedCommunity(t, s, owner.ID, "Busy Novels", domain.VisibilityPublic)
	if err := s.JoinCommunity(ctx, busy.ID, joiner.ID, baseTime); err != nil {
		t.Fatalf("JoinCommunity: %v", err)
	}

	list, err := s.ListCommunities(ctx, domain.CommunityQuery{Sort: domain.CommunitySortMembers, Now: baseTime})
	if err != nil {
		t.Fatalf("ListCommunities: %v", err)
	}
	if list[0].ID != busy.ID || list[1].ID != quiet.ID {
		t.Errorf("members sort = [%d %d], want [%d %d]", list[0].ID, list[1].ID, busy.ID, quiet.ID)
	}
	if list[0].EffectiveScore <= list[1].EffectiveScore {
		t.Errorf("busy score %d should exceed quiet score %d", list[0].EffectiveScore, list[1].EffectiveScore)
	}

	list, err = s.ListCommunities(ctx, domain.CommunityQuery{Search: "poem", Now: baseTime})
	if err != nil {
		t.Fatalf("ListCommunities: %v", err)
	}
	if len(list) != 1 || list[0].ID != quiet.ID {
		t.Errorf("search result = %+v", list)
	}
}

func TestStore_ActivityScores_StoredWins(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner")
	c := seedCommunity(t, s, owner.ID, "circle", domain.VisibilityPublic)
	refreshAt := baseTime.Add(40 * 24 * time.Hour)

	n, err := s.RefreshActivityScores(ctx, refreshAt)
	if err != nil || n != 1 {
		t.Fatalf("RefreshActivityScores = %d, %v", n, err)
	}
	list, _ := s.ListCommunities(ctx, domain.CommunityQuery{Now: baseTime})
	stored := list[0].EffectiveScore

	if _, err := s.ClearActivityScores(ctx); err != nil {
		t.Fatalf("ClearActivityScores: %v", err)
	}
	list, _ = s.ListCommunities(ctx, domain.CommunityQuery{Now: baseTime})
	computed := list[0].EffectiveScore

	got, _ := s.GetCommunity(ctx, c.ID)
	if want := domain.ActivityScore(got, baseTime); computed != want {
		t.Errorf("computed score = %d, want %d", computed, want)
	}
	if stored == computed {
		t.Errorf("stored score %d should differ from the live one", stored)
	}
}

func TestStore_JoinLeave(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner")
	member := seedUser(t, s, "member")
	c := seedCommunity(t, s, owner.ID, "circle", domain.VisibilityPublic)

	if err := s.JoinCommunity(ctx, c.ID, member.ID, baseTime); err != nil {
		t.Fatalf("JoinCommunity: %v", err)
	}
	if err := s.JoinCommunity(ctx, c.ID, member.ID, baseTime); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("second join err = %v", err)
	}
	got, _ := s.GetCommunity(ctx, c.ID)
	if got.MemberCount != 2 {
		t.Errorf("member_count = %d, want 2", got.MemberCount)
	}
	if n, _ := s.CountUserCommunities(ctx, member.ID); n != 1 {
		t.Errorf("CountUserCommunities = %d, want 1", n)
	}

	if err := s.LeaveCommunity(ctx, c.ID, member.ID); err != nil {
		t.Fatalf("LeaveCommunity: %v", err)
	}
	if err := s.LeaveCommunity(ctx, c.ID, member.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second leave err = %v", err)
	}
	got, _ = s.GetCommunity(ctx, c.ID)
	if got.MemberCount != 1 {
		t.Errorf("member_count = %d, want 1", got.MemberCount)
	}
}

func TestStore_CommunitySentences(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner")
	other := seedUser(t, s, "other")
	c := seedCommunity(t, s, owner.ID, "circle", domain.VisibilityPublic)

	low := seedSentence(t, s, owner.ID, "low", domain.VisibilityPublic)
	high := seedSentence(t, s, owner.ID, "high", domain.VisibilityPublic)
	shared := seedSentence(t, s, owner.ID, "shared", domain.VisibilityPrivate)
	for _, sent := range []*domain.Sentence{low, high, shared} {
		if err := s.AddSentenceToCommunity(ctx, c.ID, sent.ID, owner.ID, baseTime); err != nil {
			t.Fatalf("AddSentenceToCommunity: %v", err)
		}
	}
	if _, err := s.ToggleLike(ctx, high.ID, other.ID); err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}

	top, err := s.TopSentencesByCommunity(ctx, []int64{c.ID}, domain.TopSentencesPerGroup)
	if err != nil {
		t.Fatalf("TopSentencesByCommunity: %v", err)
	}
	if len(top[c.ID]) != 3 || top[c.ID][0].ID != high.ID || top[c.ID][1].ID != low.ID || top[c.ID][2].ID != shared.ID {
		t.Errorf("top sentences = %+v", top[c.ID])
	}

	// A linked private sentence is part of the community for every reader.
	asOther, _ := s.ListCommunitySentences(ctx, c.ID, other.ID, domain.PageQuery{})
	asOwner, _ := s.ListCommunitySentences(ctx, c.ID, owner.ID, domain.PageQuery{})
	if len(asOther) != 3 || len(asOwner) != 3 {
		t.Errorf("linked sentences: other %d owner %d, want 3 and 3", len(asOther), len(asOwner))
	}

	if err := s.DeleteSentence(ctx, high.ID); err != nil {
		t.Fatalf("DeleteSentence: %v", err)
	}
	got, _ := s.GetCommunity(ctx, c.ID)
	if got.SentenceCount != 2 || got.TotalLikes != 0 {
		t.Errorf("after delete: sentences %d likes %d", got.SentenceCount, got.TotalLikes)
	}

	if err := s.RemoveSentenceFromCommunity(ctx, c.ID, high.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("removing a deleted sentence: err = %v", err)
	}
}

func TestStore_ListSentences_FeedAndCollection(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	first := seedSentence(t, s, alice.ID, "The sea is calm tonight", domain.VisibilityPublic)
	seedSentence(t, s, alice.ID, "private thought", domain.VisibilityPrivate)
	latest := seedSentence(t, s, bob.ID, "Call me Ishmael", domain.VisibilityPublic)

	feed, err := s.ListSentences(ctx, domain.SentenceQuery{ViewerID: alice.ID})
	if err != nil {
		t.Fatalf("ListSentences: %v", err)
	}
	if len(feed) != 2 || feed[0].ID != latest.ID || feed[1].ID != first.ID {
		t.Fatalf("feed = %+v", feed)
	}
	if feed[0].User == nil || feed[0].User.Nickname != "bob" {
		t.Errorf("feed author = %+v", feed[0].User)
	}

	own, _ := s.ListSentences(ctx, domain.SentenceQuery{OwnerID: alice.ID, ViewerID: alice.ID, Sort: domain.SentenceSortOldest})
	if len(own) != 2 || own[0].ID != first.ID {
		t.Errorf("collection = %+v", own)
	}

	found, _ := s.ListSentences(ctx, domain.SentenceQuery{Search: "SEA"})
	if len(found) != 1 || found[0].ID != first.ID {
		t.Errorf("search = %+v", found)
	}
}

func TestStore_Books(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()

	author := "Hesse"
	for _, title := range []string{"Demian", "demian", "Siddhartha"} {
		if err := s.TouchBook(ctx, title, &author, nil); err != nil {
			t.Fatalf("TouchBook: %v", err)
		}
	}

	popular, _ := s.PopularBooks(ctx, 10)
	if len(popular) != 2 || popular[0].Title != "Demian" || popular[0].SentenceCount != 2 {
		t.Fatalf("popular = %+v", popular)
	}

	hits, _ := s.SearchBooks(ctx, "sidd", 5)
	if len(hits) != 1 || hits[0].SearchCount != 1 {
		t.Fatalf("search = %+v", hits)
	}
	hits, _ = s.SearchBooks(ctx, "hesse", 5)
	if len(hits) != 2 || hits[0].Title != "Siddhartha" {
		t.Errorf("search by author = %+v", hits)
	}
}

func TestStore_ResetTokens(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "u")

	if err := s.ReplaceResetToken(ctx, u.ID, "old", baseTime.Add(time.Hour)); err != nil {
		t.Fatalf("ReplaceResetToken: %v", err)
	}
	if err := s.ReplaceResetToken(ctx, u.ID, "new", baseTime.Add(time.Hour)); err != nil {
		t.Fatalf("ReplaceResetToken: %v", err)
	}
	if _, err := s.GetResetToken(ctx, "old"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("old token should be replaced, err = %v", err)
	}

	tok, err := s.GetResetToken(ctx, "new")
	if err != nil {
		t.Fatalf("GetResetToken: %v", err)
	}
	if err := s.ConsumeResetToken(ctx, tok.ID, u.ID, "newhash", baseTime); err != nil {
		t.Fatalf("ConsumeResetToken: %v", err)
	}
	if err := s.ConsumeResetToken(ctx, tok.ID, u.ID, "otherhash", baseTime); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second consume err = %v, want ErrNotFound", err)
	}
	got, _ := s.GetUserByID(ctx, u.ID)
	if got.PasswordHash != "newhash" {
		t.Errorf("password hash = %q", got.PasswordHash)
	}
	if _, err := s.GetResetToken(ctx, "new"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("consumed token should be gone, err = %v", err)
	}
}

func TestStore_DeleteUser_KeepsCountersConsistent(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner")
	leaver := seedUser(t, s, "leaver")
	c := seedCommunity(t, s, owner.ID, "circle", domain.VisibilityPublic)
	kept := seedSentence(t, s, owner.ID, "kept", domain.VisibilityPublic)
	gone := seedSentence(t, s, leaver.ID, "gone", domain.VisibilityPublic)

	if err := s.JoinCommunity(ctx, c.ID, leaver.ID, baseTime); err != nil {
		t.Fatalf("JoinCommunity: %v", err)
	}
	for _, sent := range []*domain.Sentence{kept, gone} {
		if err := s.AddSentenceToCommunity(ctx, c.ID, sent.ID, owner.ID, baseTime); err != nil {
			t.Fatalf("AddSentenceToCommunity: %v", err)
		}
	}
	if _, err := s.ToggleLike(ctx, kept.ID, leaver.ID); err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}

	if err := s.DeleteUser(ctx, leaver.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	got, _ := s.GetCommunity(ctx, c.ID)
	if got.MemberCount != 1 || got.SentenceCount != 1 || got.TotalLikes != 0 {
		t.Errorf("community = members %d sentences %d likes %d", got.MemberCount, got.SentenceCount, got.TotalLikes)
	}
	sent, _ := s.GetSentence(ctx, kept.ID)
	if sent.Likes != 0 {
		t.Errorf("kept sentence likes = %d, want 0", sent.Likes)
	}
}
