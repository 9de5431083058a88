package rest

import (
	"time"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// JSON projections of domain types. Field names follow the camelCase
// contract the web client already consumes.

type userView struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Nickname     string    `json:"nickname"`
	ProfileImage *string   `json:"profileImage"`
	Bio          *string   `json:"bio"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toUserView(u *domain.User) userView {
	return userView{
		ID:           u.ID,
		Email:        u.Email,
		Nickname:     u.Nickname,
		ProfileImage: u.ProfileImage,
		Bio:          u.Bio,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

type sentenceView struct {
	ID           int64     `json:"id"`
	UserID       *int64    `json:"userId"`
	Content      string    `json:"content"`
	BookTitle    *string   `json:"bookTitle"`
	Author       *string   `json:"author"`
	Publisher    *string   `json:"publisher"`
	PageNumber   *int      `json:"pageNumber"`
	Likes        int       `json:"likes"`
	IsPublic     bool      `json:"isPublic"`
	PrivateNote  *string   `json:"privateNote,omitempty"`
	IsBookmarked bool      `json:"isBookmarked"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// toSentenceView hides the private note from everyone but the owner.
func toSentenceView(s *domain.Sentence, viewerID int64) sentenceView {
	v := sentenceView{
		ID:         s.ID,
		UserID:     s.UserID,
		Content:    s.Content,
		BookTitle:  s.BookTitle,
		Author:     s.Author,
		Publisher:  s.Publisher,
		PageNumber: s.PageNumber,
		Likes:      s.Likes,
		IsPublic:   s.IsPublic.IsPublic(),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
	if viewerID != 0 && s.IsOwnedBy(viewerID) {
		v.PrivateNote = s.PrivateNote
		v.IsBookmarked = s.IsBookmarked
	}
	return v
}

func toSentenceViews(list []domain.Sentence, viewerID int64) []sentenceView {
	out := make([]sentenceView, 0, len(list))
	for i := range list {
		out = append(out, toSentenceView(&list[i], viewerID))
	}
	return out
}

type authorView struct {
	ID           int64   `json:"id"`
	Nickname     string  `json:"nickname"`
	ProfileImage *string `json:"profileImage"`
}

type feedSentenceView struct {
	sentenceView
	Nickname string      `json:"nickname"`
	User     *authorView `json:"user"`
	IsLiked  bool        `json:"isLiked"`
}

func toFeedViews(list []domain.SentenceWithUser, viewerID int64) []feedSentenceView {
	out := make([]feedSentenceView, 0, len(list))
	for i := range list {
		s := &list[i]
		v := feedSentenceView{
			sentenceView: toSentenceView(&s.Sentence, viewerID),
			Nickname:     s.DisplayName(),
			IsLiked:      s.IsLiked,
		}
		if s.User != nil {
			v.User = &authorView{ID: s.User.ID, Nickname: s.User.Nickname, ProfileImage: s.User.ProfileImage}
		}
		out = append(out, v)
	}
	return out
}

type likeView struct {
	IsLiked bool `json:"isLiked"`
	Likes   int  `json:"likes"`
}

type communityView struct {
	ID             int64          `json:"id"`
	Name           string         `json:"name"`
	Description    *string        `json:"description"`
	Category       *string        `json:"category"`
	RelatedBook    *string        `json:"relatedBook"`
	CreatorID      int64          `json:"creatorId"`
	CreatorName    string         `json:"creatorName,omitempty"`
	MemberCount    int            `json:"memberCount"`
	IsPublic       bool           `json:"isPublic"`
	SentenceCount  int            `json:"sentenceCount"`
	TotalLikes     int            `json:"totalLikes"`
	TotalComments  int            `json:"totalComments"`
	ActivityScore  int            `json:"activityScore"`
	LastActivityAt *time.Time     `json:"lastActivityAt"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	MyRole         *string        `json:"myRole,omitempty"`
	TopSentences   []sentenceView `json:"topSentences,omitempty"`
}

func toCommunityView(c *domain.Community, score int) communityView {
	return communityView{
		ID:             c.ID,
		Name:           c.Name,
		Description:    c.Description,
		Category:       c.Category,
		RelatedBook:    c.RelatedBook,
		CreatorID:      c.CreatorID,
		MemberCount:    c.MemberCount,
		IsPublic:       c.IsPublic.IsPublic(),
		SentenceCount:  c.SentenceCount,
		TotalLikes:     c.TotalLikes,
		TotalComments:  c.TotalComments,
		ActivityScore:  score,
		LastActivityAt: c.LastActivityAt,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func toCommunityStatsView(c *domain.CommunityWithStats, viewerID int64) communityView {
	v := toCommunityView(&c.Community, c.EffectiveScore)
	v.CreatorName = c.CreatorName
	if c.MyRole != nil {
		role := c.MyRole.String()
		v.MyRole = &role
	}
	if c.TopSentences != nil {
		v.TopSentences = toSentenceViews(c.TopSentences, viewerID)
	}
	return v
}

func toCommunityViews(list []domain.CommunityWithStats, viewerID int64) []communityView {
	out := make([]communityView, 0, len(list))
	for i := range list {
		out = append(out, toCommunityStatsView(&list[i], viewerID))
	}
	return out
}

type memberView struct {
	UserID       int64     `json:"userId"`
	Nickname     string    `json:"nickname"`
	ProfileImage *string   `json:"profileImage"`
	Role         string    `json:"role"`
	JoinedAt     time.Time `json:"joinedAt"`
}

func toMemberViews(list []domain.MemberWithUser) []memberView {
	out := make([]memberView, 0, len(list))
	for _, m := range list {
		out = append(out, memberView{
			UserID:       m.UserID,
			Nickname:     m.Nickname,
			ProfileImage: m.ProfileImage,
			Role:         m.Role.String(),
			JoinedAt:     m.JoinedAt,
		})
	}
	return out
}

type bookView struct {
	ID            int64   `json:"id"`
	ISBN          *string `json:"isbn"`
	Title         string  `json:"title"`
	Author        *string `json:"author"`
	Publisher     *string `json:"publisher"`
	Cover         *string `json:"cover"`
	SearchCount   int     `json:"searchCount"`
	SentenceCount int     `json:"sentenceCount"`
}

func toBookViews(list []domain.Book) []bookView {
	out := make([]bookView, 0, len(list))
	for _, b := range list {
		out = append(out, bookView{
			ID:            b.ID,
			ISBN:          b.ISBN,
			Title:         b.Title,
			Author:        b.Author,
			Publisher:     b.Publisher,
			Cover:         b.Cover,
			SearchCount:   b.SearchCount,
			SentenceCount: b.SentenceCount,
		})
	}
	return out
}

type bookStatView struct {
	Title         string  `json:"title"`
	Author        *string `json:"author"`
	SentenceCount int     `json:"sentenceCount"`
	TotalLikes    int     `json:"totalLikes"`
}

func toBookStatViews(list []domain.BookStat) []bookStatView {
	out := make([]bookStatView, 0, len(list))
	for _, b := range list {
		out = append(out, bookStatView(b))
	}
	return out
}

type authorStatView struct {
	Author        string `json:"author"`
	SentenceCount int    `json:"sentenceCount"`
	BookCount     int    `json:"bookCount"`
	TotalLikes    int    `json:"totalLikes"`
}

func toAuthorStatViews(list []domain.AuthorStat) []authorStatView {
	out := make([]authorStatView, 0, len(list))
	for _, a := range list {
		out = append(out, authorStatView(a))
	}
	return out
}

type userStatsView struct {
	TotalSentences  int              `json:"totalSentences"`
	PublicSentences int              `json:"publicSentences"`
	TotalLikes      int              `json:"totalLikes"`
	BookCount       int              `json:"bookCount"`
	CommunityCount  int              `json:"communityCount"`
	TopBooks        []bookStatView   `json:"topBooks"`
	TopAuthors      []authorStatView `json:"topAuthors"`
}
