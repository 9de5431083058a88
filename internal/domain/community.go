package domain

import (
	"time"
)

// Community groups sentences around a topic or book. The counters are
// denormalized and maintained alongside membership/association rows.
type Community struct {
	ID             int64
	Name           string
	Description    *string
	Category       *string
	RelatedBook    *string
	CreatorID      int64
	MemberCount    int
	IsPublic       Visibility
	SentenceCount  int
	TotalLikes     int
	TotalComments  int
	ActivityScore  *int
	LastActivityAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// LastActive returns the time used by the "recent" sort.
func (c *Community) LastActive() time.Time {
	if c.LastActivityAt != nil {
		return *c.LastActivityAt
	}
	return c.CreatedAt
}

// CommunityWithStats is a community as returned by list endpoints.
// EffectiveScore is the stored activity score when present, else the computed one.
type CommunityWithStats struct {
	Community
	EffectiveScore int
	CreatorName    string
	MyRole         *MemberRole
	TopSentences   []Sentence
}

// CommunityMember is a membership row.
type CommunityMember struct {
	CommunityID int64
	UserID      int64
	Role        MemberRole
	JoinedAt    time.Time
}

// MemberWithUser is a membership row joined with the member's profile.
type MemberWithUser struct {
	CommunityMember
	Nickname     string
	ProfileImage *string
}

// CommunitySentence links a sentence into a community.
type CommunitySentence struct {
	CommunityID int64
	SentenceID  int64
	AddedBy     int64
	AddedAt     time.Time
}

// CommunityFields holds the writable fields of a community.
type CommunityFields struct {
	Name        string
	Description *string
	Category    *string
	RelatedBook *string
	IsPublic    Visibility
}

// CommunityUpdate holds a partial community update. Nil fields are left as-is.
type CommunityUpdate struct {
	Name        *string
	Description *string
	Category    *string
	RelatedBook *string
	IsPublic    *Visibility
}
