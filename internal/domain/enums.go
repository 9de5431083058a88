package domain

// Visibility is the 0/1 flag stored in is_public columns.
type Visibility int

const (
	VisibilityPrivate Visibility = 0
	VisibilityPublic  Visibility = 1
)

func (v Visibility) IsValid() bool {
	return v == VisibilityPrivate || v == VisibilityPublic
}

func (v Visibility) IsPublic() bool { return v == VisibilityPublic }

// VisibilityFromBool converts a JSON boolean into the stored flag.
func VisibilityFromBool(public bool) Visibility {
	if public {
		return VisibilityPublic
	}
	return VisibilityPrivate
}

// MemberRole is a user's role inside a community.
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

func (r MemberRole) String() string { return string(r) }

func (r MemberRole) IsValid() bool {
	switch r {
	case MemberRoleOwner, MemberRoleAdmin, MemberRoleMember:
		return true
	}
	return false
}

// CanModerate reports whether the role may edit the community and remove
// sentences added by others.
func (r MemberRole) CanModerate() bool {
	return r == MemberRoleOwner || r == MemberRoleAdmin
}

// CommunitySort selects the ordering of the community discovery list.
type CommunitySort string

const (
	CommunitySortActivity CommunitySort = "activity"
	CommunitySortMembers  CommunitySort = "members"
	CommunitySortRecent   CommunitySort = "recent"
)

func (s CommunitySort) String() string { return string(s) }

func (s CommunitySort) IsValid() bool {
	switch s {
	case CommunitySortActivity, CommunitySortMembers, CommunitySortRecent:
		return true
	}
	return false
}

// SentenceSort selects the ordering of sentence lists.
type SentenceSort string

const (
	SentenceSortLatest SentenceSort = "latest"
	SentenceSortOldest SentenceSort = "oldest"
	SentenceSortLikes  SentenceSort = "likes"
)

func (s SentenceSort) String() string { return string(s) }

func (s SentenceSort) IsValid() bool {
	switch s {
	case SentenceSortLatest, SentenceSortOldest, SentenceSortLikes:
		return true
	}
	return false
}

// ExportFormat is the output representation of an export.
type ExportFormat string

const (
	ExportFormatCSV      ExportFormat = "csv"
	ExportFormatJSON     ExportFormat = "json"
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatText     ExportFormat = "txt"
)

func (f ExportFormat) String() string { return string(f) }

func (f ExportFormat) IsValid() bool {
	switch f {
	case ExportFormatCSV, ExportFormatJSON, ExportFormatMarkdown, ExportFormatText:
		return true
	}
	return false
}

// ExportScope selects which of the user's sentences are exported.
type ExportScope string

const (
	ExportScopeAll  ExportScope = "all"
	ExportScopeBook ExportScope = "book"
	ExportScopeDate ExportScope = "date"
)

func (s ExportScope) String() string { return string(s) }

func (s ExportScope) IsValid() bool {
	switch s {
	case ExportScopeAll, ExportScopeBook, ExportScopeDate:
		return true
	}
	return false
}
