package domain

import "time"

// Book is cached metadata used for autocomplete. Sentences keep their own
// denormalized copy of title/author/publisher, so this table is never
// authoritative.
type Book struct {
	ID            int64
	ISBN          *string
	Title         string
	Author        *string
	Publisher     *string
	Cover         *string
	SearchCount   int
	SentenceCount int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BookStat aggregates sentences per book title.
type BookStat struct {
	Title         string
	Author        *string
	SentenceCount int
	TotalLikes    int
}

// AuthorStat aggregates sentences per author.
type AuthorStat struct {
	Author        string
	SentenceCount int
	BookCount     int
	TotalLikes    int
}

// UserStats is the per-user overview shown on the stats page.
type UserStats struct {
	TotalSentences  int
	PublicSentences int
	TotalLikes      int
	BookCount       int
	CommunityCount  int
	TopBooks        []BookStat
	TopAuthors      []AuthorStat
}

// SentenceTotals are the scalar counters that feed UserStats.
type SentenceTotals struct {
	Total      int
	Public     int
	TotalLikes int
	Books      int
}
