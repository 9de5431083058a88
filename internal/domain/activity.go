package domain

import "time"

// Activity score weights. The SQL fallback in the postgres community
// repository must use the same constants.
const (
	ScoreWeightLike      = 1
	ScoreWeightComment   = 2
	ScoreWeightSentence  = 3
	ScoreWeightMember    = 5
	ScoreRecencyWindow   = 30
	scoreMinDaysSinceNew = 1
)

// DaysSince returns whole days elapsed between createdAt and now, floored at 1.
func DaysSince(createdAt, now time.Time) int {
	days := int(now.Sub(createdAt) / (24 * time.Hour))
	if days < scoreMinDaysSinceNew {
		return scoreMinDaysSinceNew
	}
	return days
}

// ActivityScore computes the ranking score of a community at now:
//
//	totalLikes + totalComments*2 + sentenceCount*3 + memberCount*5 + max(0, 30 - days)
func ActivityScore(c *Community, now time.Time) int {
	bonus := ScoreRecencyWindow - DaysSince(c.CreatedAt, now)
	if bonus < 0 {
		bonus = 0
	}
	return c.TotalLikes*ScoreWeightLike +
		c.TotalComments*ScoreWeightComment +
		c.SentenceCount*ScoreWeightSentence +
		c.MemberCount*ScoreWeightMember +
		bonus
}

// EffectiveActivityScore returns the stored score when present, else computes it.
func EffectiveActivityScore(c *Community, now time.Time) int {
	if c.ActivityScore != nil {
		return *c.ActivityScore
	}
	return ActivityScore(c, now)
}
