package export

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

const untitled = "Untitled"

// sortSentences orders by book title using the locale's collation, then by
// page (missing page first), then by id. A missing title compares as the
// empty string, so untitled sentences lead.
func sortSentences(list []domain.Sentence, tag language.Tag) {
	col := collate.New(tag)
	slices.SortStableFunc(list, func(a, b domain.Sentence) int {
		if c := col.CompareString(title(&a), title(&b)); c != 0 {
			return c
		}
		if c := cmp.Compare(a.PageOrZero(), b.PageOrZero()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func title(s *domain.Sentence) string {
	if s.BookTitle == nil {
		return ""
	}
	return *s.BookTitle
}

// bookGroup is a run of sentences sharing one book title.
type bookGroup struct {
	title     string
	author    string
	sentences []domain.Sentence
}

// groupByBook splits a sorted list into consecutive title groups.
func groupByBook(list []domain.Sentence) []bookGroup {
	var groups []bookGroup
	for _, s := range list {
		t := title(&s)
		if len(groups) == 0 || groups[len(groups)-1].title != t {
			groups = append(groups, bookGroup{title: t})
		}
		g := &groups[len(groups)-1]
		if g.author == "" && s.Author != nil {
			g.author = *s.Author
		}
		g.sentences = append(g.sentences, s)
	}
	return groups
}

func (g bookGroup) heading() string {
	if g.title == "" {
		return untitled
	}
	return g.title
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
