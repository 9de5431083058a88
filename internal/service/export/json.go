package export

import (
	"encoding/json"
	"time"
)

type jsonDocument struct {
	Metadata  jsonMetadata   `json:"metadata"`
	Sentences []jsonSentence `json:"sentences"`
}

type jsonMetadata struct {
	ExportedAt time.Time  `json:"exportedAt"`
	TotalCount int        `json:"totalCount"`
	User       string     `json:"user"`
	Filter     jsonFilter `json:"filter"`
}

type jsonFilter struct {
	Type string  `json:"type"`
	Book *string `json:"book,omitempty"`
	From *string `json:"from,omitempty"`
	To   *string `json:"to,omitempty"`
}

type jsonSentence struct {
	ID          int64     `json:"id"`
	Content     string    `json:"content"`
	Book        jsonBook  `json:"book"`
	Stats       jsonStats `json:"stats"`
	PrivateNote *string   `json:"privateNote"`
	CreatedAt   time.Time `json:"createdAt"`
}

type jsonBook struct {
	Title      *string `json:"title"`
	Author     *string `json:"author"`
	Publisher  *string `json:"publisher"`
	PageNumber *int    `json:"pageNumber"`
}

type jsonStats struct {
	Likes    int  `json:"likes"`
	IsPublic bool `json:"isPublic"`
}

func renderJSON(doc document) ([]byte, error) {
	out := jsonDocument{
		Metadata: jsonMetadata{
			ExportedAt: doc.at,
			TotalCount: len(doc.sentences),
			User:       doc.nickname,
			Filter:     jsonFilter{Type: doc.filter.Scope.String()},
		},
		Sentences: make([]jsonSentence, 0, len(doc.sentences)),
	}
	if doc.filter.Book != "" {
		book := doc.filter.Book
		out.Metadata.Filter.Book = &book
	}
	if doc.filter.From != nil {
		from := doc.filter.From.Format(dateLayout)
		out.Metadata.Filter.From = &from
	}
	if doc.filter.To != nil {
		to := doc.filter.To.Format(dateLayout)
		out.Metadata.Filter.To = &to
	}

	for _, s := range doc.sentences {
		out.Sentences = append(out.Sentences, jsonSentence{
			ID:      s.ID,
			Content: s.Content,
			Book: jsonBook{
				Title:      s.BookTitle,
				Author:     s.Author,
				Publisher:  s.Publisher,
				PageNumber: s.PageNumber,
			},
			Stats:       jsonStats{Likes: s.Likes, IsPublic: s.IsPublic.IsPublic()},
			PrivateNote: s.PrivateNote,
			CreatedAt:   s.CreatedAt,
		})
	}
	return json.MarshalIndent(out, "", "  ")
}
