// Package export renders a user's sentences as CSV, JSON, Markdown or a
// plain-text report.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/text/language"

	"github.com/bluebuchu/collect-sub000/internal/config"
	"github.com/bluebuchu/collect-sub000/internal/domain"
)

type sentenceStore interface {
	ListSentencesForExport(ctx context.Context, ownerID int64, f domain.ExportFilter) ([]domain.Sentence, error)
}

type userReader interface {
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
}

// Service provides sentence export.
type Service struct {
	sentences sentenceStore
	users     userReader
	locale    language.Tag
	limit     int
	log       *slog.Logger
	now       func() time.Time
}

// NewService creates a new export service. An unknown locale falls back to
// the root collation order.
func NewService(log *slog.Logger, sentences sentenceStore, users userReader, cfg config.ExportConfig) *Service {
	return &Service{
		sentences: sentences,
		users:     users,
		locale:    language.Make(cfg.Locale),
		limit:     cfg.MaxSentence,
		log:       log.With("service", "export"),
		now:       time.Now,
	}
}

// Export loads the user's sentences matching input, sorts them by book
// title and page, and renders the requested format.
func (s *Service) Export(ctx context.Context, userID int64, input Input) (*Result, error) {
	req, err := input.parse()
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("export.Export: %w", err)
	}

	list, err := s.sentences.ListSentencesForExport(ctx, userID, req.filter)
	if err != nil {
		return nil, fmt.Errorf("export.Export: %w", err)
	}
	if s.limit > 0 && len(list) > s.limit {
		return nil, domain.NewRuleError(fmt.Sprintf("export is limited to %d sentences, narrow the filter", s.limit))
	}

	sortSentences(list, s.locale)

	now := s.now().UTC()
	doc := document{
		nickname:  user.Nickname,
		filter:    req.filter,
		sentences: list,
		at:        now,
	}

	var body []byte
	switch req.format {
	case domain.ExportFormatCSV:
		body = renderCSV(doc)
	case domain.ExportFormatJSON:
		body, err = renderJSON(doc)
	case domain.ExportFormatMarkdown:
		body = renderMarkdown(doc)
	case domain.ExportFormatText:
		body = renderText(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("export.Export: render %s: %w", req.format, err)
	}

	s.log.InfoContext(ctx, "sentences exported",
		slog.Int64("user_id", userID),
		slog.String("format", req.format.String()),
		slog.Int("count", len(list)))

	return &Result{
		Body:        body,
		ContentType: contentTypes[req.format],
		Filename:    fmt.Sprintf("sentences-%s.%s", now.Format("20060102"), extensions[req.format]),
		Count:       len(list),
	}, nil
}

// document is what every renderer receives.
type document struct {
	nickname  string
	filter    domain.ExportFilter
	sentences []domain.Sentence
	at        time.Time
}
