package community

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// Sentences lists the linked sentences readable by viewerID, most recently
// added first.
func (s *Service) Sentences(ctx context.Context, viewerID, id int64, page domain.PageQuery) ([]domain.SentenceWithUser, error) {
	if page.Offset < 0 {
		return nil, domain.NewValidationError("offset", "must be >= 0")
	}
	if _, _, err := s.access(ctx, id, viewerID); err != nil {
		return nil, fmt.Errorf("community.Sentences %d: %w", id, err)
	}
	list, err := s.communities.ListCommunitySentences(ctx, id, viewerID, page.Normalize(domain.DefaultSentenceLimit))
	if err != nil {
		return nil, fmt.Errorf("community.Sentences %d: %w", id, err)
	}
	return list, nil
}

// AddSentence links one of the member's own sentences into the community.
func (s *Service) AddSentence(ctx context.Context, userID, id, sentenceID int64) error {
	if _, _, err := s.requireRole(ctx, id, userID, anyRole); err != nil {
		return fmt.Errorf("community.AddSentence %d: %w", id, err)
	}

	sent, err := s.sentences.GetSentence(ctx, sentenceID)
	if err != nil {
		return fmt.Errorf("community.AddSentence %d: %w", id, err)
	}
	if !sent.VisibleTo(userID) {
		return fmt.Errorf("community.AddSentence %d: sentence %d: %w", id, sentenceID, domain.ErrNotFound)
	}
	if !sent.IsOwnedBy(userID) {
		return fmt.Errorf("community.AddSentence %d: %w", id, domain.ErrForbidden)
	}

	if err := s.communities.AddSentenceToCommunity(ctx, id, sentenceID, userID, s.now()); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return domain.NewRuleError(msgAlreadyLinked)
		}
		return fmt.Errorf("community.AddSentence %d: %w", id, err)
	}

	s.log.InfoContext(ctx, "sentence added to community",
		slog.Int64("community_id", id), slog.Int64("sentence_id", sentenceID))
	return nil
}

// RemoveSentence unlinks a sentence. Allowed for the sentence owner and for
// community owners and admins.
func (s *Service) RemoveSentence(ctx context.Context, userID, id, sentenceID int64) error {
	_, m, err := s.requireRole(ctx, id, userID, anyRole)
	if err != nil {
		return fmt.Errorf("community.RemoveSentence %d: %w", id, err)
	}

	if !m.Role.CanModerate() {
		sent, err := s.sentences.GetSentence(ctx, sentenceID)
		if err != nil {
			return fmt.Errorf("community.RemoveSentence %d: %w", id, err)
		}
		if !sent.IsOwnedBy(userID) {
			return fmt.Errorf("community.RemoveSentence %d: %w", id, domain.ErrForbidden)
		}
	}

	if err := s.communities.RemoveSentenceFromCommunity(ctx, id, sentenceID); err != nil {
		return fmt.Errorf("community.RemoveSentence %d: %w", id, err)
	}
	return nil
}
