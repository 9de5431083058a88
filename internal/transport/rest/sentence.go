package rest

import (
	"context"
	"net/http"

	"github.com/bluebuchu/collect-sub000/internal/domain"
	"github.com/bluebuchu/collect-sub000/internal/service/sentence"
)

type sentenceService interface {
	Create(ctx context.Context, userID int64, input sentence.CreateInput) (*domain.Sentence, error)
	Get(ctx context.Context, viewerID, id int64) (*domain.Sentence, error)
	Update(ctx context.Context, userID, id int64, input sentence.UpdateInput) (*domain.Sentence, error)
	Delete(ctx context.Context, userID, id int64) error
	ListMine(ctx context.Context, userID int64, input sentence.ListInput) ([]domain.SentenceWithUser, error)
	Feed(ctx context.Context, viewerID int64, input sentence.ListInput) ([]domain.SentenceWithUser, error)
	ToggleLike(ctx context.Context, userID, id int64) (domain.LikeState, error)
	Unlike(ctx context.Context, userID, id int64) (domain.LikeState, error)
}

// SentenceHandler serves /api/sentences.
type SentenceHandler struct {
	svc sentenceService
	rs  Responder
}

// NewSentenceHandler creates a new SentenceHandler.
func NewSentenceHandler(svc sentenceService, rs Responder) *SentenceHandler {
	return &SentenceHandler{svc: svc, rs: rs.named("sentence")}
}

type sentenceRequest struct {
	Content      *string `json:"content"`
	BookTitle    *string `json:"bookTitle"`
	Author       *string `json:"author"`
	Publisher    *string `json:"publisher"`
	PageNumber   *int    `json:"pageNumber"`
	IsPublic     *bool   `json:"isPublic"`
	PrivateNote  *string `json:"privateNote"`
	IsBookmarked *bool   `json:"isBookmarked"`
}

func listInput(r *http.Request) (sentence.ListInput, error) {
	offset, limit, err := pageParams(r)
	if err != nil {
		return sentence.ListInput{}, err
	}
	q := r.URL.Query()
	return sentence.ListInput{
		Search: q.Get("q"),
		Book:   q.Get("book"),
		Author: q.Get("author"),
		Sort:   q.Get("sort"),
		Offset: offset,
		Limit:  limit,
	}, nil
}

// ListMine returns the caller's own sentences.
func (h *SentenceHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	input, err := listInput(r)
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	uid := viewerID(r)
	list, err := h.svc.ListMine(r.Context(), uid, input)
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFeedViews(list, uid))
}

// Feed returns public sentences of every user.
func (h *SentenceHandler) Feed(w http.ResponseWriter, r *http.Request) {
	input, err := listInput(r)
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	uid := viewerID(r)
	list, err := h.svc.Feed(r.Context(), uid, input)
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFeedViews(list, uid))
}

// Create saves a new sentence. Sentences are private unless isPublic is set.
func (h *SentenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req sentenceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.handleError(w, r, err)
		return
	}

	input := sentence.CreateInput{
		BookTitle:   req.BookTitle,
		Author:      req.Author,
		Publisher:   req.Publisher,
		PageNumber:  req.PageNumber,
		PrivateNote: req.PrivateNote,
	}
	if req.Content != nil {
		input.Content = *req.Content
	}
	if req.IsPublic != nil {
		input.IsPublic = *req.IsPublic
	}
	if req.IsBookmarked != nil {
		input.IsBookmarked = *req.IsBookmarked
	}

	uid := viewerID(r)
	s, err := h.svc.Create(r.Context(), uid, input)
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSentenceView(s, uid))
}

// Get returns one sentence visible to the caller.
func (h *SentenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	uid := viewerID(r)
	s, err := h.svc.Get(r.Context(), uid, id)
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSentenceView(s, uid))
}

// Update applies a partial change. A JSON null pageNumber clears the page.
func (h *SentenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}

	var raw map[string]any
	var req sentenceRequest
	if err := decodeTwice(w, r, &raw, &req); err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	pageValue, pageSent := raw["pageNumber"]

	uid := viewerID(r)
	s, err := h.svc.Update(r.Context(), uid, id, sentence.UpdateInput{
		Content:      req.Content,
		BookTitle:    req.BookTitle,
		Author:       req.Author,
		Publisher:    req.Publisher,
		PageNumber:   req.PageNumber,
		ClearPage:    pageSent && pageValue == nil,
		IsPublic:     req.IsPublic,
		PrivateNote:  req.PrivateNote,
		IsBookmarked: req.IsBookmarked,
	})
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSentenceView(s, uid))
}

// Delete removes an owned sentence.
func (h *SentenceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), viewerID(r), id); err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeOK(w)
}

// ToggleLike likes the sentence, or removes an existing like.
func (h *SentenceHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	h.like(w, r, h.svc.ToggleLike)
}

// Unlike removes the caller's like if present.
func (h *SentenceHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.like(w, r, h.svc.Unlike)
}

func (h *SentenceHandler) like(w http.ResponseWriter, r *http.Request, op func(context.Context, int64, int64) (domain.LikeState, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	state, err := op(r.Context(), viewerID(r), id)
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, likeView{IsLiked: state.IsLiked, Likes: state.Likes})
}
