package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/bluebuchu/collect-sub000/internal/domain"
	"github.com/bluebuchu/collect-sub000/internal/service/community"
	"github.com/bluebuchu/collect-sub000/internal/transport/dataloader"
)

type communityService interface {
	Create(ctx context.Context, userID int64, input community.CreateInput) (*domain.Community, error)
	Get(ctx context.Context, viewerID, id int64) (*domain.CommunityWithStats, error)
	Update(ctx context.Context, userID, id int64, input community.UpdateInput) (*domain.Community, error)
	Delete(ctx context.Context, userID, id int64) error
	List(ctx context.Context, viewerID int64, input community.ListInput) ([]domain.CommunityWithStats, error)
	ListMine(ctx context.Context, userID int64) ([]domain.CommunityWithStats, error)
	Join(ctx context.Context, userID, id int64) error
	Leave(ctx context.Context, userID, id int64) error
	Members(ctx context.Context, viewerID, id int64) ([]domain.MemberWithUser, error)
	SetMemberRole(ctx context.Context, actorID, id, targetID int64, input community.RoleInput) error
	Sentences(ctx context.Context, viewerID, id int64, page domain.PageQuery) ([]domain.SentenceWithUser, error)
	AddSentence(ctx context.Context, userID, id, sentenceID int64) error
	RemoveSentence(ctx context.Context, userID, id, sentenceID int64) error
}

// CommunityHandler serves /api/communities.
type CommunityHandler struct {
	svc communityService
	rs  Responder
	now func() time.Time
}

// NewCommunityHandler creates a new CommunityHandler.
func NewCommunityHandler(svc communityService, rs Responder) *CommunityHandler {
	return &CommunityHandler{svc: svc, rs: rs.named("community"), now: time.Now}
}

// List is the discovery page. includeTopSentences attaches up to three
// most liked public sentences per community, loaded in one batch.
func (h *CommunityHandler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := pageParams(r)
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	q := r.URL.Query()
	includeTop, _ := strconv.ParseBool(q.Get("includeTopSentences"))

	ctx := r.Context()
	uid := viewerID(r)
	list, err := h.svc.List(ctx, uid, community.ListInput{
		Sort:   q.Get("sort"),
		Search: q.Get("q"),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}

	if includeTop && len(list) > 0 {
		if err := dataloader.FromContext(ctx).LoadTopSentences(ctx, list); err != nil {
			h.rs.handleError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, toCommunityViews(list, uid))
}

// ListMine returns the communities the caller belongs to.
func (h *CommunityHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	uid := viewerID(r)
	list, err := h.svc.ListMine(r.Context(), uid)
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommunityViews(list, uid))
}

type communityRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	RelatedBook *string `json:"relatedBook"`
	IsPublic    *bool   `json:"isPublic"`
}

// Create opens a new community owned by the caller. Communities are public
// unless isPublic is false.
func (h *CommunityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req communityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.handleError(w, r, err)
		return
	}

	input := community.CreateInput{
		Description: req.Description,
		Category:    req.Category,
		RelatedBook: req.RelatedBook,
		IsPublic:    true,
	}
	if req.Name != nil {
		input.Name = *req.Name
	}
	if req.IsPublic != nil {
		input.IsPublic = *req.IsPublic
	}

	c, err := h.svc.Create(r.Context(), viewerID(r), input)
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCommunityView(c, domain.EffectiveActivityScore(c, h.now())))
}

// Get returns a community with the caller's role.
func (h *CommunityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	uid := viewerID(r)
	c, err := h.svc.Get(r.Context(), uid, id)
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommunityStatsView(c, uid))
}

// Update changes community settings. Owner and admins only.
func (h *CommunityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	var req communityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.handleError(w, r, err)
		return
	}

	c, err := h.svc.Update(r.Context(), viewerID(r), id, community.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		RelatedBook: req.RelatedBook,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommunityView(c, domain.EffectiveActivityScore(c, h.now())))
}

// Delete removes a community. Owner only.
func (h *CommunityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.simple(w, r, h.svc.Delete)
}

// Join adds the caller as a member.
func (h *CommunityHandler) Join(w http.ResponseWriter, r *http.Request) {
	h.simple(w, r, h.svc.Join)
}

// Leave removes the caller's membership.
func (h *CommunityHandler) Leave(w http.ResponseWriter, r *http.Request) {
	h.simple(w, r, h.svc.Leave)
}

func (h *CommunityHandler) simple(w http.ResponseWriter, r *http.Request, op func(context.Context, int64, int64) error) {
	id, err := pathID(r, "id")
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	if err := op(r.Context(), viewerID(r), id); err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeOK(w)
}

// Members lists members with their roles.
func (h *CommunityHandler) Members(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	list, err := h.svc.Members(r.Context(), viewerID(r), id)
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberViews(list))
}

// SetMemberRole promotes or demotes a member. Owner only.
func (h *CommunityHandler) SetMemberRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	target, err := pathID(r, "userId")
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.handleError(w, r, err)
		return
	}

	if err := h.svc.SetMemberRole(r.Context(), viewerID(r), id, target, community.RoleInput{Role: req.Role}); err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeOK(w)
}

// Sentences lists the sentences shared into the community.
func (h *CommunityHandler) Sentences(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	offset, limit, err := pageParams(r)
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}

	uid := viewerID(r)
	list, err := h.svc.Sentences(r.Context(), uid, id, domain.PageQuery{Offset: offset, Limit: limit})
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFeedViews(list, uid))
}

// AddSentence shares one of the caller's sentences into the community.
func (h *CommunityHandler) AddSentence(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	var req struct {
		SentenceID int64 `json:"sentenceId"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	if req.SentenceID <= 0 {
		h.rs.handleError(w, r, domain.NewValidationError("sentenceId", "required"))
		return
	}

	if err := h.svc.AddSentence(r.Context(), viewerID(r), id, req.SentenceID); err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

// RemoveSentence unlinks a sentence. Moderators or the sentence owner.
func (h *CommunityHandler) RemoveSentence(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	sentenceID, err := pathID(r, "sentenceId")
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	if err := h.svc.RemoveSentence(r.Context(), viewerID(r), id, sentenceID); err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeOK(w)
}
