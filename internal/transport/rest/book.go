package rest

import (
	"context"
	"net/http"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

type bookService interface {
	Search(ctx context.Context, query string, limit int) ([]domain.Book, error)
	Popular(ctx context.Context, limit int) ([]domain.Book, error)
	UserStats(ctx context.Context, userID int64) (*domain.UserStats, error)
	TopBooks(ctx context.Context, limit int) ([]domain.BookStat, error)
	TopAuthors(ctx context.Context, limit int) ([]domain.AuthorStat, error)
}

// BookHandler serves the book cache and statistics endpoints.
type BookHandler struct {
	svc bookService
	rs  Responder
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(svc bookService, rs Responder) *BookHandler {
	return &BookHandler{svc: svc, rs: rs.named("book")}
}

// Search is the book title autocomplete.
func (h *BookHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	books, err := h.svc.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookViews(books))
}

func (h *BookHandler) Popular(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	books, err := h.svc.Popular(r.Context(), limit)
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookViews(books))
}

// UserStats is the caller's reading overview.
func (h *BookHandler) UserStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.UserStats(r.Context(), viewerID(r))
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userStatsView{
		TotalSentences:  st.TotalSentences,
		PublicSentences: st.PublicSentences,
		TotalLikes:      st.TotalLikes,
		BookCount:       st.BookCount,
		CommunityCount:  st.CommunityCount,
		TopBooks:        toBookStatViews(st.TopBooks),
		TopAuthors:      toAuthorStatViews(st.TopAuthors),
	})
}

func (h *BookHandler) TopBooks(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	list, err := h.svc.TopBooks(r.Context(), limit)
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookStatViews(list))
}

func (h *BookHandler) TopAuthors(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	list, err := h.svc.TopAuthors(r.Context(), limit)
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthorStatViews(list))
}
