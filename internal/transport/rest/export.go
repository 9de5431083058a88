package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bluebuchu/collect-sub000/internal/service/export"
)

type exportService interface {
	Export(ctx context.Context, userID int64, input export.Input) (*export.Result, error)
}

// ExportHandler serves /api/export.
type ExportHandler struct {
	svc exportService
	rs  Responder
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(svc exportService, rs Responder) *ExportHandler {
	return &ExportHandler{svc: svc, rs: rs.named("export")}
}

// Export renders the caller's sentences as a downloadable file.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	uid := viewerID(r)

	res, err := h.svc.Export(r.Context(), uid, export.Input{
		Format: q.Get("format"),
		Type:   q.Get("type"),
		Book:   q.Get("book"),
		From:   q.Get("from"),
		To:     q.Get("to"),
	})
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, res.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Body)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Body); err != nil {
		h.rs.Log.WarnContext(r.Context(), "write export",
			slog.Int64("user_id", uid),
			slog.String("error", err.Error()),
		)
	}
}
