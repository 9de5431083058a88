package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bluebuchu/collect-sub000/internal/domain"
	"github.com/bluebuchu/collect-sub000/pkg/ctxutil"
)

const maxJSONBody = 1 << 20

// Responder writes JSON bodies and maps service errors onto status codes.
// With Debug set, unexpected errors are returned verbatim instead of the
// generic 500 message.
type Responder struct {
	Log   *slog.Logger
	Debug bool
}

func (rs Responder) named(handler string) Responder {
	return Responder{Log: rs.Log.With("handler", handler), Debug: rs.Debug}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleError translates err with errors.Is/As. Only 5xx responses are
// logged; client errors are part of normal traffic.
func (rs Responder) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	var re *domain.RuleError

	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.As(err, &re):
		writeError(w, http.StatusBadRequest, re.Message)
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, "invalid input")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, domain.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	default:
		rs.Log.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		msg := "internal server error"
		if rs.Debug {
			msg = err.Error()
		}
		writeError(w, http.StatusInternalServerError, msg)
	}
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return domain.NewValidationError("body", "invalid JSON")
	}
	return nil
}

// decodeTwice decodes the same body into two targets, typically a raw map
// to tell an explicit null apart from an absent key.
func decodeTwice(w http.ResponseWriter, r *http.Request, first, second any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		return domain.NewValidationError("body", "too large")
	}
	if len(body) == 0 {
		return nil
	}
	if json.Unmarshal(body, first) != nil || json.Unmarshal(body, second) != nil {
		return domain.NewValidationError("body", "invalid JSON")
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, fmt.Sprintf("invalid integer %q", raw))
	}
	return n, nil
}

// pageParams reads offset and limit.
func pageParams(r *http.Request) (offset, limit int, err error) {
	if offset, err = queryInt(r, "offset"); err != nil {
		return 0, 0, err
	}
	if limit, err = queryInt(r, "limit"); err != nil {
		return 0, 0, err
	}
	return offset, limit, nil
}

// viewerID is the signed-in user, or 0 for anonymous requests.
func viewerID(r *http.Request) int64 {
	id, _ := ctxutil.UserIDFromCtx(r.Context())
	return id
}
