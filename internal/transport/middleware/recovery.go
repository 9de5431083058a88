package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/bluebuchu/collect-sub000/pkg/ctxutil"
)

// Recovery turns a handler panic into a 500 response and an error log
// entry carrying the stack. http.ErrAbortHandler is re-raised so net/http
// can drop the connection quietly.
func Recovery(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				ctx := r.Context()
				attrs := []slog.Attr{
					slog.Any("panic", rec),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("request_id", ctxutil.RequestIDFromCtx(ctx)),
					slog.String("stack", string(debug.Stack())),
				}
				sw, tracked := w.(*statusWriter)
				if tracked {
					if userID, ok := ctxutil.UserIDFromCtx(sw.ctx); ok {
						attrs = append(attrs, slog.Int64("user_id", userID))
					}
				}
				logger.LogAttrs(ctx, slog.LevelError, "panic recovered", attrs...)

				// A partially written response cannot be replaced.
				if tracked && sw.wroteHeader {
					return
				}
				writeError(w, http.StatusInternalServerError, "internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
