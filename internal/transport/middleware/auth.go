package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bluebuchu/collect-sub000/internal/auth"
	"github.com/bluebuchu/collect-sub000/internal/domain"
	"github.com/bluebuchu/collect-sub000/pkg/ctxutil"
)

// Auth sources recorded with ctxutil.WithAuthSource.
const (
	SourceToken   = "token"
	SourceSession = "session"
)

type tokenValidator interface {
	ValidateToken(token string) (auth.Claims, error)
}

type sessionReader interface {
	UserID(r *http.Request) (int64, error)
}

type userLookup interface {
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
}

// Actor resolves the requesting user: a valid bearer token wins, otherwise
// the session cookie is used. Either way the id is checked against the
// users table, so a deleted account stops authenticating at once.
// Unresolved requests continue anonymously.
func Actor(tokens tokenValidator, sessions sessionReader, users userLookup, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token := extractBearerToken(r); token != "" {
				claims, err := tokens.ValidateToken(token)
				switch {
				case err != nil:
					logger.DebugContext(ctx, "bearer token rejected", slog.String("error", err.Error()))
				case existingUser(ctx, users, claims.UserID, logger):
					ctx = ctxutil.WithAuthSource(ctxutil.WithUserID(ctx, claims.UserID), SourceToken)
					serveAs(next, w, r, ctx)
					return
				}
			}

			if userID, ok := sessionUser(ctx, r, sessions, users, logger); ok {
				ctx = ctxutil.WithAuthSource(ctxutil.WithUserID(ctx, userID), SourceSession)
			}
			serveAs(next, w, r, ctx)
		})
	}
}

func sessionUser(ctx context.Context, r *http.Request, sessions sessionReader, users userLookup, logger *slog.Logger) (int64, bool) {
	userID, err := sessions.UserID(r)
	if err != nil {
		if !errors.Is(err, auth.ErrNoSession) {
			logger.WarnContext(ctx, "session lookup failed", slog.String("error", err.Error()))
		}
		return 0, false
	}
	if !existingUser(ctx, users, userID, logger) {
		return 0, false
	}
	return userID, true
}

func existingUser(ctx context.Context, users userLookup, userID int64, logger *slog.Logger) bool {
	if _, err := users.GetUserByID(ctx, userID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.WarnContext(ctx, "actor lookup failed",
				slog.Int64("user_id", userID), slog.String("error", err.Error()))
		}
		return false
	}
	return true
}

// serveAs passes the resolved context on and exposes it to the access log.
func serveAs(next http.Handler, w http.ResponseWriter, r *http.Request, ctx context.Context) {
	if sw, ok := w.(*statusWriter); ok {
		sw.ctx = ctx
	}
	next.ServeHTTP(w, r.WithContext(ctx))
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ctxutil.UserIDFromCtx(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractBearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}
