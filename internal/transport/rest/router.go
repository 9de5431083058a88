package rest

import (
	"net/http"
	"time"

	"github.com/bluebuchu/collect-sub000/internal/transport/middleware"
)

// Handlers groups every REST handler mounted by NewRouter.
type Handlers struct {
	Auth      *AuthHandler
	Sentence  *SentenceHandler
	Community *CommunityHandler
	Book      *BookHandler
	Export    *ExportHandler
	Health    *HealthHandler
}

// Limits holds the per-IP limiters. A nil limiter disables that tier.
type Limits struct {
	Global     middleware.Limiter
	Auth       middleware.Limiter
	RetryAfter time.Duration
}

// NewRouter registers the /api routes. Request-scoped middleware (request
// id, logging, actor resolution) is applied by the caller around it.
func NewRouter(h Handlers, limits Limits) http.Handler {
	mux := http.NewServeMux()

	authed := func(fn http.HandlerFunc) http.Handler { return middleware.RequireAuth(fn) }
	strict := func(next http.Handler) http.Handler {
		if limits.Auth == nil {
			return next
		}
		return middleware.RateLimit(limits.Auth, limits.RetryAfter)(next)
	}

	// ops
	mux.HandleFunc("GET /api/health", h.Health.Live)
	mux.HandleFunc("GET /api/ready", h.Health.Ready)

	// auth
	mux.Handle("POST /api/auth/register", strict(http.HandlerFunc(h.Auth.Register)))
	mux.Handle("POST /api/auth/login", strict(http.HandlerFunc(h.Auth.Login)))
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)
	mux.Handle("GET /api/auth/me", authed(h.Auth.Me))
	mux.Handle("PUT /api/auth/profile", authed(h.Auth.UpdateProfile))
	mux.Handle("PUT /api/auth/password", strict(authed(h.Auth.ChangePassword)))
	mux.Handle("POST /api/auth/profile/image", authed(h.Auth.UploadImage))
	mux.Handle("POST /api/auth/forgot-password", strict(http.HandlerFunc(h.Auth.ForgotPassword)))
	mux.Handle("POST /api/auth/reset-password", strict(http.HandlerFunc(h.Auth.ResetPassword)))
	mux.Handle("GET /api/auth/google", strict(http.HandlerFunc(h.Auth.GoogleStart)))
	mux.Handle("GET /api/auth/google/callback", strict(http.HandlerFunc(h.Auth.GoogleCallback)))
	mux.HandleFunc("GET /api/uploads/{key...}", h.Auth.ServeUpload)

	// sentences
	mux.Handle("GET /api/sentences", authed(h.Sentence.ListMine))
	mux.Handle("POST /api/sentences", authed(h.Sentence.Create))
	mux.HandleFunc("GET /api/sentences/community", h.Sentence.Feed)
	mux.HandleFunc("GET /api/sentences/{id}", h.Sentence.Get)
	mux.Handle("PUT /api/sentences/{id}", authed(h.Sentence.Update))
	mux.Handle("DELETE /api/sentences/{id}", authed(h.Sentence.Delete))
	mux.Handle("POST /api/sentences/{id}/like", authed(h.Sentence.ToggleLike))
	mux.Handle("DELETE /api/sentences/{id}/like", authed(h.Sentence.Unlike))

	// communities
	mux.HandleFunc("GET /api/communities/all", h.Community.List)
	mux.Handle("GET /api/communities/my", authed(h.Community.ListMine))
	mux.Handle("POST /api/communities", authed(h.Community.Create))
	mux.HandleFunc("GET /api/communities/{id}", h.Community.Get)
	mux.Handle("PUT /api/communities/{id}", authed(h.Community.Update))
	mux.Handle("DELETE /api/communities/{id}", authed(h.Community.Delete))
	mux.Handle("POST /api/communities/{id}/join", authed(h.Community.Join))
	mux.Handle("POST /api/communities/{id}/leave", authed(h.Community.Leave))
	mux.HandleFunc("GET /api/communities/{id}/members", h.Community.Members)
	mux.Handle("PUT /api/communities/{id}/members/{userId}", authed(h.Community.SetMemberRole))
	mux.HandleFunc("GET /api/communities/{id}/sentences", h.Community.Sentences)
	mux.Handle("POST /api/communities/{id}/sentences", authed(h.Community.AddSentence))
	mux.Handle("DELETE /api/communities/{id}/sentences/{sentenceId}", authed(h.Community.RemoveSentence))

	// books & stats
	mux.HandleFunc("GET /api/books/search", h.Book.Search)
	mux.HandleFunc("GET /api/books/popular", h.Book.Popular)
	mux.Handle("GET /api/stats", authed(h.Book.UserStats))
	mux.HandleFunc("GET /api/stats/books", h.Book.TopBooks)
	mux.HandleFunc("GET /api/stats/authors", h.Book.TopAuthors)

	// export
	mux.Handle("GET /api/export", authed(h.Export.Export))

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	if limits.Global == nil {
		return mux
	}
	return middleware.RateLimit(limits.Global, limits.RetryAfter)(mux)
}
