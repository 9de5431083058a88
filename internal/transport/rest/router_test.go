package rest_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluebuchu/collect-sub000/internal/adapter/mailer"
	"github.com/bluebuchu/collect-sub000/internal/adapter/memory"
	"github.com/bluebuchu/collect-sub000/internal/auth"
	"github.com/bluebuchu/collect-sub000/internal/config"
	authsvc "github.com/bluebuchu/collect-sub000/internal/service/auth"
	"github.com/bluebuchu/collect-sub000/internal/service/book"
	"github.com/bluebuchu/collect-sub000/internal/service/community"
	"github.com/bluebuchu/collect-sub000/internal/service/export"
	"github.com/bluebuchu/collect-sub000/internal/service/sentence"
	"github.com/bluebuchu/collect-sub000/internal/transport/dataloader"
	"github.com/bluebuchu/collect-sub000/internal/transport/middleware"
	"github.com/bluebuchu/collect-sub000/internal/transport/rest"
)

type testEnv struct {
	handler http.Handler
	store   *memory.Store
}

func newTestEnv(t *testing.T, limits rest.Limits) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := memory.New()
	jwt := auth.NewJWTManager("test-secret-test-secret-test-secret", "collect-test", time.Hour)
	sessions := auth.NewCookieSessions(auth.SessionOptions{
		Name:   "collect_session",
		Secret: "session-secret-session-secret-32b",
		TTL:    time.Hour,
	})

	authCfg := config.AuthConfig{ResetTokenTTL: time.Hour, PasswordHashCost: 4}
	authService := authsvc.NewService(logger, st, st, jwt, mailer.NewLog("http://localhost:5173", logger), authCfg)

	rs := rest.Responder{Log: logger}
	handlers := rest.Handlers{
		Auth: rest.NewAuthHandler(authService, sessions, rest.AuthOptions{
			FrontendURL:    "http://localhost:5173",
			MaxUploadBytes: 1 << 20,
		}, rs),
		Sentence:  rest.NewSentenceHandler(sentence.NewService(logger, st, st, st), rs),
		Community: rest.NewCommunityHandler(community.NewService(logger, st, st, st), rs),
		Book:      rest.NewBookHandler(book.NewService(logger, st, st, st), rs),
		Export:    rest.NewExportHandler(export.NewService(logger, st, st, config.ExportConfig{Locale: "ko", MaxSentence: 100}), rs),
		Health:    rest.NewHealthHandler(map[string]rest.Pinger{"database": st}, "test"),
	}

	chain := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.Actor(jwt, sessions, st, logger),
		dataloader.Middleware(st),
	)
	return &testEnv{handler: chain(rest.NewRouter(handlers, limits)), store: st}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.RemoteAddr = "192.0.2.1:1234"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

type authBody struct {
	User struct {
		ID       int64  `json:"id"`
		Nickname string `json:"nickname"`
	} `json:"user"`
	Token string `json:"token"`
}

func (e *testEnv) register(t *testing.T, nickname string) authBody {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":    nickname + "@example.com",
		"password": "secret123",
		"nickname": nickname,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out authBody
	decode(t, rec, &out)
	require.NotEmpty(t, out.Token)
	return out
}

func (e *testEnv) createSentence(t *testing.T, token string, body map[string]any) int64 {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/sentences", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &out)
	return out.ID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var out map[string]string
	decode(t, rec, &out)
	return out["error"]
}

func TestAuth_RegisterLoginMe(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, rest.Limits{})

	alice := env.register(t, "alice")
	assert.Equal(t, "alice", alice.User.Nickname)

	rec := env.do(t, http.MethodGet, "/api/auth/me", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	decode(t, rec, &me)
	assert.Equal(t, "alice@example.com", me.User.Email)

	rec = env.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "authentication required", errorMessage(t, rec))

	rec = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid email or password", errorMessage(t, rec))

	rec = env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "alice@example.com", "password": "secret123", "nickname": "alice2",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email already used", errorMessage(t, rec))
}

func TestAuth_SessionCookie(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, rest.Limits{})
	env.register(t, "alice")

	rec := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	me := httptest.NewRecorder()
	env.handler.ServeHTTP(me, req)
	assert.Equal(t, http.StatusOK, me.Code, me.Body.String())
}

func TestAuth_TokenOfDeletedUser(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, rest.Limits{})
	alice := env.register(t, "alice")

	rec := env.do(t, http.MethodGet, "/api/auth/me", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, env.store.DeleteUser(context.Background(), alice.User.ID))

	rec = env.do(t, http.MethodGet, "/api/auth/me", alice.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, rec.Body.String())
	rec = env.do(t, http.MethodPost, "/api/sentences", alice.Token, map[string]any{"content": "ghost"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ValidationMessage(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, rest.Limits{})

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "bob@example.com", "password": "123", "nickname": "bob",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "password: must be at least 6 characters", errorMessage(t, rec))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{not json"))
	bad := httptest.NewRecorder()
	env.handler.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestSentences_VisibilityAndLikes(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, rest.Limits{})
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	private := env.createSentence(t, alice.Token, map[string]any{"content": "kept to myself"})
	public := env.createSentence(t, alice.Token, map[string]any{
		"content": "shared line", "bookTitle": "Demian", "pageNumber": 12, "isPublic": true,
		"privateNote": "only mine",
	})

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/sentences/%d", private), bob.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/sentences/%d", public), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "only mine")

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/sentences/%d", public), alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "only mine")

	rec = env.do(t, http.MethodGet, "/api/sentences/community", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var feed []struct {
		ID       int64  `json:"id"`
		Nickname string `json:"nickname"`
	}
	decode(t, rec, &feed)
	require.Len(t, feed, 1)
	assert.Equal(t, public, feed[0].ID)
	assert.Equal(t, "alice", feed[0].Nickname)

	likePath := fmt.Sprintf("/api/sentences/%d/like", public)
	var like struct {
		IsLiked bool `json:"isLiked"`
		Likes   int  `json:"likes"`
	}
	rec = env.do(t, http.MethodPost, likePath, bob.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &like)
	assert.True(t, like.IsLiked)
	assert.Equal(t, 1, like.Likes)

	rec = env.do(t, http.MethodPost, likePath, bob.Token, nil)
	decode(t, rec, &like)
	assert.False(t, like.IsLiked)
	assert.Equal(t, 0, like.Likes)

	rec = env.do(t, http.MethodDelete, likePath, bob.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &like)
	assert.Equal(t, 0, like.Likes)

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/sentences/%d/like", private), bob.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, likePath, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSentences_UpdateAndDelete(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, rest.Limits{})
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	id := env.createSentence(t, alice.Token, map[string]any{"content": "first", "pageNumber": 7})
	path := fmt.Sprintf("/api/sentences/%d", id)

	rec := env.do(t, http.MethodPut, path, alice.Token, map[string]any{"pageNumber": nil, "content": "second"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		Content    string `json:"content"`
		PageNumber *int   `json:"pageNumber"`
	}
	decode(t, rec, &out)
	assert.Equal(t, "second", out.Content)
	assert.Nil(t, out.PageNumber)

	rec = env.do(t, http.MethodPut, path, bob.Token, map[string]any{"content": "hijack"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, path, alice.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, path, alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/sentences/abc", alice.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommunities_Flow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, rest.Limits{})
	owner := env.register(t, "owner")
	alice := env.register(t, "alice")

	rec := env.do(t, http.MethodPost, "/api/communities", owner.Token, map[string]any{"name": "Readers"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID          int64 `json:"id"`
		MemberCount int   `json:"memberCount"`
		IsPublic    bool  `json:"isPublic"`
	}
	decode(t, rec, &created)
	assert.Equal(t, 1, created.MemberCount)
	assert.True(t, created.IsPublic)
	base := fmt.Sprintf("/api/communities/%d", created.ID)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, base+"/join", alice.Token, nil).Code)
	rec = env.do(t, http.MethodPost, base+"/join", alice.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "already a member", errorMessage(t, rec))

	rec = env.do(t, http.MethodPost, base+"/leave", owner.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "owner cannot leave the community", errorMessage(t, rec))

	sid := env.createSentence(t, alice.Token, map[string]any{"content": "group line", "isPublic": true})
	rec = env.do(t, http.MethodPost, base+"/sentences", alice.Token, map[string]any{"sentenceId": sid})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = env.do(t, http.MethodPost, base+"/sentences", alice.Token, map[string]any{"sentenceId": sid})
	assert.Equal(t, "sentence already in this community", errorMessage(t, rec))

	rec = env.do(t, http.MethodGet, base+"/sentences", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var linked []struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &linked)
	require.Len(t, linked, 1)
	assert.Equal(t, sid, linked[0].ID)

	rec = env.do(t, http.MethodGet, "/api/communities/all?includeTopSentences=true", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []struct {
		ID           int64 `json:"id"`
		MemberCount  int   `json:"memberCount"`
		TopSentences []struct {
			ID int64 `json:"id"`
		} `json:"topSentences"`
	}
	decode(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].MemberCount)
	require.Len(t, list[0].TopSentences, 1)
	assert.Equal(t, sid, list[0].TopSentences[0].ID)

	rec = env.do(t, http.MethodGet, base, alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		MyRole      string `json:"myRole"`
		CreatorName string `json:"creatorName"`
	}
	decode(t, rec, &got)
	assert.Equal(t, "member", got.MyRole)
	assert.Equal(t, "owner", got.CreatorName)

	rec = env.do(t, http.MethodPut, fmt.Sprintf("%s/members/%d", base, alice.User.ID), owner.Token, map[string]string{"role": "admin"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, base+"/members", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"admin"`)

	rec = env.do(t, http.MethodDelete, base, alice.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.do(t, http.MethodDelete, base, owner.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, base, owner.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCommunities_PrivateGate(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, rest.Limits{})
	owner := env.register(t, "owner")
	bob := env.register(t, "bob")

	rec := env.do(t, http.MethodPost, "/api/communities", owner.Token, map[string]any{"name": "Secret", "isPublic": false})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &created)
	base := fmt.Sprintf("/api/communities/%d", created.ID)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, base, bob.Token, nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, base, "", nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, base+"/join", bob.Token, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, base, owner.Token, nil).Code)

	rec = env.do(t, http.MethodGet, "/api/communities/my", owner.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"myRole":"owner"`)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/communities/999", owner.Token, nil).Code)
}

func TestBooksAndStats(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, rest.Limits{})
	alice := env.register(t, "alice")

	env.createSentence(t, alice.Token, map[string]any{"content": "a", "bookTitle": "Demian", "author": "Hesse", "isPublic": true})
	env.createSentence(t, alice.Token, map[string]any{"content": "b", "bookTitle": "Demian", "author": "Hesse"})

	rec := env.do(t, http.MethodGet, "/api/books/search?q=dem", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var books []struct {
		Title         string `json:"title"`
		SentenceCount int    `json:"sentenceCount"`
	}
	decode(t, rec, &books)
	require.Len(t, books, 1)
	assert.Equal(t, "Demian", books[0].Title)
	assert.Equal(t, 2, books[0].SentenceCount)

	rec = env.do(t, http.MethodGet, "/api/books/search?q=", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/stats", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		TotalSentences  int `json:"totalSentences"`
		PublicSentences int `json:"publicSentences"`
		BookCount       int `json:"bookCount"`
	}
	decode(t, rec, &stats)
	assert.Equal(t, 2, stats.TotalSentences)
	assert.Equal(t, 1, stats.PublicSentences)
	assert.Equal(t, 1, stats.BookCount)

	rec = env.do(t, http.MethodGet, "/api/stats/books", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sentenceCount":1`)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/stats", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/books/popular?limit=x", "", nil).Code)
}

func TestExport_CSVAttachment(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, rest.Limits{})
	alice := env.register(t, "alice")
	env.createSentence(t, alice.Token, map[string]any{"content": `say "hi"`, "bookTitle": "Demian"})

	rec := env.do(t, http.MethodGet, "/api/export?format=csv", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `attachment; filename="sentences-`)

	body := strings.TrimPrefix(rec.Body.String(), "\uFEFF")
	rows, err := csv.NewReader(strings.NewReader(body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, `say "hi"`, rows[1][0])

	rec = env.do(t, http.MethodGet, "/api/export?format=pdf", alice.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/export", "", nil).Code)
}

func TestHealthAndUnknownRoute(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, rest.Limits{})

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/ready", "", nil).Code)

	rec := env.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", errorMessage(t, rec))
}

func TestAuthRoutes_RateLimited(t *testing.T) {
	t.Parallel()
	limiter := middleware.NewRateLimiter(2, time.Minute, time.Minute)
	t.Cleanup(limiter.Stop)
	env := newTestEnv(t, rest.Limits{Auth: limiter, RetryAfter: time.Minute})

	creds := map[string]string{"email": "ghost@example.com", "password": "secret123"}
	for range 2 {
		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/auth/login", "", creds).Code)
	}
	rec := env.do(t, http.MethodPost, "/api/auth/login", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Other routes are not throttled by the auth tier.
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/health", "", nil).Code)
}

func TestUploads_Disabled(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, rest.Limits{})
	alice := env.register(t, "alice")

	rec := env.do(t, http.MethodGet, "/api/uploads/profile/1/x.png", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/profile/image", alice.Token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

}
