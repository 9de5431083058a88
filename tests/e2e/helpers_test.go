//go:build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/bluebuchu/collect-sub000/internal/adapter/postgres/pgstore"
	"github.com/bluebuchu/collect-sub000/internal/adapter/postgres/testhelper"
	"github.com/bluebuchu/collect-sub000/internal/app"
	"github.com/bluebuchu/collect-sub000/internal/config"
)

// testServer wraps the full-stack HTTP server for E2E tests.
type testServer struct {
	URL    string
	Client *http.Client
	Pool   *pgxpool.Pool
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Name: "collect-e2e", Env: config.EnvDevelopment},
		Storage: config.StorageConfig{Backend: config.BackendPostgres},
		Auth: config.AuthConfig{
			JWTSecret:        "test-secret-at-least-32-chars-long!!",
			JWTIssuer:        "test-issuer",
			TokenTTL:         15 * time.Minute,
			SessionSecret:    "session-secret-at-least-32-chars!!",
			SessionName:      "collect_session",
			SessionTTL:       time.Hour,
			SessionStore:     config.SessionStoreCookie,
			ResetTokenTTL:    time.Hour,
			PasswordHashCost: 4,
			FrontendURL:      "http://localhost:5173",
		},
		Export: config.ExportConfig{Locale: "ko", MaxSentence: 1000},
		CORS: config.CORSConfig{
			AllowedOrigins: "https://example.com",
			AllowedMethods: "GET,POST,PUT,DELETE,OPTIONS",
			AllowedHeaders: "Authorization,Content-Type",
		},
	}
}

// setupTestServer bootstraps the full application stack backed by
// a real PostgreSQL container (shared via testhelper).
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)
	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, nil))
	cfg := testConfig()
	st := pgstore.New(pool)

	svcs, err := app.NewServices(context.Background(), cfg, logger, st)
	require.NoError(t, err)

	handler, stop, err := app.NewHandler(cfg, logger, st, svcs, nil)
	require.NoError(t, err)
	t.Cleanup(stop)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{URL: srv.URL, Client: srv.Client(), Pool: pool}
}

// do sends a JSON request and returns the status and raw body.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

// doJSON is do plus decoding of a successful response into dst.
func (ts *testServer) doJSON(t *testing.T, method, path, token string, body, dst any, want int) {
	t.Helper()
	status, raw := ts.do(t, method, path, token, body)
	require.Equal(t, want, status, string(raw))
	if dst != nil {
		require.NoError(t, json.Unmarshal(raw, dst), string(raw))
	}
}

type testUser struct {
	ID       int64
	Email    string
	Nickname string
	Token    string
}

// registerUser creates an account with a unique email and nickname.
func registerUser(t *testing.T, ts *testServer, prefix string) testUser {
	t.Helper()

	suffix := strings.ReplaceAll(uuid.New().String()[:8], "-", "")
	u := testUser{
		Email:    prefix + "-" + suffix + "@example.com",
		Nickname: prefix + suffix,
	}

	var out struct {
		User struct {
			ID int64 `json:"id"`
		} `json:"user"`
		Token string `json:"token"`
	}
	ts.doJSON(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":    u.Email,
		"password": "secret123",
		"nickname": u.Nickname,
	}, &out, http.StatusOK)
	require.NotEmpty(t, out.Token)

	u.ID = out.User.ID
	u.Token = out.Token
	return u
}

func createSentence(t *testing.T, ts *testServer, token string, body map[string]any) int64 {
	t.Helper()
	var out struct {
		ID int64 `json:"id"`
	}
	ts.doJSON(t, http.MethodPost, "/api/sentences", token, body, &out, http.StatusCreated)
	require.Positive(t, out.ID)
	return out.ID
}

func errorMessage(t *testing.T, raw []byte) string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out["error"]
}
