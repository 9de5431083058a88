//go:build e2e

package e2e_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE2E_HealthEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	var body map[string]any
	ts.doJSON(t, http.MethodGet, "/api/health", "", nil, &body, http.StatusOK)
	assert.Equal(t, "ok", body["status"])
}

// TestE2E_ReadyEndpoint verifies readiness reports the database component.
func TestE2E_ReadyEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	var body struct {
		Status     string `json:"status"`
		Components map[string]struct {
			Status string `json:"status"`
		} `json:"components"`
	}
	ts.doJSON(t, http.MethodGet, "/api/ready", "", nil, &body, http.StatusOK)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.Components["database"].Status)
}

func TestE2E_RequestID_InResponse(t *testing.T) {
	ts := setupTestServer(t)

	resp, err := ts.Client.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	requestID := resp.Header.Get("X-Request-Id")
	require.NotEmpty(t, requestID)
	_, err = uuid.Parse(requestID)
	assert.NoError(t, err, "X-Request-Id should be a valid UUID")
}

func TestE2E_CORS_Preflight(t *testing.T) {
	ts := setupTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/sentences", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Authorization,Content-Type")

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://example.com", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, resp.Header.Get("Access-Control-Allow-Methods"))
}

func TestE2E_UnknownRoute(t *testing.T) {
	ts := setupTestServer(t)

	status, raw := ts.do(t, http.MethodGet, "/api/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	var body map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.NotEmpty(t, body["error"])
}
