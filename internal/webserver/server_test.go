package webserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steelyard-dev/steelyard/internal/history"
	"github.com/steelyard-dev/steelyard/internal/models"
)

const starterPolicy = `name: starter
weights:
  deficiency: 1.0
tie_break:
  - focus
  - recovery
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	policyPath := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(policyPath, []byte(starterPolicy), 0o644))

	h, err := history.Open(history.DefaultConfig(filepath.Join(dir, "history.db")))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })

	srv, err := New(Config{
		PolicyPath: policyPath,
		History:    h,
	})
	require.NoError(t, err)
	return srv
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestServer(t).Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	err := json.Unmarshal(rec.Body.Bytes(), &body)
	require.NoError(t, err)
	assert.Equal(t, "ok", body["status"])
}

func TestEvaluateAndHistoryFlow(t *testing.T) {
	handler := newTestServer(t).Handler()

	body := `{"facts": {"name": "morning", "values": {"focus": 0.2, "recovery": 0.8}}}`
	req := httptest.NewRequest(http.MethodPost, "/api/evaluate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var decision models.Decision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decision))
	assert.Equal(t, "focus", decision.Best)
	assert.Equal(t, "starter", decision.PolicyName)
	assert.NotEmpty(t, decision.ID)
	assert.False(t, decision.EvaluatedAt.IsZero())

	// The decision is now listed.
	req = httptest.NewRequest(http.MethodGet, "/api/decisions", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var summaries []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, decision.ID, summaries[0]["id"])
	assert.Equal(t, "focus", summaries[0]["best"])

	// And fetchable with full diagnostics.
	req = httptest.NewRequest(http.MethodGet, "/api/decisions/"+decision.ID, nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var stored models.Decision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
	assert.Equal(t, decision.Best, stored.Best)
	assert.InDelta(t, 0.8, stored.Scores["focus"], 1e-9)
}

func TestPolicyEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/policy", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Source string         `json:"source"`
		Policy map[string]any `json:"policy"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, srv.cfg.PolicyPath, resp.Source)
	assert.Equal(t, "starter", resp.Policy["name"])
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestServer(t).Handler()

	body := `{"facts": {"values": {"focus": 0.5}}}`
	req := httptest.NewRequest(http.MethodPost, "/api/evaluate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "steelyard_evaluations_total")
	assert.Contains(t, rec.Body.String(), "steelyard_history_decisions 1")
}

func TestReloadPolicySwapsRevision(t *testing.T) {
	srv := newTestServer(t)

	revised := strings.Replace(starterPolicy, "name: starter", "name: revised", 1)
	require.NoError(t, os.WriteFile(srv.cfg.PolicyPath, []byte(revised), 0o644))

	srv.reloadPolicy()

	_, raw := srv.PolicyDocument()
	assert.Equal(t, "revised", raw["name"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), "steelyard_policy_reloads_total 1")
}

func TestReloadPolicyKeepsRevisionOnError(t *testing.T) {
	srv := newTestServer(t)

	require.NoError(t, os.Remove(srv.cfg.PolicyPath))
	srv.reloadPolicy()

	_, raw := srv.PolicyDocument()
	assert.Equal(t, "starter", raw["name"])
}

func TestNewRequiresHistory(t *testing.T) {
	dir := t.TempDir()
	policyPath := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(policyPath, []byte(starterPolicy), 0o644))

	_, err := New(Config{PolicyPath: policyPath})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history")
}

func TestNewRejectsMissingPolicy(t *testing.T) {
	dir := t.TempDir()
	h, err := history.Open(history.DefaultConfig(filepath.Join(dir, "history.db")))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })

	_, err = New(Config{
		PolicyPath: filepath.Join(dir, "missing.yaml"),
		History:    h,
	})
	require.Error(t, err)
}
