//go:build e2e

package e2e_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossarch/stratigraphy/internal/domain"
)

func TestE2E_LiveEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	status, body := ts.getJSON(t, "/health/live")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestE2E_HealthEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	status, body := ts.getJSON(t, "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["version"])

	components, ok := body["components"].(map[string]any)
	require.True(t, ok, "expected components object")
	db, ok := components["database"].(map[string]any)
	require.True(t, ok, "expected database component")
	assert.Equal(t, "ok", db["status"])
}

func TestE2E_ResolveNewEntry(t *testing.T) {
	ts := setupTestServer(t)

	status, body := ts.postJSON(t, "/v1/resolve", map[string]any{
		"form":          "fisc",
		"language_code": "ang",
		"source_name":   "wiktionary",
		"definitions":   []string{"fish"},
	})

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "create_new", body["action"])
	assert.Nil(t, body["existing_id"])
}

func TestE2E_ResolveAgainstStoredRecord(t *testing.T) {
	ts := setupTestServer(t)

	rec := domain.NewLSR()
	rec.FormOrthographic = "stān"
	rec.NormalizeForm()
	rec.LanguageCode = "ang"
	rec.DefinitionPrimary = "a stone"
	rec.SourceDatabases = []string{"wiktionary"}
	require.NoError(t, ts.Repo.Create(t.Context(), rec))
	require.NoError(t, ts.Svc.Reload(t.Context()))

	status, body := ts.postJSON(t, "/v1/resolve", map[string]any{
		"form":          "stan",
		"language_code": "ang",
		"source_name":   "wiktionary",
		"definitions":   []string{"a stone"},
	})

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "auto_merge", body["action"])
	assert.Equal(t, rec.ID.String(), body["existing_id"])

	scores, ok := body["feature_scores"].(map[string]any)
	require.True(t, ok, "expected feature_scores")
	assert.Equal(t, 1.0, scores["form_exact"])
}

func TestE2E_ResolveBatch(t *testing.T) {
	ts := setupTestServer(t)

	status, body := ts.postJSON(t, "/v1/resolve/batch", map[string]any{
		"entries": []map[string]any{
			{"form": "hūs", "language_code": "ang"},
			{"form": "steinn", "language_code": "non"},
		},
	})

	assert.Equal(t, http.StatusOK, status)
	results, ok := body["results"].([]any)
	require.True(t, ok, "expected results array")
	assert.Len(t, results, 2)
}

func TestE2E_ResolveValidation(t *testing.T) {
	ts := setupTestServer(t)

	status, body := ts.postJSON(t, "/v1/resolve", map[string]any{
		"language_code": "ang",
	})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body["error"])
}

func TestE2E_GetLSR(t *testing.T) {
	ts := setupTestServer(t)

	rec := domain.NewLSR()
	rec.FormOrthographic = "hūs"
	rec.NormalizeForm()
	rec.LanguageCode = "ang"
	rec.DefinitionPrimary = "house"
	rec.AddAttestation(domain.NewAttestation("to his huse", "Chronicle", nil))
	require.NoError(t, ts.Repo.Create(t.Context(), rec))
	require.NoError(t, ts.Svc.Reload(t.Context()))

	status, body := ts.getJSON(t, "/v1/lsrs/"+rec.ID.String())
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hūs", body["form_orthographic"])
	assert.Equal(t, "hus", body["form_normalized"])

	attestations, ok := body["attestations"].([]any)
	require.True(t, ok, "expected attestations")
	assert.Len(t, attestations, 1)
}

func TestE2E_GetLSRNotFound(t *testing.T) {
	ts := setupTestServer(t)

	status, _ := ts.getJSON(t, "/v1/lsrs/00000000-0000-0000-0000-000000000001")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestE2E_FlagForReview(t *testing.T) {
	ts := setupTestServer(t)

	status, _ := ts.postJSON(t, "/v1/review/flag", map[string]any{
		"entry": map[string]any{
			"form":          "stane",
			"language_code": "ang",
			"source_name":   "clld_clics",
		},
		"decision": map[string]any{
			"action":           "flag_for_review",
			"similarity_score": 0.78,
		},
	})

	assert.Equal(t, http.StatusAccepted, status)
}

func TestE2E_ReloadEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	rec := domain.NewLSR()
	rec.FormOrthographic = "ord"
	rec.NormalizeForm()
	rec.LanguageCode = "ang"
	require.NoError(t, ts.Repo.Create(t.Context(), rec))

	status, body := ts.postJSON(t, "/v1/resolver/reload", nil)
	assert.Equal(t, http.StatusOK, status)

	records, ok := body["records"].(float64)
	require.True(t, ok, "expected records count")
	assert.GreaterOrEqual(t, int(records), 1)
}
