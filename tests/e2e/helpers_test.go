//go:build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glossarch/stratigraphy/internal/adapter/postgres/lsr"
	"github.com/glossarch/stratigraphy/internal/adapter/postgres/testhelper"
	"github.com/glossarch/stratigraphy/internal/config"
	"github.com/glossarch/stratigraphy/internal/resolver"
	"github.com/glossarch/stratigraphy/internal/service/resolution"
	"github.com/glossarch/stratigraphy/internal/transport/rest"
)

// testServer wires the full HTTP stack against a containerized database.
type testServer struct {
	*httptest.Server
	Repo *lsr.Repo
	Svc  *resolution.Service
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)
	repo := lsr.New(pool)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	svc := resolution.New(logger, repo, resolver.DefaultConfig())
	require.NoError(t, svc.Reload(t.Context()))

	router := rest.NewRouter(rest.RouterDeps{
		Log:      logger,
		Resolver: svc,
		LSRs:     svc,
		DB:       pool,
		CORS:     config.CORSConfig{AllowedOrigins: "*", AllowedMethods: "GET,POST,OPTIONS"},
		Version:  "e2e",
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, Repo: repo, Svc: svc}
}

// postJSON sends a JSON body and decodes the JSON response.
func (ts *testServer) postJSON(t *testing.T, path string, body any) (int, map[string]any) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := ts.Client().Post(ts.URL+path, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	return resp.StatusCode, decodeBody(t, resp.Body)
}

func (ts *testServer) getJSON(t *testing.T, path string) (int, map[string]any) {
	t.Helper()

	resp, err := ts.Client().Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	return resp.StatusCode, decodeBody(t, resp.Body)
}

func decodeBody(t *testing.T, r io.Reader) map[string]any {
	t.Helper()

	raw, err := io.ReadAll(r)
	require.NoError(t, err)
	if len(raw) == 0 {
		return nil
	}

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), "body: %s", raw)
	return body
}
