package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"repograph/internal/core/app"
	"repograph/internal/core/config"
	domainerrors "repograph/internal/core/errors"
	"repograph/internal/data/history"
	"repograph/internal/engine/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	files   map[string]string
	order   []string
	listErr error
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) ListFiles(ctx context.Context, owner, repo string) ([]graph.FileEntry, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	entries := make([]graph.FileEntry, 0, len(s.order))
	for _, p := range s.order {
		entries = append(entries, graph.FileEntry{Path: p, Kind: graph.KindFile, Size: int64(len(s.files[p]))})
	}
	return entries, nil
}

func (s *stubSource) GetContent(ctx context.Context, owner, repo, path string) (string, error) {
	return s.files[path], nil
}

func (s *stubSource) ListLanguages(ctx context.Context, owner, repo string) (map[string]int64, error) {
	return map[string]int64{"TypeScript": 64}, nil
}

func cycleSource() *stubSource {
	return &stubSource{
		files: map[string]string{
			"src/a.ts": `import { b } from "./b";`,
			"src/b.ts": `import { a } from "./a";`,
		},
		order: []string{"src/a.ts", "src/b.ts"},
	}
}

func newTestServer(t *testing.T, src *stubSource, mutate ...func(*config.Config)) (*Server, *app.Analyzer) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Server.RatePerSecond = 1000
	cfg.Server.Burst = 1000
	for _, fn := range mutate {
		fn(cfg)
	}
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	analyzer := app.NewAnalyzer(src, cfg, app.WithHistory(store))
	srv := New(analyzer, cfg.Server, "test")
	t.Cleanup(srv.Close)
	return srv, analyzer
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = "192.0.2.1:40000"
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestAnalyze_ReturnsReport(t *testing.T) {
	srv, _ := newTestServer(t, cycleSource())

	rec := get(t, srv, "/api/analyze?repo=acme/web")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var rep app.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, "acme/web", rep.Repo)
	assert.Equal(t, 1, rep.Summary.CircularDeps)
	assert.Equal(t, 2, rep.Edges)
}

func TestAnalyze_RepoValidation(t *testing.T) {
	srv, _ := newTestServer(t, cycleSource())

	rec := get(t, srv, "/api/analyze")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgMissingRepo, decodeError(t, rec))

	rec = get(t, srv, "/api/analyze?repo=acme")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgInvalidRepo, decodeError(t, rec))

	rec = get(t, srv, "/api/analyze?repo=a/b/c")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_ErrorMapping(t *testing.T) {
	src := cycleSource()
	src.listErr = domainerrors.New(domainerrors.CodeNotFound, "repository tree not found")
	srv, _ := newTestServer(t, src)

	rec := get(t, srv, "/api/analyze?repo=acme/gone")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "repository tree not found", decodeError(t, rec))

	src.listErr = domainerrors.New(domainerrors.CodeUpstream, "upstream circuit open")
	rec = get(t, srv, "/api/analyze?repo=acme/web")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGraph_RendersFormats(t *testing.T) {
	srv, _ := newTestServer(t, cycleSource())

	rec := get(t, srv, "/api/graph?repo=acme/web&format=dot")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/vnd.graphviz; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "digraph")
	assert.Contains(t, rec.Body.String(), "CYCLE")

	rec = get(t, srv, "/api/graph?repo=acme/web&format=tsv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Source\tTarget\tInCycle"))

	rec = get(t, srv, "/api/graph?repo=acme/web&format=svg")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistory_ListsSavedSnapshots(t *testing.T) {
	srv, _ := newTestServer(t, cycleSource())

	rec := get(t, srv, "/api/history?repo=acme/web")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	require.Equal(t, http.StatusOK, get(t, srv, "/api/analyze?repo=acme/web").Code)

	rec = get(t, srv, "/api/history?repo=acme/web&since=1h")
	require.Equal(t, http.StatusOK, rec.Code)
	var snapshots []history.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshots))
	require.Len(t, snapshots, 1)
	assert.Equal(t, "acme/web", snapshots[0].Repo)
	assert.Equal(t, 1, snapshots[0].CycleCount)

	rec = get(t, srv, "/api/history?repo=acme/web&since=yesterday")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimit_RejectsBurstOverflow(t *testing.T) {
	srv, _ := newTestServer(t, cycleSource(), func(cfg *config.Config) {
		cfg.Server.RatePerSecond = 0.01
		cfg.Server.Burst = 1
	})

	assert.Equal(t, http.StatusOK, get(t, srv, "/api/analyze?repo=acme/web").Code)
	rec := get(t, srv, "/api/analyze?repo=acme/web")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, get(t, srv, "/health").Code)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, cycleSource())

	rec := get(t, srv, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var status app.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "up", status.Status)
	assert.Equal(t, "ok (stub)", status.Components["source"])
	assert.Equal(t, "ok", status.Components["history"])
}

func TestHealth_DegradedIs503(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.History.Enabled = true
	srv := New(app.NewAnalyzer(cycleSource(), cfg), cfg.Server, "test")
	defer srv.Close()

	rec := get(t, srv, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, cycleSource())
	get(t, srv, "/health")

	rec := get(t, srv, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "repograph_http_requests_total")
}

func TestParseSince(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	got, err := parseSince("", now)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	got, err = parseSince("24h", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-24*time.Hour), got)

	got, err = parseSince("2024-04-01T00:00:00Z", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.Address = "127.0.0.1:0"
	srv := New(app.NewAnalyzer(cycleSource(), cfg), cfg.Server, "test")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
