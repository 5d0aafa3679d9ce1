package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophcheck/internal/common"
	"github.com/dmitrijs2005/gophcheck/internal/logging"
	"github.com/dmitrijs2005/gophcheck/internal/server/artifacts"
	"github.com/dmitrijs2005/gophcheck/internal/server/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArtifacts struct {
	snap *artifacts.Snapshot
	err  error
}

func (f *fakeArtifacts) Current() (*artifacts.Snapshot, error) {
	return f.snap, f.err
}

type fakeSummary struct {
	counts map[string]int64
	err    error
}

func (f *fakeSummary) Summary(context.Context) (map[string]int64, error) {
	return f.counts, f.err
}

var loaded = &artifacts.Snapshot{
	Data:     []byte(`{"encrypted":true,"records":["a","b"]}`),
	Records:  2,
	ETag:     `"abc"`,
	LoadedAt: time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC),
}

func newRouter(as ArtifactSource, es EventSummary) http.Handler {
	return New(as, es, metrics.New(), logging.Discard()).Router()
}

func do(t *testing.T, h http.Handler, path string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestArtifact(t *testing.T) {
	h := newRouter(&fakeArtifacts{snap: loaded}, nil)

	rec := do(t, h, "/barcodes.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, loaded.Data, rec.Body.Bytes())
	assert.Equal(t, `"abc"`, rec.Header().Get("ETag"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = do(t, h, "/barcodes.json", map[string]string{"If-None-Match": `"abc"`})
	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestArtifact_NotLoaded(t *testing.T) {
	h := newRouter(&fakeArtifacts{err: common.ErrDatabaseNotLoaded}, nil)

	rec := do(t, h, "/barcodes.json", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(t, h, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealth(t *testing.T) {
	h := newRouter(&fakeArtifacts{snap: loaded}, nil)

	rec := do(t, h, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, 2, got.Records)
	assert.True(t, loaded.LoadedAt.Equal(got.LoadedAt))
}

func TestMetrics_CountsFetches(t *testing.T) {
	h := newRouter(&fakeArtifacts{snap: loaded}, nil)

	do(t, h, "/barcodes.json", nil)
	rec := do(t, h, "/metrics", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `gophcheck_artifact_fetches_total{transport="http"} 1`)
}

func TestStats(t *testing.T) {
	h := newRouter(&fakeArtifacts{snap: loaded}, &fakeSummary{counts: map[string]int64{"genuine": 4}})

	rec := do(t, h, "/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"genuine":4}`, rec.Body.String())

	h = newRouter(&fakeArtifacts{snap: loaded}, &fakeSummary{err: errors.New("db down")})
	rec = do(t, h, "/stats", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStats_NotRoutedWithoutAnalytics(t *testing.T) {
	h := newRouter(&fakeArtifacts{snap: loaded}, nil)

	rec := do(t, h, "/stats", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ServeAndShutdown(t *testing.T) {
	h := newRouter(&fakeArtifacts{snap: loaded}, nil)
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := NewServer(lis.Addr().String(), h, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	resp, err := http.Get("http://" + lis.Addr().String() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `"records":2`))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_RunBadAddress(t *testing.T) {
	srv := NewServer("127.0.0.1:99999", http.NotFoundHandler(), logging.Discard())
	require.Error(t, srv.Run(context.Background()))
}
