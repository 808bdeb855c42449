package httpops_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/polarorbit/sounder-data-etl/internal/adapter/httpops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSnapshotter struct {
	board map[string]string
}

func (f *fakeSnapshotter) Snapshot() map[string]string { return f.board }

func newServer(snap httpops.Snapshotter) *httpops.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpops.NewServer(":0", snap, logger)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newServer(&fakeSnapshotter{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestStatusEndpoint(t *testing.T) {
	srv := newServer(&fakeSnapshotter{board: map[string]string{
		"cris_nav": "running",
		"iasi_nav": "frontend-fail",
	}})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Groups map[string]string `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "running", got.Groups["cris_nav"])
	assert.Equal(t, "frontend-fail", got.Groups["iasi_nav"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newServer(&fakeSnapshotter{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newServer(&fakeSnapshotter{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
