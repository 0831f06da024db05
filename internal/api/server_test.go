// internal/api/server_test.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/newthinker/tradevision/internal/analysis"
	"github.com/newthinker/tradevision/internal/core"
	"github.com/newthinker/tradevision/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAnalyzer struct {
	out json.RawMessage
	err error
}

func (s *stubAnalyzer) Analyze(ctx context.Context, req analysis.Request) (json.RawMessage, error) {
	return s.out, s.err
}

func (s *stubAnalyzer) Provider() string { return "gemini" }

func newTestServer(t *testing.T, deps Dependencies) *Server {
	t.Helper()
	srv, err := NewServer(Config{Host: "localhost", Port: 0, MaxBodyBytes: 1 << 20}, deps, zap.NewNop())
	require.NoError(t, err)
	return srv
}

func serve(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, Dependencies{Analyzer: &stubAnalyzer{}})

	w := serve(srv, http.MethodGet, "/api/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","provider":"gemini","configured":true}`, w.Body.String())
}

func TestServer_HealthUnconfigured(t *testing.T) {
	srv := newTestServer(t, Dependencies{})

	w := serve(srv, http.MethodGet, "/api/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","configured":false}`, w.Body.String())
}

func TestServer_Analyze(t *testing.T) {
	srv := newTestServer(t, Dependencies{Analyzer: &stubAnalyzer{out: json.RawMessage(`{"prediction":"PUT"}`)}})

	w := serve(srv, http.MethodPost, "/api/analyze", `{"image":"AAAA"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"prediction":"PUT"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestServer_AnalyzeWithoutCredential(t *testing.T) {
	srv := newTestServer(t, Dependencies{
		SetupErr: core.WrapError(core.ErrConfigMissing, errors.New("GEMINI_API_KEY is not set")),
	})

	w := serve(srv, http.MethodPost, "/api/analyze", `{"image":"AAAA"}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Server configuration error: Missing API Key")
}

func TestServer_AnalyzeMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, Dependencies{Analyzer: &stubAnalyzer{}})

	w := serve(srv, http.MethodGet, "/api/analyze", "")

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServer_IndexAndStatic(t *testing.T) {
	srv := newTestServer(t, Dependencies{Analyzer: &stubAnalyzer{}})

	w := serve(srv, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "AI Trade Vision")

	w = serve(srv, http.MethodGet, "/static/app.css", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_Metrics(t *testing.T) {
	reg := metrics.NewRegistry()
	srv := newTestServer(t, Dependencies{Analyzer: &stubAnalyzer{}, Metrics: reg})

	serve(srv, http.MethodGet, "/api/health", "")
	w := serve(srv, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestServer_NoMetricsWithoutRegistry(t *testing.T) {
	srv := newTestServer(t, Dependencies{})

	w := serve(srv, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_Timeouts(t *testing.T) {
	srv := newTestServer(t, Dependencies{})

	assert.Equal(t, "localhost:0", srv.httpServer.Addr)
	assert.Equal(t, 15*time.Second, srv.httpServer.ReadTimeout)
	assert.Equal(t, 120*time.Second, srv.httpServer.WriteTimeout)
	assert.Equal(t, 60*time.Second, srv.httpServer.IdleTimeout)
}

func TestServer_BadTemplatesDir(t *testing.T) {
	_, err := NewServer(Config{TemplatesDir: t.TempDir()}, Dependencies{}, zap.NewNop())
	assert.Error(t, err)
}
