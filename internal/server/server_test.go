package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopper-agents/internal/common/config"
	"shopper-agents/internal/common/logger"
	"shopper-agents/internal/models"
)

type stubExecutor struct {
	response   *models.SearchResponse
	err        error
	lastReq    *models.SearchRequest
	lastRegion string
}

func (s *stubExecutor) Execute(_ context.Context, req *models.SearchRequest, region string) (*models.SearchResponse, error) {
	s.lastReq = req
	s.lastRegion = region
	return s.response, s.err
}

type stubResolver struct {
	region string
	lastIP string
}

func (s *stubResolver) Resolve(_ context.Context, ip string) string {
	s.lastIP = ip
	return s.region
}

func newTestServer(exec *stubExecutor, resolver *stubResolver) *httptest.Server {
	srv := New(config.ServerConfig{Address: ":0"}, exec, resolver, logger.NewNoOpLogger())
	return httptest.NewServer(srv.Routes())
}

func postSearch(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	encoded, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url+"/api/search", "application/json", bytes.NewReader(encoded))
	require.NoError(t, err)
	return resp
}

func TestHandleSearch(t *testing.T) {
	exec := &stubExecutor{response: &models.SearchResponse{
		RequestID: "req-1",
		Action:    models.ActionSearch,
		Products:  []models.RankedProduct{},
		Region:    "IN",
	}}
	ts := newTestServer(exec, &stubResolver{region: "IN"})
	defer ts.Close()

	resp := postSearch(t, ts.URL, map[string]string{"query": "earbuds under 3000"})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var payload models.SearchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "req-1", payload.RequestID)

	require.NotNil(t, exec.lastReq)
	assert.Equal(t, "earbuds under 3000", exec.lastReq.Query)
	assert.Equal(t, "IN", exec.lastRegion)
}

func TestHandleSearch_RegionOverrideSkipsResolver(t *testing.T) {
	exec := &stubExecutor{response: &models.SearchResponse{Region: "US"}}
	resolver := &stubResolver{region: "IN"}
	ts := newTestServer(exec, resolver)
	defer ts.Close()

	resp := postSearch(t, ts.URL, map[string]string{"query": "headphones", "regionOverride": "US"})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "US", exec.lastRegion)
	assert.Empty(t, resolver.lastIP)
}

func TestHandleSearch_EmptyQuery(t *testing.T) {
	ts := newTestServer(&stubExecutor{}, &stubResolver{region: "IN"})
	defer ts.Close()

	resp := postSearch(t, ts.URL, map[string]string{"query": "   "})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleSearch_InvalidBody(t *testing.T) {
	ts := newTestServer(&stubExecutor{}, &stubResolver{region: "IN"})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/search", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleSearch_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(&stubExecutor{}, &stubResolver{region: "IN"})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/search")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHandleSearch_PipelineError(t *testing.T) {
	exec := &stubExecutor{err: errors.New("construction failed")}
	ts := newTestServer(exec, &stubResolver{region: "IN"})
	defer ts.Close()

	resp := postSearch(t, ts.URL, map[string]string{"query": "earbuds"})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(&stubExecutor{}, &stubResolver{region: "IN"})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "healthy", payload["status"])
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "203.0.113.9"}, "10.0.0.2:1234", "203.0.113.9"},
		{"remote addr", nil, "198.51.100.4:5678", "198.51.100.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/search", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, clientIP(r))
		})
	}
}
