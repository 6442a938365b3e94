package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestProxyRewritesPathAndAddsQuery(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trending/all/day", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"page": 2, "results": []}`))
	}))
	defer upstream.Close()

	proxy, err := NewProxyHandler(ProxyConfig{
		Prefix:   "/api/tmdb",
		Upstream: upstream.URL,
		Timeout:  5 * time.Second,
		Query:    map[string]string{"api_key": "secret"},
	}, testLogger())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/tmdb/trending/all/day?page=2", nil)
	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"page": 2, "results": []}`, rec.Body.String())
}

func TestProxyPassesUpstreamStatusThrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer upstream.Close()

	proxy, err := NewProxyHandler(ProxyConfig{
		Prefix:   "/api/archive",
		Upstream: upstream.URL,
		Timeout:  5 * time.Second,
	}, testLogger())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/archive/details/some-item", nil)
	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, req)

	// A responding upstream is passed through verbatim, errors included
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProxyTranslatesUpstreamFailure(t *testing.T) {
	// Point at a closed server so the request itself fails
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	proxy, err := NewProxyHandler(ProxyConfig{
		Prefix:   "/api/tmdb",
		Upstream: upstream.URL,
		Timeout:  time.Second,
	}, testLogger())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/tmdb/search/multi", nil)
	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
	assert.NotEmpty(t, body["message"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestHealthEndpoint(t *testing.T) {
	handler := NewHealthHandler(testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, Version, body["version"])
	assert.NotEmpty(t, body["timestamp"])

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
