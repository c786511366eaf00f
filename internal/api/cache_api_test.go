package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resumatch/analysis-cache/pkg/cache"
	"github.com/resumatch/analysis-cache/pkg/observability"
)

func setupTestServer(t *testing.T) (*gin.Engine, *cache.AnalysisCache, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)

	cfg := cache.DefaultConfig()
	cfg.Addr = mr.Addr()

	c, err := cache.New(cfg, observability.NewNoopLogger(), observability.NewNoopMetricsClient())
	require.NoError(t, err)

	router := NewRouter(Config{BasePath: "/api/v1"}, c, observability.NewNoopLogger())

	cleanup := func() {
		_ = c.Close()
		mr.Close()
	}
	return router, c, cleanup
}

func doRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestGetStatus(t *testing.T) {
	router, c, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	c.Set(ctx, "alice", "resume one", "", "", cache.Result{"v": 1.0})
	c.Set(ctx, "alice", "resume two", "", "", cache.Result{"v": 2.0})
	c.Set(ctx, "bob", "resume three", "", "", cache.Result{"v": 3.0})

	w := doRequest(router, http.MethodGet, "/api/v1/cache/status")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["cache_enabled"])
	assert.Equal(t, float64(3), body["total_cached_analyses"])
	assert.Equal(t, float64(2), body["owners_with_cached_data"])

	perOwner, ok := body["per_owner_counts"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), perOwner["alice"])
	assert.Equal(t, float64(1), perOwner["bob"])
}

func TestClearOwner(t *testing.T) {
	router, c, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	c.Set(ctx, "alice", "resume one", "", "", cache.Result{"v": 1.0})
	c.Set(ctx, "alice", "resume two", "", "", cache.Result{"v": 2.0})
	c.Set(ctx, "bob", "resume three", "", "", cache.Result{"v": 3.0})

	w := doRequest(router, http.MethodDelete, "/api/v1/cache/owners/alice")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "alice", body["owner_id"])
	assert.Equal(t, float64(2), body["analyses_cleared"])

	// bob's entries survive
	_, ok := c.Get(ctx, "bob", "resume three", "", "")
	assert.True(t, ok)

	// Clearing again is idempotent
	w = doRequest(router, http.MethodDelete, "/api/v1/cache/owners/alice")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(0), body["analyses_cleared"])
}

func TestStatusWithDisabledCache(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	cfg := cache.DefaultConfig()
	cfg.Addr = addr
	cfg.DialTimeout = 200 * time.Millisecond

	c, err := cache.New(cfg, observability.NewNoopLogger(), nil)
	require.NoError(t, err)
	router := NewRouter(Config{}, c, observability.NewNoopLogger())

	w := doRequest(router, http.MethodGet, "/api/v1/cache/status")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["cache_enabled"])
	assert.NotContains(t, body, "total_cached_analyses")

	w = doRequest(router, http.MethodDelete, "/api/v1/cache/owners/alice")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "cache is not enabled", body["message"])
}

func TestRequestIDPropagation(t *testing.T) {
	router, _, cleanup := setupTestServer(t)
	defer cleanup()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	router.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	w = doRequest(router, http.MethodGet, "/health")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
