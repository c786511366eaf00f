// Package api exposes the operational HTTP surface of the analysis cache:
// a monitoring-safe status query and an owner-scoped clear operation.
package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resumatch/analysis-cache/pkg/cache"
	"github.com/resumatch/analysis-cache/pkg/observability"
)

// CacheAPI handles the cache diagnostics endpoints
type CacheAPI struct {
	cache  *cache.AnalysisCache
	logger observability.Logger
}

// NewCacheAPI creates a new CacheAPI backed by the given cache handle
func NewCacheAPI(c *cache.AnalysisCache, logger observability.Logger) *CacheAPI {
	if logger == nil {
		logger = observability.NewLogger("api.cache")
	}
	return &CacheAPI{cache: c, logger: logger}
}

// RegisterRoutes registers cache endpoints under /cache
func (a *CacheAPI) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/cache")
	group.GET("/status", a.getStatus)
	group.DELETE("/owners/:owner_id", a.clearOwner)
}

// getStatus reports whether the cache is enabled plus aggregate entry counts.
// Safe for public monitoring: it exposes counts, never cached content.
func (a *CacheAPI) getStatus(c *gin.Context) {
	status := a.cache.Status(c.Request.Context())

	body := gin.H{
		"cache_enabled": status.Enabled,
	}
	if status.Enabled {
		body["total_cached_analyses"] = status.TotalEntries
		body["owners_with_cached_data"] = status.DistinctOwners
		body["per_owner_counts"] = status.PerOwner
		body["hits"] = status.Hits
		body["misses"] = status.Misses
	}
	if status.Err != "" {
		body["error"] = status.Err
	}

	c.JSON(http.StatusOK, body)
}

// clearOwner removes every cached analysis belonging to one owner
func (a *CacheAPI) clearOwner(c *gin.Context) {
	ownerID := c.Param("owner_id")
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing owner id"})
		return
	}

	if !a.cache.Enabled() {
		c.JSON(http.StatusOK, gin.H{
			"message":  "cache is not enabled",
			"owner_id": ownerID,
		})
		return
	}

	removed := a.cache.InvalidateOwner(c.Request.Context(), ownerID)

	a.logger.Info("owner cache cleared", map[string]interface{}{
		"owner_id": ownerID,
		"removed":  removed,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":          fmt.Sprintf("cache cleared, %d analyses removed", removed),
		"owner_id":         ownerID,
		"analyses_cleared": removed,
	})
}
