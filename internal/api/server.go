package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/resumatch/analysis-cache/pkg/cache"
	"github.com/resumatch/analysis-cache/pkg/observability"
)

// Config holds the router settings
type Config struct {
	BasePath    string
	LogRequests bool
}

// NewRouter builds the gin engine serving the operational API
func NewRouter(cfg Config, c *cache.AnalysisCache, logger observability.Logger) *gin.Engine {
	if logger == nil {
		logger = observability.NewLogger("api")
	}
	if cfg.BasePath == "" {
		cfg.BasePath = "/api/v1"
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	if cfg.LogRequests {
		router.Use(RequestLoggingMiddleware(logger))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	base := router.Group(cfg.BasePath)
	NewCacheAPI(c, logger.WithPrefix("api.cache")).RegisterRoutes(base)

	return router
}

// RequestIDMiddleware assigns each request an ID, honoring one supplied by
// the caller in X-Request-ID.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// RequestLoggingMiddleware logs one line per request with latency and status
func RequestLoggingMiddleware(logger observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request", map[string]interface{}{
			"request_id": c.GetString("request_id"),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		})
	}
}
