package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/resumatch/analysis-cache/internal/api"
	"github.com/resumatch/analysis-cache/internal/config"
	"github.com/resumatch/analysis-cache/pkg/cache"
	"github.com/resumatch/analysis-cache/pkg/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger("server")
	metrics := observability.NewMetricsClient()

	analysisCache, err := cache.New(cfg.Cache, logger.WithPrefix("cache"), metrics)
	if err != nil {
		log.Fatalf("Invalid cache configuration: %v", err)
	}
	defer func() {
		if err := analysisCache.Close(); err != nil {
			logger.Warn("cache close failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	if !analysisCache.Enabled() {
		// Degraded mode is a supported steady state: the service still
		// answers status queries, everything else no-ops.
		logger.Warn("starting with cache in degraded mode", map[string]interface{}{
			"addr": cfg.Cache.Addr,
		})
	}

	router := api.NewRouter(api.Config{
		BasePath:    cfg.API.BasePath,
		LogRequests: cfg.API.LogRequests,
	}, analysisCache, logger.WithPrefix("api"))

	server := &http.Server{
		Addr:         cfg.API.ListenAddress,
		Handler:      router,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
		IdleTimeout:  cfg.API.IdleTimeout,
	}

	go func() {
		logger.Info("listening", map[string]interface{}{"addr": cfg.API.ListenAddress})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", map[string]interface{}{"error": err.Error()})
	}
}
