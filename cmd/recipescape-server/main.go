// Package main provides the HTTP API server for recipescape.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raphaelgruber/recipescape-go/internal/api"
	"github.com/raphaelgruber/recipescape-go/internal/cache"
	"github.com/raphaelgruber/recipescape-go/internal/config"
	"github.com/raphaelgruber/recipescape-go/internal/db"
	"github.com/raphaelgruber/recipescape-go/internal/metrics"
	"github.com/raphaelgruber/recipescape-go/internal/service"
)

const version = "0.1.0"

func main() {
	// Parse flags
	wipeDB := flag.Bool("wipe", false, "wipe all data from database on startup (testing only)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()

	logger, cleanup := config.SetupLogger(cfg.LogOptions("server"))
	defer cleanup()

	logger.Info("starting recipescape-server", "version", version, "port", cfg.ServerPort)

	collector := metrics.NewCollector()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	dbClient, err := db.NewClient(ctx, cfg.DB(), logger, collector)
	if err == nil {
		err = dbClient.InitSchema(ctx)
	}
	cancel()
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(context.Background()); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	// Wipe database if requested (via flag or env var)
	if *wipeDB || os.Getenv("RECIPESCAPE_WIPE_DB") == "true" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := dbClient.WipeData(ctx)
		cancel()
		if err != nil {
			logger.Error("failed to wipe database", "error", err)
			os.Exit(1)
		}
	}

	recipes := service.NewRecipeService(dbClient, cache.NewLRU(cfg.CacheSize, cfg.CacheTTL), collector, logger)
	importer := service.NewImportService(dbClient, logger)
	jobs := service.NewJobManager(cfg.ImportConcurrency, dbClient, logger)

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	resumed, err := jobs.ResumeIncompleteJobs(ctx, importer)
	cancel()
	if err != nil {
		// Not fatal: the jobs stay stored and are retried on the next start.
		logger.Warn("failed to resume incomplete jobs", "error", err)
	} else if len(resumed) > 0 {
		logger.Info("resumed incomplete jobs", "count", len(resumed))
	}

	apiCfg := api.DefaultConfig()
	apiCfg.CORSAllowedOrigins = cfg.CORSOrigins
	apiCfg.RateLimitRequests = cfg.RateLimitPerMin

	handler := api.NewHandler(recipes, importer, jobs, collector, logger)
	handler.SetPinger(dbClient)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      api.NewRouter(handler, apiCfg),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("API available", "url", fmt.Sprintf("http://localhost:%d/api/v1", cfg.ServerPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
