// Package main provides the entry point for the recipescape MCP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/raphaelgruber/recipescape-go/internal/cache"
	"github.com/raphaelgruber/recipescape-go/internal/config"
	"github.com/raphaelgruber/recipescape-go/internal/db"
	"github.com/raphaelgruber/recipescape-go/internal/metrics"
	"github.com/raphaelgruber/recipescape-go/internal/server"
	"github.com/raphaelgruber/recipescape-go/internal/service"
	"github.com/raphaelgruber/recipescape-go/internal/tools"
)

const version = "0.1.0"

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger (dual output: stderr text + file JSON)
	logger, cleanup := config.SetupLogger(cfg.LogOptions("mcp"))
	defer cleanup()

	// Log startup info
	logger.Info("recipescape-mcp starting",
		"version", version,
		"surrealdb_url", cfg.SurrealDBURL,
		"cache_ttl", cfg.CacheTTL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	collector := metrics.NewCollector()

	// Connect to database
	dbClient, err := db.NewClient(ctx, cfg.DB(), logger, collector)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		logger.Info("closing database connection")
		_ = dbClient.Close(context.Background())
	}()

	// Initialize database schema
	if err := dbClient.InitSchema(ctx); err != nil {
		logger.Error("failed to initialize database schema", "error", err)
		os.Exit(1)
	}

	recipes := service.NewRecipeService(dbClient, cache.NewLRU(cfg.CacheSize, cfg.CacheTTL), collector, logger)

	// Create and setup server
	srv := server.New(version, logger, collector)
	srv.Setup()

	// Register tools
	tools.RegisterAll(srv.MCPServer(), &tools.Dependencies{
		Recipes: recipes,
		Logger:  logger,
	})

	// Log ready state
	logger.Info("server ready, awaiting connections")

	// Run server (blocks until disconnect or context cancelled)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
