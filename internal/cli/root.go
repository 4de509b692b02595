// Package cli provides the command-line interface for recipescape.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/raphaelgruber/recipescape-go/internal/api"
	"github.com/raphaelgruber/recipescape-go/internal/cache"
	"github.com/raphaelgruber/recipescape-go/internal/client"
	"github.com/raphaelgruber/recipescape-go/internal/config"
	"github.com/raphaelgruber/recipescape-go/internal/db"
	"github.com/raphaelgruber/recipescape-go/internal/metrics"
	"github.com/raphaelgruber/recipescape-go/internal/service"
	"github.com/spf13/cobra"
)

// pathImporter imports a dataset file or directory in-process.
type pathImporter interface {
	ImportPath(ctx context.Context, path string, opts service.ImportOptions) (*service.ImportResult, error)
}

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose   bool
	jsonOut   bool
	serverURL string

	// Global config and logging
	cfg     config.Config
	logger  = slog.Default()
	cleanup = func() error { return nil }

	// Lazy-initialized backends
	dbClient  *db.Client
	collector *metrics.Collector
	recipes   api.Recipes
	importer  pathImporter
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "recipescape",
	Short: "Explore recipe workflows by cluster",
	Long: `Recipescape turns annotated recipes into workflow trees and compares
clusters of recipes by their most frequent actions and ingredients.

Query commands read SurrealDB directly. Job and stats commands talk to a
running recipescape-server (see --server).`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()

		opts := cfg.LogOptions("cli")
		opts.Level = slog.LevelWarn
		if verbose {
			opts.Level = slog.LevelDebug
		}
		logger, cleanup = config.SetupLogger(opts)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbClient != nil {
			if err := dbClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
			dbClient = nil
		}
		_ = cleanup()
	},
}

// connect opens the database and builds the services on first use.
func connect(ctx context.Context) error {
	if recipes != nil && importer != nil {
		return nil
	}

	collector = metrics.NewCollector()
	var err error
	dbClient, err = db.NewClient(ctx, cfg.DB(), logger, collector)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if err := dbClient.InitSchema(ctx); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}

	lru := cache.NewLRU(cfg.CacheSize, cfg.CacheTTL)
	if recipes == nil {
		recipes = service.NewRecipeService(dbClient, lru, collector, logger)
	}
	if importer == nil {
		importer = service.NewImportService(dbClient, logger)
	}
	return nil
}

// getRecipes returns the recipe query service, connecting if needed.
func getRecipes(ctx context.Context) (api.Recipes, error) {
	if recipes != nil {
		return recipes, nil
	}
	if err := connect(ctx); err != nil {
		return nil, err
	}
	return recipes, nil
}

func getImporter(ctx context.Context) (pathImporter, error) {
	if importer != nil {
		return importer, nil
	}
	if err := connect(ctx); err != nil {
		return nil, err
	}
	return importer, nil
}

func newClient() *client.Client {
	return client.New(serverURL)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print JSON instead of text")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "recipescape-server URL (default $RECIPESCAPE_SERVER_URL or http://localhost:8484)")

	// Add subcommands
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(dishesCmd)
	rootCmd.AddCommand(recipesCmd)
	rootCmd.AddCommand(recipeCmd)
	rootCmd.AddCommand(clustersCmd)
	rootCmd.AddCommand(treesCmd)
	rootCmd.AddCommand(nodesCmd)
	rootCmd.AddCommand(histogramCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(statsCmd)
}
