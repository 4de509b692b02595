package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/raphaelgruber/recipescape-go/internal/api"
	"github.com/raphaelgruber/recipescape-go/internal/service"
	"github.com/spf13/cobra"
)

var (
	importRecursive   bool
	importDryRun      bool
	importConcurrency int
	importRemote      bool
)

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import recipes, annotations and clusterings from YAML/JSON files",
	Long: `Import a dataset file or a directory of dataset files.

Records are upserted by origin_id (recipes, annotations) and by dish and
title (clusterings), so re-running an import is safe.

With --remote the directory is imported by the server as a background job
and progress is shown until it finishes. Press Ctrl+C to stop watching.

Examples:
  recipescape import data/cookies.yaml
  recipescape import data/ --recursive
  recipescape import data/ --dry-run
  recipescape import /srv/datasets --remote`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVarP(&importRecursive, "recursive", "r", false, "descend into subdirectories")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "parse and validate without writing")
	importCmd.Flags().IntVarP(&importConcurrency, "concurrency", "c", 4, "files imported in parallel")
	importCmd.Flags().BoolVar(&importRemote, "remote", false, "run the import on the server as a background job")
}

func runImport(cmd *cobra.Command, args []string) error {
	if importRemote {
		return runRemoteImport(cmd, args[0])
	}

	ctx := cmd.Context()
	imp, err := getImporter(ctx)
	if err != nil {
		return err
	}

	result, err := imp.ImportPath(ctx, args[0], service.ImportOptions{
		Recursive:   importRecursive,
		DryRun:      importDryRun,
		Concurrency: importConcurrency,
	})
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, result)
	}
	renderResult(out, result, importDryRun)
	return nil
}

func runRemoteImport(cmd *cobra.Command, path string) error {
	// The server resolves the path itself.
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	c := newClient()
	job, err := c.StartImport(cmd.Context(), api.ImportRequest{
		Path:      abs,
		Recursive: importRecursive,
		DryRun:    importDryRun,
	})
	if err != nil {
		return fmt.Errorf("start import: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, job)
	}
	fmt.Fprintf(out, "Started job %s (%d files)\n", job.ID, job.Total)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	final, err := followJob(ctx, out, c.GetJob, job, pollInterval)
	if err != nil {
		return fmt.Errorf("job %s failed: %w", job.ID, err)
	}
	if final.Result != nil {
		renderResult(out, final.Result, importDryRun)
	}
	return nil
}
