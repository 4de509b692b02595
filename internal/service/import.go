package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/raphaelgruber/recipescape-go/internal/models"
	"github.com/raphaelgruber/recipescape-go/internal/parser"
)

// ImportStore persists dataset content. *db.Client implements it.
type ImportStore interface {
	QueryUpsertRecipe(ctx context.Context, r models.Recipe) error
	QueryUpsertAnnotation(ctx context.Context, a models.Annotation) error
	QueryUpsertClustering(ctx context.Context, c models.Clustering) error
}

// ImportService loads dataset files into storage.
type ImportService struct {
	store  ImportStore
	logger *slog.Logger
}

// NewImportService creates a new import service.
func NewImportService(store ImportStore, logger *slog.Logger) *ImportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportService{store: store, logger: logger}
}

// ImportOptions configures dataset import.
type ImportOptions struct {
	// Recursive processes subdirectories
	Recursive bool
	// DryRun decodes and validates without writing
	DryRun bool
	// Concurrency sets number of parallel workers (default 4)
	Concurrency int
}

// ImportResult summarizes an import operation.
type ImportResult struct {
	FilesProcessed      int      `json:"files_processed"`
	RecipesImported     int      `json:"recipes_imported"`
	AnnotationsImported int      `json:"annotations_imported"`
	ClusteringsImported int      `json:"clusterings_imported"`
	Errors              []string `json:"errors,omitempty"`
}

// ImportFile imports a single dataset file. Recipes are written before
// annotations, which reference them.
func (s *ImportService) ImportFile(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error) {
	ds, err := parser.ParseDatasetFile(path)
	if err != nil {
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dataset: %w", err)
	}

	annotations := ds.Annotations()
	result := &ImportResult{
		FilesProcessed:      1,
		RecipesImported:     len(ds.Recipes),
		AnnotationsImported: len(annotations),
		ClusteringsImported: len(ds.Clusterings),
	}
	if opts.DryRun {
		s.logger.Info("dry run", "file", path, "recipes", result.RecipesImported, "clusterings", result.ClusteringsImported)
		return result, nil
	}

	for _, r := range ds.Recipes {
		if err := s.store.QueryUpsertRecipe(ctx, r.Recipe); err != nil {
			return nil, err
		}
	}
	for _, a := range annotations {
		if err := s.store.QueryUpsertAnnotation(ctx, a); err != nil {
			return nil, err
		}
	}
	for _, c := range ds.Clusterings {
		if err := s.store.QueryUpsertClustering(ctx, c); err != nil {
			return nil, err
		}
	}

	s.logger.Debug("imported dataset file", "file", path, "recipes", result.RecipesImported)
	return result, nil
}

// CollectFiles walks a directory and returns all dataset files.
func (s *ImportService) CollectFiles(dirPath string, recursive bool) ([]string, error) {
	var files []string
	walkFn := func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && !recursive && path != dirPath {
			return filepath.SkipDir
		}
		if !d.IsDir() && parser.IsDatasetFile(path) {
			files = append(files, path)
		}
		return nil
	}

	if err := filepath.WalkDir(dirPath, walkFn); err != nil {
		return nil, fmt.Errorf("scan directory: %w", err)
	}
	return files, nil
}

// ImportPath imports a single dataset file or every dataset file of a
// directory (synchronous).
func (s *ImportService) ImportPath(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	if !info.IsDir() {
		return s.ImportFile(ctx, path, opts)
	}

	files, err := s.CollectFiles(path, opts.Recursive)
	if err != nil {
		return nil, err
	}
	return s.processFiles(ctx, nil, nil, files, opts)
}

// ImportDirectoryAsync starts a background import job.
func (s *ImportService) ImportDirectoryAsync(ctx context.Context, jobManager *JobManager, dirPath string, opts ImportOptions) (*Job, error) {
	info, err := os.Stat(dirPath)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path must be a directory: %s", dirPath)
	}

	// Collect files upfront so progress has a fixed total
	files, err := s.CollectFiles(dirPath, opts.Recursive)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no dataset files found in %s", dirPath)
	}

	if opts.Concurrency <= 0 {
		opts.Concurrency = jobManager.Concurrency()
	}
	job, err := jobManager.CreateJob(ctx, "import", filepath.Base(dirPath), dirPath, files, opts)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	s.runJob(jobManager, job)
	return job, nil
}

// runJob imports the job's files in the background. The job outlives the
// request that started it.
func (s *ImportService) runJob(jobManager *JobManager, job *Job) {
	go func() {
		bgCtx := context.Background()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("import job goroutine panicked", "job_id", job.ID, "panic", r)
				jobManager.Fail(bgCtx, job, fmt.Errorf("internal panic: %v", r))
			}
		}()

		jobManager.SetRunning(bgCtx, job)

		result, err := s.processFiles(bgCtx, jobManager, job, job.Files, job.Options)
		if err != nil {
			jobManager.Fail(bgCtx, job, err)
			return
		}
		jobManager.Complete(bgCtx, job, result)
	}()
}

// processFiles imports files with a worker pool. Per-file failures are
// collected in the result and do not stop the run.
func (s *ImportService) processFiles(ctx context.Context, jobManager *JobManager, job *Job, files []string, opts ImportOptions) (*ImportResult, error) {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	s.logger.Info("starting import", "files", len(files), "concurrency", concurrency, "dry_run", opts.DryRun)

	var (
		filesProcessed atomic.Int32
		recipes        atomic.Int32
		annotations    atomic.Int32
		clusterings    atomic.Int32
		errorsMu       sync.Mutex
		errors         []string
	)

	fileChan := make(chan string, len(files))
	var wg sync.WaitGroup

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for file := range fileChan {
				if ctx.Err() != nil {
					return
				}

				processed := filesProcessed.Add(1)
				s.logger.Info("importing file", "worker", workerID, "file", filepath.Base(file), "progress", fmt.Sprintf("%d/%d", processed, len(files)))
				if jobManager != nil && job != nil {
					jobManager.UpdateProgress(ctx, job, int(processed), len(files))
				}

				res, err := s.ImportFile(ctx, file, opts)
				if err != nil {
					errorsMu.Lock()
					errors = append(errors, fmt.Sprintf("%s: %v", file, err))
					errorsMu.Unlock()
					continue
				}

				recipes.Add(int32(res.RecipesImported))
				annotations.Add(int32(res.AnnotationsImported))
				clusterings.Add(int32(res.ClusteringsImported))
			}
		}(i)
	}

	for _, file := range files {
		fileChan <- file
	}
	close(fileChan)

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Info("import complete", "recipes", recipes.Load(), "clusterings", clusterings.Load(), "errors", len(errors))

	return &ImportResult{
		FilesProcessed:      int(filesProcessed.Load()),
		RecipesImported:     int(recipes.Load()),
		AnnotationsImported: int(annotations.Load()),
		ClusteringsImported: int(clusterings.Load()),
		Errors:              errors,
	}, nil
}
