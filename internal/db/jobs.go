package db

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/recipescape-go/internal/metrics"
	"github.com/raphaelgruber/recipescape-go/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// QueryCreateJob persists a new import job.
func (c *Client) QueryCreateJob(ctx context.Context, job models.ImportJob) error {
	defer c.metrics.Time(metrics.OpDBQuery)()

	_, err := surrealdb.Query[any](ctx, c.db, `
		CREATE type::record("import_job", $job_id) CONTENT {
			job_id: $job_id,
			job_type: $job_type,
			name: $name,
			status: $status,
			dir_path: $dir_path,
			files: $files,
			recursive: $recursive,
			dry_run: $dry_run,
			total: $total,
			progress: 0
		}
	`, map[string]any{
		"job_id":    job.JobID,
		"job_type":  job.JobType,
		"name":      job.Name,
		"status":    job.Status,
		"dir_path":  job.DirPath,
		"files":     orEmpty(job.Files),
		"recursive": job.Recursive,
		"dry_run":   job.DryRun,
		"total":     job.Total,
	})
	if err != nil {
		return fmt.Errorf("create job %s: %w", job.JobID, wrapQueryError(err))
	}
	return nil
}

// QueryUpdateJobProgress records how many files of a job were processed.
func (c *Client) QueryUpdateJobProgress(ctx context.Context, id string, progress int) error {
	defer c.metrics.Time(metrics.OpDBQuery)()

	_, err := surrealdb.Query[any](ctx, c.db, `
		UPDATE type::record("import_job", $id) SET progress = $progress
	`, map[string]any{"id": id, "progress": progress})
	if err != nil {
		return fmt.Errorf("update job progress %s: %w", id, wrapQueryError(err))
	}
	return nil
}

// QueryUpdateJobStatus sets the status of a job.
func (c *Client) QueryUpdateJobStatus(ctx context.Context, id, status string) error {
	defer c.metrics.Time(metrics.OpDBQuery)()

	_, err := surrealdb.Query[any](ctx, c.db, `
		UPDATE type::record("import_job", $id) SET status = $status
	`, map[string]any{"id": id, "status": status})
	if err != nil {
		return fmt.Errorf("update job status %s: %w", id, wrapQueryError(err))
	}
	return nil
}

// QueryCompleteJob marks a job completed and stores its result.
func (c *Client) QueryCompleteJob(ctx context.Context, id string, result map[string]any) error {
	defer c.metrics.Time(metrics.OpDBQuery)()

	_, err := surrealdb.Query[any](ctx, c.db, `
		UPDATE type::record("import_job", $id) SET
			status = "completed",
			progress = total,
			result = $result,
			completed_at = time::now()
	`, map[string]any{"id": id, "result": result})
	if err != nil {
		return fmt.Errorf("complete job %s: %w", id, wrapQueryError(err))
	}
	return nil
}

// QueryFailJob marks a job failed.
func (c *Client) QueryFailJob(ctx context.Context, id, message string) error {
	defer c.metrics.Time(metrics.OpDBQuery)()

	_, err := surrealdb.Query[any](ctx, c.db, `
		UPDATE type::record("import_job", $id) SET
			status = "failed",
			error = $error,
			completed_at = time::now()
	`, map[string]any{"id": id, "error": message})
	if err != nil {
		return fmt.Errorf("fail job %s: %w", id, wrapQueryError(err))
	}
	return nil
}

// QueryIncompleteJobs returns pending and running jobs, oldest first.
func (c *Client) QueryIncompleteJobs(ctx context.Context) ([]models.ImportJob, error) {
	defer c.metrics.Time(metrics.OpDBQuery)()

	results, err := surrealdb.Query[[]models.ImportJob](ctx, c.db, `
		SELECT * OMIT id FROM import_job
		WHERE status IN ["pending", "running"]
		ORDER BY started_at ASC
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("incomplete jobs: %w", wrapQueryError(err))
	}
	return rows(results), nil
}
