package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/recipescape-go/internal/models"
)

// Progress is persisted at most this often, and on every tenth file.
const progressPersistInterval = 5 * time.Second

// JobStore persists job state across restarts. *db.Client implements it.
type JobStore interface {
	QueryCreateJob(ctx context.Context, job models.ImportJob) error
	QueryUpdateJobProgress(ctx context.Context, id string, progress int) error
	QueryUpdateJobStatus(ctx context.Context, id, status string) error
	QueryCompleteJob(ctx context.Context, id string, result map[string]any) error
	QueryFailJob(ctx context.Context, id, message string) error
	QueryIncompleteJobs(ctx context.Context) ([]models.ImportJob, error)
}

// JobStatus represents the state of a background job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Job represents a background import job. Read its state through Snapshot.
type Job struct {
	ID        string
	Type      string // "import"
	Name      string
	DirPath   string
	Files     []string
	Options   ImportOptions
	StartedAt time.Time
	Resumed   bool

	mu                 sync.RWMutex
	lastProgressUpdate time.Time
	status      JobStatus
	progress    int
	total       int
	result      *ImportResult
	err         string
	completedAt *time.Time
}

// JobSnapshot is a point-in-time copy of a job's state.
type JobSnapshot struct {
	ID          string        `json:"id"`
	Type        string        `json:"type"`
	Name        string        `json:"name,omitempty"`
	Status      JobStatus     `json:"status"`
	DirPath     string        `json:"dir_path"`
	Progress    int           `json:"progress"`
	Total       int           `json:"total"`
	Result      *ImportResult `json:"result,omitempty"`
	Error       string        `json:"error,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Resumed     bool          `json:"resumed,omitempty"`
}

// JobManager tracks background jobs in memory and, when a store is set,
// persists them so unfinished imports resume after a restart.
type JobManager struct {
	jobs        map[string]*Job
	mu          sync.RWMutex
	concurrency int
	store       JobStore
	logger      *slog.Logger
}

// NewJobManager creates a new job manager. store may be nil.
func NewJobManager(concurrency int, store JobStore, logger *slog.Logger) *JobManager {
	if concurrency <= 0 {
		concurrency = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JobManager{
		jobs:        make(map[string]*Job),
		concurrency: concurrency,
		store:       store,
		logger:      logger,
	}
}

// Concurrency returns the configured concurrency level.
func (m *JobManager) Concurrency() int {
	return m.concurrency
}

// CreateJob registers a new pending job and persists it.
func (m *JobManager) CreateJob(ctx context.Context, jobType, name, dirPath string, files []string, opts ImportOptions) (*Job, error) {
	job := &Job{
		ID:        uuid.New().String()[:8], // Short ID for convenience
		Type:      jobType,
		Name:      name,
		DirPath:   dirPath,
		Files:     files,
		Options:   opts,
		StartedAt: time.Now(),
		status:    JobStatusPending,
		total:     len(files),
	}

	if m.store != nil {
		err := m.store.QueryCreateJob(ctx, models.ImportJob{
			JobID:     job.ID,
			JobType:   jobType,
			Name:      name,
			Status:    string(JobStatusPending),
			DirPath:   dirPath,
			Files:     files,
			Recursive: opts.Recursive,
			DryRun:    opts.DryRun,
			Total:     len(files),
		})
		if err != nil {
			return nil, err
		}
	}

	m.register(job)
	m.logger.Info("job created", "job_id", job.ID, "name", name, "type", jobType, "files", len(files))
	return job, nil
}

func (m *JobManager) register(job *Job) {
	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()
}

// GetJob retrieves a job by ID.
func (m *JobManager) GetJob(id string) *Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[id]
}

// ListJobs returns all jobs, most recent first.
func (m *JobManager) ListJobs() []*Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	jobs := make([]*Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job)
	}

	slices.SortFunc(jobs, func(a, b *Job) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return jobs
}

// UpdateProgress records how many files of the job have been processed.
// Persistence is debounced.
func (m *JobManager) UpdateProgress(ctx context.Context, job *Job, current, total int) {
	job.mu.Lock()
	job.progress = current
	job.total = total
	if job.status == JobStatusPending {
		job.status = JobStatusRunning
	}
	persist := m.store != nil && (time.Since(job.lastProgressUpdate) > progressPersistInterval ||
		current%10 == 0 || current == total)
	if persist {
		job.lastProgressUpdate = time.Now()
	}
	job.mu.Unlock()

	if persist {
		if err := m.store.QueryUpdateJobProgress(ctx, job.ID, current); err != nil {
			m.logger.Warn("failed to persist job progress", "job_id", job.ID, "error", err)
		}
	}
}

// SetRunning marks job as running.
func (m *JobManager) SetRunning(ctx context.Context, job *Job) {
	job.mu.Lock()
	job.status = JobStatusRunning
	job.mu.Unlock()

	if m.store != nil {
		if err := m.store.QueryUpdateJobStatus(ctx, job.ID, string(JobStatusRunning)); err != nil {
			m.logger.Warn("failed to set job running", "job_id", job.ID, "error", err)
		}
	}
}

// Complete marks job as completed with result.
func (m *JobManager) Complete(ctx context.Context, job *Job, result *ImportResult) {
	job.mu.Lock()
	job.status = JobStatusCompleted
	job.result = result
	job.progress = job.total
	now := time.Now()
	job.completedAt = &now
	job.mu.Unlock()

	if m.store != nil {
		if err := m.store.QueryCompleteJob(ctx, job.ID, result.fields()); err != nil {
			m.logger.Warn("failed to persist job completion", "job_id", job.ID, "error", err)
		}
	}

	m.logger.Info("job completed", "job_id", job.ID, "recipes", result.RecipesImported, "errors", len(result.Errors))
}

// Fail marks job as failed with error.
func (m *JobManager) Fail(ctx context.Context, job *Job, err error) {
	job.mu.Lock()
	job.status = JobStatusFailed
	job.err = err.Error()
	now := time.Now()
	job.completedAt = &now
	job.mu.Unlock()

	if m.store != nil {
		if dbErr := m.store.QueryFailJob(ctx, job.ID, err.Error()); dbErr != nil {
			m.logger.Warn("failed to persist job failure", "job_id", job.ID, "error", dbErr)
		}
	}

	m.logger.Error("job failed", "job_id", job.ID, "error", err)
}

// ResumeIncompleteJobs restarts every persisted job that was pending or
// running when the server stopped. Imports are upserts, so files a job had
// already processed are imported again without harm. Returns the resumed
// jobs.
func (m *JobManager) ResumeIncompleteJobs(ctx context.Context, importer *ImportService) ([]*Job, error) {
	if m.store == nil {
		return nil, nil
	}

	stored, err := m.store.QueryIncompleteJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load incomplete jobs: %w", err)
	}
	if len(stored) == 0 {
		m.logger.Info("no incomplete jobs to resume")
		return nil, nil
	}

	resumed := make([]*Job, 0, len(stored))
	for _, s := range stored {
		job := &Job{
			ID:      s.JobID,
			Type:    s.JobType,
			Name:    s.Name,
			DirPath: s.DirPath,
			Files:   s.Files,
			Options: ImportOptions{
				Recursive:   s.Recursive,
				DryRun:      s.DryRun,
				Concurrency: m.concurrency,
			},
			StartedAt: s.StartedAt,
			Resumed:   true,
			status:    JobStatusPending,
			total:     len(s.Files),
		}
		m.register(job)

		if len(s.Files) == 0 {
			m.Complete(ctx, job, &ImportResult{})
			continue
		}

		m.logger.Info("resuming job", "job_id", job.ID, "files", len(s.Files), "previous_progress", s.Progress)
		importer.runJob(m, job)
		resumed = append(resumed, job)
	}
	return resumed, nil
}

// Snapshot returns a thread-safe copy of job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return JobSnapshot{
		ID:          j.ID,
		Type:        j.Type,
		Name:        j.Name,
		Status:      j.status,
		DirPath:     j.DirPath,
		Progress:    j.progress,
		Total:       j.total,
		Result:      j.result,
		Error:       j.err,
		StartedAt:   j.StartedAt,
		CompletedAt: j.completedAt,
		Resumed:     j.Resumed,
	}
}

// fields is the persisted form of an import result.
func (r *ImportResult) fields() map[string]any {
	return map[string]any{
		"files_processed":      r.FilesProcessed,
		"recipes_imported":     r.RecipesImported,
		"annotations_imported": r.AnnotationsImported,
		"clusterings_imported": r.ClusteringsImported,
		"errors":               orEmptyStrings(r.Errors),
	}
}

func orEmptyStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
