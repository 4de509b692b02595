package models

import "time"

// ImportJob is the persisted state of a background import. It lets a
// restarted server pick up imports that never finished.
type ImportJob struct {
	JobID       string         `json:"job_id"`
	JobType     string         `json:"job_type"`
	Name        string         `json:"name"`
	Status      string         `json:"status"`
	DirPath     string         `json:"dir_path"`
	Files       []string       `json:"files"`
	Recursive   bool           `json:"recursive"`
	DryRun      bool           `json:"dry_run"`
	Total       int            `json:"total"`
	Progress    int            `json:"progress"`
	Result      map[string]any `json:"result,omitempty"`
	Error       *string        `json:"error,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}
