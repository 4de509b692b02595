package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/raphaelgruber/recipescape-go/internal/service"
	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs [job-id]",
	Short: "List or inspect import jobs on the server",
	Long: `List all background import jobs or inspect a specific job by ID.

Jobs live in the server's memory and are lost on restart.

Examples:
  recipescape jobs           # List all jobs
  recipescape jobs abc123    # Show details for job abc123`,
	Args: cobra.MaximumNArgs(1),
	RunE: runJobs,
}

func runJobs(cmd *cobra.Command, args []string) error {
	// If job ID provided, show that specific job
	if len(args) == 1 {
		return showJob(cmd, args[0])
	}

	// List all jobs
	return listJobs(cmd)
}

func listJobs(cmd *cobra.Command) error {
	jobs, err := newClient().ListJobs(cmd.Context())
	if err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, jobs)
	}
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No jobs found")
		return nil
	}

	fmt.Fprintf(out, "%-10s %-10s %-12s %-10s %s\n", "ID", "TYPE", "STATUS", "PROGRESS", "STARTED")
	fmt.Fprintln(out, "------------------------------------------------------------------------")

	for _, job := range jobs {
		progress := ""
		if job.Total > 0 {
			progress = fmt.Sprintf("%d/%d", job.Progress, job.Total)
		}
		started := job.StartedAt.Format("15:04:05")
		fmt.Fprintf(out, "%-10s %-10s %-12s %-10s %s\n", job.ID, job.Type, job.Status, progress, started)
	}

	return nil
}

func showJob(cmd *cobra.Command, id string) error {
	job, err := newClient().GetJob(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, job)
	}
	printJob(out, job)
	return nil
}

func printJob(out io.Writer, job *service.JobSnapshot) {
	fmt.Fprintf(out, "Job: %s\n", job.ID)
	fmt.Fprintf(out, "  Type: %s\n", job.Type)
	fmt.Fprintf(out, "  Status: %s\n", job.Status)
	if job.DirPath != "" {
		fmt.Fprintf(out, "  Path: %s\n", job.DirPath)
	}
	if job.Total > 0 {
		fmt.Fprintf(out, "  Progress: %d/%d\n", job.Progress, job.Total)
	}
	fmt.Fprintf(out, "  Started: %s\n", job.StartedAt.Format(time.RFC3339))
	if job.CompletedAt != nil {
		fmt.Fprintf(out, "  Completed: %s (%s)\n", job.CompletedAt.Format(time.RFC3339),
			job.CompletedAt.Sub(job.StartedAt).Round(time.Millisecond))
	}
	if job.Error != "" {
		fmt.Fprintf(out, "  Error: %s\n", job.Error)
	}
	if r := job.Result; r != nil {
		fmt.Fprintf(out, "  Result: %d files, %d recipes, %d annotations, %d clusterings\n",
			r.FilesProcessed, r.RecipesImported, r.AnnotationsImported, r.ClusteringsImported)
		for _, e := range r.Errors {
			fmt.Fprintf(out, "    • %s\n", e)
		}
	}
}
