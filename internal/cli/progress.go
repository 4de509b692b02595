package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/recipescape-go/internal/service"
)

const (
	pollInterval = time.Second
	barWidth     = 40
	fetchTimeout = 10 * time.Second
)

// jobFetcher returns the latest state of a job.
type jobFetcher func(ctx context.Context, id string) (*service.JobSnapshot, error)

// tickMsg triggers polling the job status
type tickMsg time.Time

// jobUpdateMsg carries the updated job data
type jobUpdateMsg struct {
	job *service.JobSnapshot
	err error
}

// progressModel is the bubbletea model for import job progress.
type progressModel struct {
	fetch    jobFetcher
	jobID    string
	job      *service.JobSnapshot
	interval time.Duration
	progress progress.Model
	theme    Theme
	done     bool
	quitting bool
	err      error
}

func newProgressModel(fetch jobFetcher, job *service.JobSnapshot, interval time.Duration) progressModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(barWidth),
	)

	return progressModel{
		fetch:    fetch,
		jobID:    job.ID,
		job:      job,
		interval: interval,
		progress: prog,
		theme:    defaultTheme,
	}
}

// Init starts polling.
func (m progressModel) Init() tea.Cmd {
	return tea.Batch(
		m.tickCmd(),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		return m, m.fetchJob()

	case jobUpdateMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("failed to fetch job status: %w", msg.err)
			m.done = true
			return m, tea.Quit
		}

		m.job = msg.job
		if finished, err := jobOutcome(m.job); finished {
			m.done = true
			m.err = err
			return m, tea.Quit
		}
		return m, m.tickCmd()

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m progressModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m progressModel) renderContent() string {
	if m.done {
		return m.finalView()
	}
	if m.job == nil {
		return "Loading job status...\n"
	}

	var pct float64
	if m.job.Total > 0 {
		pct = min(float64(m.job.Progress)/float64(m.job.Total), 1)
	}

	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", m.job.Status))
	counts := fmt.Sprintf("%d/%d files", m.job.Progress, m.job.Total)
	hint := m.theme.hintStyle().Render("Press Ctrl+C to continue in background")

	return fmt.Sprintf("%s %s %s\n%s\n", status, m.progress.ViewAs(pct), counts, hint)
}

// finalView renders the last frame; the result summary is printed after the
// program exits.
func (m progressModel) finalView() string {
	switch {
	case m.quitting:
		return backgroundHint(m.jobID)
	case m.err != nil:
		return m.theme.errorStyle().Render(fmt.Sprintf("✗ Job failed: %s", m.err)) + "\n"
	}
	return ""
}

// fetchJob runs in its own command so Update never blocks on the network.
func (m progressModel) fetchJob() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		job, err := m.fetch(ctx, m.jobID)
		return jobUpdateMsg{job: job, err: err}
	}
}

func (m progressModel) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// jobOutcome reports whether job reached a terminal state and the error it
// failed with, if any.
func jobOutcome(job *service.JobSnapshot) (bool, error) {
	switch job.Status {
	case service.JobStatusCompleted:
		return true, nil
	case service.JobStatusFailed:
		if job.Error == "" {
			return true, errors.New("job failed with unknown error")
		}
		return true, errors.New(job.Error)
	}
	return false, nil
}

func backgroundHint(id string) string {
	return defaultTheme.hintStyle().Render(
		fmt.Sprintf("Job %s continues in background.\nUse 'recipescape jobs %s' to check status.", id, id)) + "\n"
}

// renderResult prints the outcome of an import.
func renderResult(w io.Writer, r *service.ImportResult, dryRun bool) {
	title := "✓ Completed"
	if dryRun {
		title = "✓ Validated (dry run)"
	}
	fmt.Fprintln(w, defaultTheme.completedStyle().Render(title))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Files processed:       %d\n", r.FilesProcessed)
	fmt.Fprintf(w, "  Recipes imported:      %d\n", r.RecipesImported)
	fmt.Fprintf(w, "  Annotations imported:  %d\n", r.AnnotationsImported)
	fmt.Fprintf(w, "  Clusterings imported:  %d\n", r.ClusteringsImported)
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, defaultTheme.errorStyle().Render(fmt.Sprintf("\nWarnings (%d):", len(r.Errors))))
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  • %s\n", e)
		}
	}
}

// followJob watches a job until it finishes. Terminals get the interactive
// progress bar; other writers get one line per status change. Cancelling ctx
// or pressing Ctrl+C stops watching while the job keeps running on the
// server.
func followJob(ctx context.Context, w io.Writer, fetch jobFetcher, job *service.JobSnapshot, interval time.Duration) (*service.JobSnapshot, error) {
	if finished, err := jobOutcome(job); finished {
		return job, err
	}
	if isTerminal(w) {
		return runJobProgress(ctx, w, fetch, job, interval)
	}
	return pollJob(ctx, w, fetch, job, interval)
}

// runJobProgress runs the bubbletea progress UI for a job.
func runJobProgress(ctx context.Context, w io.Writer, fetch jobFetcher, job *service.JobSnapshot, interval time.Duration) (*service.JobSnapshot, error) {
	p := tea.NewProgram(newProgressModel(fetch, job, interval),
		tea.WithContext(ctx),
		tea.WithOutput(w),
	)

	finalModel, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			fmt.Fprint(w, backgroundHint(job.ID))
			return job, nil
		}
		return job, fmt.Errorf("progress UI error: %w", err)
	}

	m, ok := finalModel.(progressModel)
	if !ok {
		return job, nil
	}
	// Ctrl+C leaves the job running; not an error.
	if m.quitting {
		return m.job, nil
	}
	return m.job, m.err
}

// pollJob is the non-interactive fallback of followJob.
func pollJob(ctx context.Context, w io.Writer, fetch jobFetcher, job *service.JobSnapshot, interval time.Duration) (*service.JobSnapshot, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := ""
	for {
		if finished, err := jobOutcome(job); finished {
			return job, err
		}

		line := fmt.Sprintf("[%s] %d/%d files", job.Status, job.Progress, job.Total)
		if line != last {
			fmt.Fprintln(w, line)
			last = line
		}

		select {
		case <-ctx.Done():
			fmt.Fprint(w, backgroundHint(job.ID))
			return job, nil
		case <-ticker.C:
		}

		next, err := fetch(ctx, job.ID)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			return job, fmt.Errorf("failed to fetch job status: %w", err)
		}
		job = next
	}
}
