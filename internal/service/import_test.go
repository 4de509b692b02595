package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pieDataset = `
recipes:
  - origin_id: p1
    title: Apple pie
    group_name: pie
    instruction: Roll the dough. Bake it.
    annotation:
      actions:
        - {id: a1, label: roll, start: 0, end: 4, step: 0}
        - {id: a2, label: bake, start: 16, end: 20, step: 1}
      ingredients:
        - {id: i1, label: dough, start: 9, end: 14}
      links:
        - {from: a1, to: i1}
        - {from: a2, to: a1}
  - origin_id: p2
    title: Pear pie
    group_name: pie
clusterings:
  - dish_name: pie
    title: Tree Edit Distance
    points:
      - {recipe_id: p1, cluster_no: 0}
      - {recipe_id: p2, cluster_no: 0}
`

const tartDataset = `
recipes:
  - origin_id: t1
    title: Lemon tart
    group_name: tart
    annotation:
      actions:
        - {id: a1, label: whisk, start: 0, end: 5, step: 0}
`

func writeDataset(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportFile(t *testing.T) {
	store := newFakeStore()
	svc := NewImportService(store, nil)
	path := writeDataset(t, t.TempDir(), "pie.yaml", pieDataset)

	result, err := svc.ImportFile(context.Background(), path, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{FilesProcessed: 1, RecipesImported: 2, AnnotationsImported: 1, ClusteringsImported: 1}, result)

	assert.Len(t, store.recipes, 2)
	assert.Contains(t, store.annotations, "p1")
	require.Len(t, store.clusterings, 1)

	// Re-importing is idempotent
	_, err = svc.ImportFile(context.Background(), path, ImportOptions{})
	require.NoError(t, err)
	assert.Len(t, store.recipes, 2)
	assert.Len(t, store.clusterings, 1)
}

func TestImportFile_DryRun(t *testing.T) {
	store := newFakeStore()
	svc := NewImportService(store, nil)
	path := writeDataset(t, t.TempDir(), "pie.yaml", pieDataset)

	result, err := svc.ImportFile(context.Background(), path, ImportOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 2, result.RecipesImported)
	assert.Empty(t, store.recipes)
}

func TestImportFile_Invalid(t *testing.T) {
	svc := NewImportService(newFakeStore(), nil)
	path := writeDataset(t, t.TempDir(), "bad.yaml", "recipes:\n  - title: no id\n")

	_, err := svc.ImportFile(context.Background(), path, ImportOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing origin_id")
}

func TestImportedDataFeedsAnalysis(t *testing.T) {
	store := newFakeStore()
	path := writeDataset(t, t.TempDir(), "pie.yaml", pieDataset)
	_, err := NewImportService(store, nil).ImportFile(context.Background(), path, ImportOptions{})
	require.NoError(t, err)

	svc := newTestService(store, nil)
	got, err := svc.ActionIngredientCount(context.Background(), "pie", "edit", []int{0}, "roll", "dough")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count)
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "pie.yaml", pieDataset)
	writeDataset(t, dir, "notes.md", "# notes")
	writeDataset(t, dir, "nested/tart.json", `{"recipes": []}`)
	svc := NewImportService(newFakeStore(), nil)

	flat, err := svc.CollectFiles(dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "pie.yaml")}, flat)

	all, err := svc.CollectFiles(dir, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestImportPath_DirectoryCollectsErrors(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "pie.yaml", pieDataset)
	writeDataset(t, dir, "tart.yml", tartDataset)
	writeDataset(t, dir, "broken.yaml", "recipes: [")
	store := newFakeStore()
	svc := NewImportService(store, nil)

	result, err := svc.ImportPath(context.Background(), dir, ImportOptions{Concurrency: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, result.FilesProcessed)
	assert.Equal(t, 3, result.RecipesImported)
	assert.Equal(t, 2, result.AnnotationsImported)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "broken.yaml")
	assert.Len(t, store.recipes, 3)
}

func TestImportPath_Missing(t *testing.T) {
	svc := NewImportService(newFakeStore(), nil)
	_, err := svc.ImportPath(context.Background(), filepath.Join(t.TempDir(), "nope"), ImportOptions{})
	assert.Error(t, err)
}

func TestImportDirectoryAsync(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "pie.yaml", pieDataset)
	writeDataset(t, dir, "tart.yaml", tartDataset)
	store := newFakeStore()
	svc := NewImportService(store, nil)
	jobs := NewJobManager(2, nil, nil)

	job, err := svc.ImportDirectoryAsync(context.Background(), jobs, dir, ImportOptions{})
	require.NoError(t, err)
	assert.Same(t, job, jobs.GetJob(job.ID))

	require.Eventually(t, func() bool {
		return job.Snapshot().Status == JobStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	snap := job.Snapshot()
	assert.Equal(t, 2, snap.Progress)
	assert.Equal(t, 2, snap.Total)
	require.NotNil(t, snap.Result)
	assert.Equal(t, 3, snap.Result.RecipesImported)
	assert.NotNil(t, snap.CompletedAt)
}

func TestImportDirectoryAsync_Rejects(t *testing.T) {
	svc := NewImportService(newFakeStore(), nil)
	jobs := NewJobManager(0, nil, nil)

	_, err := svc.ImportDirectoryAsync(context.Background(), jobs, t.TempDir(), ImportOptions{})
	assert.ErrorContains(t, err, "no dataset files")

	file := writeDataset(t, t.TempDir(), "pie.yaml", pieDataset)
	_, err = svc.ImportDirectoryAsync(context.Background(), jobs, file, ImportOptions{})
	assert.ErrorContains(t, err, "must be a directory")

	assert.Empty(t, jobs.ListJobs())
}
