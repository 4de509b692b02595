package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/raphaelgruber/recipescape-go/internal/api"
	"github.com/raphaelgruber/recipescape-go/internal/db"
	"github.com/raphaelgruber/recipescape-go/internal/models"
	"github.com/raphaelgruber/recipescape-go/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRecipes struct {
	byIDs []string
	err   error
}

func (s *stubRecipes) GetRecipe(_ context.Context, id string) (*models.Recipe, error) {
	if id != "r1" {
		return nil, service.ErrNotFound
	}
	return &models.Recipe{OriginID: "r1", Title: "Chewy Cookies", GroupName: "cookies", Ingredients: "flour\nsugar", Instruction: "Mix."}, nil
}

func (s *stubRecipes) ListDishes(context.Context) ([]db.DishCount, error) {
	return []db.DishCount{{GroupName: "cookies", Count: 3}, {GroupName: "pie", Count: 1}}, s.err
}

func (s *stubRecipes) ListRecipes(context.Context, string) ([]models.Recipe, error) {
	return []models.Recipe{{OriginID: "r1", Title: "Chewy Cookies", Ingredients: "flour\n  sugar"}}, s.err
}

func (s *stubRecipes) ListClusterings(context.Context, string) ([]models.Clustering, error) {
	return []models.Clustering{{DishName: "cookies", Title: "edit", Points: []models.Point{
		{RecipeID: "r1", ClusterNo: 1}, {RecipeID: "r2", ClusterNo: 0}, {RecipeID: "r3", ClusterNo: 1},
	}}}, s.err
}

func sampleTree(id string) models.RecipeTree {
	return models.RecipeTree{ID: id, Tree: &models.WorkflowTree{
		RecipeID: id,
		Nodes: []models.Node{
			{Index: 0, Action: "mix", Ingredients: []int{0}},
			{Index: 1, Action: "bake", Inputs: []int{0}},
		},
		Ingredients: []models.Ingredient{{Index: 0, Label: "flour"}},
		Roots:       []int{1},
	}}
}

func (s *stubRecipes) Trees(context.Context, string) ([]models.RecipeTree, error) {
	return []models.RecipeTree{sampleTree("r1")}, s.err
}

func (s *stubRecipes) Nodes(context.Context, string) ([]models.RecipeNodes, error) {
	return []models.RecipeNodes{{ID: "r1", Actions: []string{"mix", "bake"}, Ingredients: []string{"flour"}}}, s.err
}

func (s *stubRecipes) TreesByIDs(_ context.Context, ids []string) ([]models.RecipeTree, error) {
	s.byIDs = ids
	out := make([]models.RecipeTree, len(ids))
	for i, id := range ids {
		out[i] = sampleTree(id)
	}
	return out, s.err
}

func (s *stubRecipes) NodesByIDs(_ context.Context, ids []string) ([]models.RecipeNodes, error) {
	s.byIDs = ids
	return nil, s.err
}

func (s *stubRecipes) Histograms(context.Context, string, string, []int) (models.AnalysisResult, error) {
	return models.AnalysisResult{
		1: {Actions: []models.LabelCount{{Label: "bake", Count: 1}}},
		0: {Actions: []models.LabelCount{{Label: "mix", Count: 2}}, Ingredients: []models.LabelCount{{Label: "flour", Count: 2}}},
	}, s.err
}

func (s *stubRecipes) ActionIngredientCount(_ context.Context, _, _ string, _ []int, action, ingredient string) (*models.ActionIngredientCount, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.ActionIngredientCount{Action: action, Ingredient: ingredient, Count: 2, ByCluster: map[int]int{1: 0, 0: 2}}, nil
}

type stubImporter struct {
	path string
	opts service.ImportOptions
}

func (s *stubImporter) ImportPath(_ context.Context, path string, opts service.ImportOptions) (*service.ImportResult, error) {
	s.path, s.opts = path, opts
	return &service.ImportResult{FilesProcessed: 2, RecipesImported: 5, AnnotationsImported: 4, ClusteringsImported: 1, Errors: []string{"b.yaml: invalid dataset"}}, nil
}

// run executes the root command with stubbed backends and returns stdout.
func run(t *testing.T, rec api.Recipes, imp pathImporter, args ...string) (string, error) {
	t.Helper()
	t.Setenv("RECIPESCAPE_LOG_FILE", filepath.Join(t.TempDir(), "cli.log"))

	recipes, importer = rec, imp
	jsonOut, verbose, serverURL, treeIDs = false, false, "", nil
	clusteringTitle, clusterNumbers, countAction, countIngredient = "", nil, "", ""
	importRecursive, importDryRun, importRemote, recipesVerbose = false, false, false, false
	t.Cleanup(func() { recipes, importer = nil, nil })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestDishes(t *testing.T) {
	out, err := run(t, &stubRecipes{}, nil, "dishes")
	require.NoError(t, err)
	assert.Contains(t, out, "- cookies (3)")
	assert.Contains(t, out, "- pie (1)")
}

func TestRecipe_JSON(t *testing.T) {
	out, err := run(t, &stubRecipes{}, nil, "recipe", "r1", "--json")
	require.NoError(t, err)

	var r models.Recipe
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, "Chewy Cookies", r.Title)
}

func TestRecipe_NotFound(t *testing.T) {
	_, err := run(t, &stubRecipes{}, nil, "recipe", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestRecipes_CollapsesWhitespace(t *testing.T) {
	out, err := run(t, &stubRecipes{}, nil, "recipes", "cookies", "--full")
	require.NoError(t, err)
	assert.Contains(t, out, "Ingredients: flour sugar")
}

func TestClusters(t *testing.T) {
	out, err := run(t, &stubRecipes{}, nil, "clusters", "cookies")
	require.NoError(t, err)
	assert.Contains(t, out, "- edit (3 recipes)")
	assert.Less(t, strings.Index(out, "cluster 0: 1"), strings.Index(out, "cluster 1: 2"))
}

func TestTrees_ByIDs(t *testing.T) {
	stub := &stubRecipes{}
	out, err := run(t, stub, nil, "trees", "--ids", "r1,r3")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r3"}, stub.byIDs)
	assert.Contains(t, out, "  bake\n    mix [flour]\n")
}

func TestTrees_RequiresTarget(t *testing.T) {
	_, err := run(t, &stubRecipes{}, nil, "trees")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "either a dish or --ids")
}

func TestNodes(t *testing.T) {
	out, err := run(t, &stubRecipes{}, nil, "nodes", "cookies")
	require.NoError(t, err)
	assert.Contains(t, out, "Actions:     mix, bake")
}

func TestHistogram_ClusterOrder(t *testing.T) {
	out, err := run(t, &stubRecipes{}, nil, "histogram", "cookies", "--clustering", "edit", "--clusters", "0,1")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Cluster 0"), strings.Index(out, "Cluster 1"))
	assert.Contains(t, out, "flour")
}

func TestCount(t *testing.T) {
	out, err := run(t, &stubRecipes{}, nil, "count", "cookies", "--clustering", "edit", "--clusters", "0,1", "--action", "mix", "--ingredient", "flour")
	require.NoError(t, err)
	assert.Contains(t, out, "mix + flour: 2 recipes")
	assert.Less(t, strings.Index(out, "cluster 0: 2"), strings.Index(out, "cluster 1: 0"))
}

func TestCommand_PropagatesError(t *testing.T) {
	_, err := run(t, &stubRecipes{err: errors.New("connection refused")}, nil, "dishes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestImport_Local(t *testing.T) {
	imp := &stubImporter{}
	out, err := run(t, &stubRecipes{}, imp, "import", "data", "--recursive", "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, "data", imp.path)
	assert.True(t, imp.opts.Recursive)
	assert.True(t, imp.opts.DryRun)
	assert.Contains(t, out, "Recipes imported:      5")
	assert.Contains(t, out, "b.yaml: invalid dataset")
}

func TestJobs_FromServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/imports", r.URL.Path)
		_ = json.NewEncoder(w).Encode(api.APIResponse{Success: true, Data: []service.JobSnapshot{
			{ID: "abc12345", Type: "import", Status: service.JobStatusRunning, Progress: 1, Total: 4},
		}})
	}))
	defer srv.Close()

	out, err := run(t, &stubRecipes{}, nil, "jobs", "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "abc12345")
	assert.Contains(t, out, "1/4")
}

func TestProgressModel_PollsUntilCompleted(t *testing.T) {
	var fetched []string
	fetch := func(_ context.Context, id string) (*service.JobSnapshot, error) {
		fetched = append(fetched, id)
		return &service.JobSnapshot{ID: id, Status: service.JobStatusCompleted, Progress: 4, Total: 4}, nil
	}

	m := newProgressModel(fetch, &service.JobSnapshot{ID: "j1", Status: service.JobStatusRunning, Progress: 1, Total: 4}, time.Millisecond)
	assert.Contains(t, m.renderContent(), "1/4 files")

	next, cmd := m.Update(tickMsg(time.Now()))
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, []string{"j1"}, fetched)

	next, cmd = next.Update(msg)
	require.NotNil(t, cmd)
	final := next.(progressModel)
	assert.True(t, final.done)
	assert.NoError(t, final.err)
	assert.Equal(t, service.JobStatusCompleted, final.job.Status)
	assert.Empty(t, final.renderContent())
}

func TestProgressModel_Failed(t *testing.T) {
	m := newProgressModel(nil, &service.JobSnapshot{ID: "j1", Status: service.JobStatusRunning}, time.Millisecond)

	next, _ := m.Update(jobUpdateMsg{job: &service.JobSnapshot{ID: "j1", Status: service.JobStatusFailed, Error: "bad yaml"}})
	final := next.(progressModel)
	assert.True(t, final.done)
	require.Error(t, final.err)
	assert.Equal(t, "bad yaml", final.err.Error())
	assert.Contains(t, final.renderContent(), "Job failed: bad yaml")
}

func TestProgressModel_FetchError(t *testing.T) {
	m := newProgressModel(nil, &service.JobSnapshot{ID: "j1", Status: service.JobStatusRunning}, time.Millisecond)

	next, _ := m.Update(jobUpdateMsg{err: errors.New("connection refused")})
	final := next.(progressModel)
	assert.True(t, final.done)
	assert.ErrorContains(t, final.err, "connection refused")
}

func TestProgressModel_RunningKeepsTicking(t *testing.T) {
	m := newProgressModel(nil, &service.JobSnapshot{ID: "j1", Status: service.JobStatusPending}, time.Millisecond)

	next, cmd := m.Update(jobUpdateMsg{job: &service.JobSnapshot{ID: "j1", Status: service.JobStatusRunning, Progress: 2, Total: 3}})
	require.NotNil(t, cmd)
	final := next.(progressModel)
	assert.False(t, final.done)
	assert.Contains(t, final.renderContent(), "2/3 files")
	assert.Contains(t, final.renderContent(), "[running]")
}

func TestFollowJob(t *testing.T) {
	states := []service.JobStatus{service.JobStatusRunning, service.JobStatusCompleted}
	calls := 0
	fetch := func(_ context.Context, id string) (*service.JobSnapshot, error) {
		s := states[min(calls, len(states)-1)]
		calls++
		return &service.JobSnapshot{ID: id, Status: s, Result: &service.ImportResult{FilesProcessed: 2}}, nil
	}

	var out bytes.Buffer
	job := &service.JobSnapshot{ID: "j1", Status: service.JobStatusPending}
	final, err := followJob(context.Background(), &out, fetch, job, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, service.JobStatusCompleted, final.Status)
	assert.Equal(t, 2, calls)
}

func TestFollowJob_Failed(t *testing.T) {
	fetch := func(_ context.Context, id string) (*service.JobSnapshot, error) {
		return &service.JobSnapshot{ID: id, Status: service.JobStatusFailed, Error: "no dataset files found"}, nil
	}

	job := &service.JobSnapshot{ID: "j1", Status: service.JobStatusRunning}
	_, err := followJob(context.Background(), &bytes.Buffer{}, fetch, job, time.Millisecond)
	require.Error(t, err)
	assert.Equal(t, "no dataset files found", err.Error())
}

func TestFollowJob_CancelLeavesJobRunning(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	job := &service.JobSnapshot{ID: "j1", Status: service.JobStatusRunning}
	final, err := followJob(ctx, &out, nil, job, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, service.JobStatusRunning, final.Status)
	assert.Contains(t, out.String(), "continues in background")
}
