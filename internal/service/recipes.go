// Package service composes storage, the annotation cache and the workflow
// engine into the operations exposed by the CLI, HTTP API and MCP tools.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/raphaelgruber/recipescape-go/internal/cache"
	"github.com/raphaelgruber/recipescape-go/internal/db"
	"github.com/raphaelgruber/recipescape-go/internal/metrics"
	"github.com/raphaelgruber/recipescape-go/internal/models"
	"github.com/raphaelgruber/recipescape-go/internal/workflow"
	"golang.org/x/sync/errgroup"
)

// ErrNotFound is returned when a recipe, dish or clustering run does not exist.
var ErrNotFound = db.ErrNotFound

// Store is the storage the recipe service reads from. *db.Client implements it.
type Store interface {
	cache.Fetcher
	ClusteringStore
	QueryRecipeByOriginID(ctx context.Context, id string) (*models.Recipe, error)
	QueryRecipesByDish(ctx context.Context, dish string) ([]models.Recipe, error)
	QueryAnnotationsByRecipeIDs(ctx context.Context, ids []string) ([]models.AnnotatedRecipe, error)
	QueryListClusterings(ctx context.Context, dish string) ([]models.Clustering, error)
	QueryListDishes(ctx context.Context) ([]db.DishCount, error)
}

// RecipeService answers recipe, tree and cluster analysis queries.
type RecipeService struct {
	store       Store
	annotations *cache.Annotations
	selector    *ClusterSelector
	metrics     *metrics.Collector
	logger      *slog.Logger
	workers     int
}

// NewRecipeService creates a recipe service. cacheStore and collector may be nil.
func NewRecipeService(store Store, cacheStore cache.Store, collector *metrics.Collector, logger *slog.Logger) *RecipeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecipeService{
		store:       store,
		annotations: cache.NewAnnotations(store, cacheStore, collector, logger),
		selector:    NewClusterSelector(store),
		metrics:     collector,
		logger:      logger,
		workers:     runtime.GOMAXPROCS(0),
	}
}

// GetRecipe returns a recipe by origin id.
func (s *RecipeService) GetRecipe(ctx context.Context, id string) (*models.Recipe, error) {
	recipe, err := s.store.QueryRecipeByOriginID(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, fmt.Errorf("recipe %q: %w", id, ErrNotFound)
	}
	return recipe, nil
}

// ListDishes returns every dish with its recipe count.
func (s *RecipeService) ListDishes(ctx context.Context) ([]db.DishCount, error) {
	return s.store.QueryListDishes(ctx)
}

// ListRecipes returns the annotated recipes of a dish.
func (s *RecipeService) ListRecipes(ctx context.Context, dish string) ([]models.Recipe, error) {
	return s.store.QueryRecipesByDish(ctx, dish)
}

// ListClusterings returns the clustering runs of a dish.
func (s *RecipeService) ListClusterings(ctx context.Context, dish string) ([]models.Clustering, error) {
	clusterings, err := s.store.QueryListClusterings(ctx, dish)
	if err != nil {
		return nil, err
	}
	if len(clusterings) == 0 {
		return nil, fmt.Errorf("clusterings for %q: %w", dish, ErrNotFound)
	}
	return clusterings, nil
}

// Trees builds the workflow tree of every annotated recipe of a dish.
func (s *RecipeService) Trees(ctx context.Context, dish string) ([]models.RecipeTree, error) {
	annotated, err := s.annotations.Get(ctx, dish)
	if err != nil {
		return nil, err
	}
	return s.recipeTrees(ctx, annotated)
}

// Nodes returns the flattened node summary of every annotated recipe of a dish.
func (s *RecipeService) Nodes(ctx context.Context, dish string) ([]models.RecipeNodes, error) {
	trees, err := s.Trees(ctx, dish)
	if err != nil {
		return nil, err
	}
	return recipeNodes(trees), nil
}

// TreesByIDs builds workflow trees for the given recipes. Recipes without
// an annotation are skipped.
func (s *RecipeService) TreesByIDs(ctx context.Context, ids []string) ([]models.RecipeTree, error) {
	annotated, err := s.store.QueryAnnotationsByRecipeIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.recipeTrees(ctx, annotated)
}

// NodesByIDs returns node summaries for the given recipes.
func (s *RecipeService) NodesByIDs(ctx context.Context, ids []string) ([]models.RecipeNodes, error) {
	trees, err := s.TreesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return recipeNodes(trees), nil
}

// Histograms ranks the most frequent actions and ingredients of each
// selected cluster of the clustering run matching clusterName.
func (s *RecipeService) Histograms(ctx context.Context, dish, clusterName string, clusters []int) (models.AnalysisResult, error) {
	entries, err := s.selectTrees(ctx, dish, clusterName, clusters)
	if err != nil {
		return nil, err
	}

	defer s.metrics.Time(metrics.OpAnalyze)()
	return workflow.Analyze(entries), nil
}

// ActionIngredientCount counts the selected recipes in which action consumes
// ingredient, overall and per cluster.
func (s *RecipeService) ActionIngredientCount(ctx context.Context, dish, clusterName string, clusters []int, action, ingredient string) (*models.ActionIngredientCount, error) {
	entries, err := s.selectTrees(ctx, dish, clusterName, clusters)
	if err != nil {
		return nil, err
	}

	defer s.metrics.Time(metrics.OpAnalyze)()
	trees := make([]*models.WorkflowTree, len(entries))
	for i, e := range entries {
		trees[i] = e.Tree
	}
	return &models.ActionIngredientCount{
		Action:     action,
		Ingredient: ingredient,
		Count:      workflow.CountWithFilter(trees, action, ingredient),
		ByCluster:  workflow.CountWithFilterByCluster(entries, action, ingredient),
	}, nil
}

// selectTrees resolves a cluster selection and builds the tree of every
// selected recipe, in selection order. Selected recipes without an
// annotation are skipped.
func (s *RecipeService) selectTrees(ctx context.Context, dish, clusterName string, clusters []int) ([]models.TreeEntry, error) {
	selections, err := s.selector.Select(ctx, dish, clusterName, clusters)
	if err != nil {
		return nil, err
	}
	if len(selections) == 0 {
		return []models.TreeEntry{}, nil
	}

	annotated, err := s.annotations.Get(ctx, dish)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.AnnotatedRecipe, len(annotated))
	for _, a := range annotated {
		byID[a.Recipe.OriginID] = a
	}

	picked := make([]models.AnnotatedRecipe, 0, len(selections))
	clusterOf := make([]int, 0, len(selections))
	for _, sel := range selections {
		a, ok := byID[sel.RecipeID]
		if !ok {
			s.logger.Debug("selected recipe has no annotation", "dish", dish, "recipe", sel.RecipeID)
			continue
		}
		picked = append(picked, a)
		clusterOf = append(clusterOf, sel.ClusterNo)
	}

	trees, err := s.buildTrees(ctx, picked)
	if err != nil {
		return nil, err
	}

	entries := make([]models.TreeEntry, len(trees))
	for i, t := range trees {
		entries[i] = models.TreeEntry{Tree: t, Cluster: clusterOf[i], RecipeID: t.RecipeID}
	}
	return entries, nil
}

func (s *RecipeService) recipeTrees(ctx context.Context, annotated []models.AnnotatedRecipe) ([]models.RecipeTree, error) {
	trees, err := s.buildTrees(ctx, annotated)
	if err != nil {
		return nil, err
	}
	out := make([]models.RecipeTree, len(trees))
	for i, t := range trees {
		out[i] = models.RecipeTree{ID: t.RecipeID, Tree: t}
	}
	return out, nil
}

// buildTrees builds one tree per annotated recipe in parallel. The result is
// index-aligned with annotated.
func (s *RecipeService) buildTrees(ctx context.Context, annotated []models.AnnotatedRecipe) ([]*models.WorkflowTree, error) {
	trees := make([]*models.WorkflowTree, len(annotated))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.workers, 1))
	for i, a := range annotated {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			done := s.metrics.Time(metrics.OpTreeBuild)
			tree, err := workflow.MakeTree(a.Recipe, a.Annotation)
			done()
			if err != nil {
				return fmt.Errorf("build tree %s: %w", a.Recipe.OriginID, err)
			}
			if tree.Dropped > 0 {
				s.logger.Debug("dropped malformed annotation fragments", "recipe", a.Recipe.OriginID, "dropped", tree.Dropped)
			}
			trees[i] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trees, nil
}

func recipeNodes(trees []models.RecipeTree) []models.RecipeNodes {
	out := make([]models.RecipeNodes, len(trees))
	for i, rt := range trees {
		summary := workflow.Flatten(rt.Tree)
		out[i] = models.RecipeNodes{ID: rt.ID, Actions: summary.Actions, Ingredients: summary.Ingredients}
	}
	return out
}
