// Package tools provides MCP tool handlers and registration.
package tools

import (
	"context"
	"log/slog"

	"github.com/raphaelgruber/recipescape-go/internal/db"
	"github.com/raphaelgruber/recipescape-go/internal/models"
)

// Recipes is the query surface the tools call. *service.RecipeService
// implements it.
type Recipes interface {
	GetRecipe(ctx context.Context, id string) (*models.Recipe, error)
	ListDishes(ctx context.Context) ([]db.DishCount, error)
	ListRecipes(ctx context.Context, dish string) ([]models.Recipe, error)
	ListClusterings(ctx context.Context, dish string) ([]models.Clustering, error)
	Trees(ctx context.Context, dish string) ([]models.RecipeTree, error)
	Nodes(ctx context.Context, dish string) ([]models.RecipeNodes, error)
	TreesByIDs(ctx context.Context, ids []string) ([]models.RecipeTree, error)
	NodesByIDs(ctx context.Context, ids []string) ([]models.RecipeNodes, error)
	Histograms(ctx context.Context, dish, clusterName string, clusters []int) (models.AnalysisResult, error)
	ActionIngredientCount(ctx context.Context, dish, clusterName string, clusters []int, action, ingredient string) (*models.ActionIngredientCount, error)
}

// Dependencies holds shared services for tool handlers.
// Passed to handler factories via closure capture.
type Dependencies struct {
	Recipes Recipes
	Logger  *slog.Logger
}
