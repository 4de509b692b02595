package tools

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// GetRecipeInput defines the input schema for the get_recipe tool.
type GetRecipeInput struct {
	ID string `json:"id" jsonschema:"Recipe origin id"`
}

// NewGetRecipeHandler creates the get_recipe tool handler.
func NewGetRecipeHandler(deps *Dependencies) mcp.ToolHandlerFor[GetRecipeInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetRecipeInput) (*mcp.CallToolResult, any, error) {
		if strings.TrimSpace(input.ID) == "" {
			return ErrorResult("ID cannot be empty", "Provide a recipe origin id"), nil, nil
		}
		recipe, err := deps.Recipes.GetRecipe(ctx, input.ID)
		if err != nil {
			return serviceError(deps, "get_recipe", err, "Use list_recipes to find recipe ids"), nil, nil
		}
		return JSONResult(recipe), nil, nil
	}
}

// ListDishesInput defines the input schema for the list_dishes tool.
type ListDishesInput struct{}

// NewListDishesHandler creates the list_dishes tool handler.
func NewListDishesHandler(deps *Dependencies) mcp.ToolHandlerFor[ListDishesInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListDishesInput) (*mcp.CallToolResult, any, error) {
		dishes, err := deps.Recipes.ListDishes(ctx)
		if err != nil {
			return serviceError(deps, "list_dishes", err, ""), nil, nil
		}
		return JSONResult(dishes), nil, nil
	}
}

// DishInput selects a dish.
type DishInput struct {
	Dish string `json:"dish" jsonschema:"Dish name (recipe group), e.g. chocolate chip cookie"`
}

// NewListRecipesHandler creates the list_recipes tool handler.
func NewListRecipesHandler(deps *Dependencies) mcp.ToolHandlerFor[DishInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DishInput) (*mcp.CallToolResult, any, error) {
		if strings.TrimSpace(input.Dish) == "" {
			return ErrorResult("Dish cannot be empty", "Use list_dishes to see available dishes"), nil, nil
		}
		recipes, err := deps.Recipes.ListRecipes(ctx, input.Dish)
		if err != nil {
			return serviceError(deps, "list_recipes", err, ""), nil, nil
		}
		return JSONResult(recipes), nil, nil
	}
}

// NewListClusteringsHandler creates the list_clusterings tool handler.
func NewListClusteringsHandler(deps *Dependencies) mcp.ToolHandlerFor[DishInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DishInput) (*mcp.CallToolResult, any, error) {
		if strings.TrimSpace(input.Dish) == "" {
			return ErrorResult("Dish cannot be empty", "Use list_dishes to see available dishes"), nil, nil
		}
		clusterings, err := deps.Recipes.ListClusterings(ctx, input.Dish)
		if err != nil {
			return serviceError(deps, "list_clusterings", err, "Use list_dishes to see available dishes"), nil, nil
		}
		return JSONResult(clusterings), nil, nil
	}
}
