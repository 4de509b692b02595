package tools

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// TreesInput selects recipes either by dish or by explicit ids.
type TreesInput struct {
	Dish      string   `json:"dish,omitempty" jsonschema:"Dish name; every annotated recipe of the dish"`
	RecipeIDs []string `json:"recipe_ids,omitempty" jsonschema:"Recipe origin ids; used instead of dish when given"`
}

func (in TreesInput) validate() *mcp.CallToolResult {
	if len(in.RecipeIDs) == 0 && strings.TrimSpace(in.Dish) == "" {
		return ErrorResult("Either dish or recipe_ids is required", "Use list_dishes to see available dishes")
	}
	return nil
}

// NewGetTreesHandler creates the get_trees tool handler.
func NewGetTreesHandler(deps *Dependencies) mcp.ToolHandlerFor[TreesInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input TreesInput) (*mcp.CallToolResult, any, error) {
		if res := input.validate(); res != nil {
			return res, nil, nil
		}

		var (
			result any
			err    error
		)
		if len(input.RecipeIDs) > 0 {
			result, err = deps.Recipes.TreesByIDs(ctx, input.RecipeIDs)
		} else {
			result, err = deps.Recipes.Trees(ctx, input.Dish)
		}
		if err != nil {
			return serviceError(deps, "get_trees", err, ""), nil, nil
		}
		return JSONResult(result), nil, nil
	}
}

// NewGetNodesHandler creates the get_nodes tool handler.
func NewGetNodesHandler(deps *Dependencies) mcp.ToolHandlerFor[TreesInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input TreesInput) (*mcp.CallToolResult, any, error) {
		if res := input.validate(); res != nil {
			return res, nil, nil
		}

		var (
			result any
			err    error
		)
		if len(input.RecipeIDs) > 0 {
			result, err = deps.Recipes.NodesByIDs(ctx, input.RecipeIDs)
		} else {
			result, err = deps.Recipes.Nodes(ctx, input.Dish)
		}
		if err != nil {
			return serviceError(deps, "get_nodes", err, ""), nil, nil
		}
		return JSONResult(result), nil, nil
	}
}
