package tools

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// HistogramsInput defines the input schema for the get_histograms tool.
type HistogramsInput struct {
	Dish             string `json:"dish" jsonschema:"Dish name"`
	ClusterName      string `json:"cluster_name" jsonschema:"Case-insensitive substring of the clustering run title; empty matches the earliest run"`
	SelectedClusters []int  `json:"selected_clusters" jsonschema:"Cluster numbers to analyze"`
}

const clusteringHint = "Use list_clusterings to see the clustering runs of the dish"

// NewGetHistogramsHandler creates the get_histograms tool handler.
func NewGetHistogramsHandler(deps *Dependencies) mcp.ToolHandlerFor[HistogramsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input HistogramsInput) (*mcp.CallToolResult, any, error) {
		if strings.TrimSpace(input.Dish) == "" {
			return ErrorResult("Dish is required", clusteringHint), nil, nil
		}

		result, err := deps.Recipes.Histograms(ctx, input.Dish, input.ClusterName, input.SelectedClusters)
		if err != nil {
			return serviceError(deps, "get_histograms", err, clusteringHint), nil, nil
		}
		deps.Logger.Info("histograms computed", "dish", input.Dish, "clusters", len(result))
		return JSONResult(result), nil, nil
	}
}

// CountInput defines the input schema for the count_action_ingredient tool.
type CountInput struct {
	Dish             string `json:"dish" jsonschema:"Dish name"`
	ClusterName      string `json:"cluster_name" jsonschema:"Case-insensitive substring of the clustering run title; empty matches the earliest run"`
	SelectedClusters []int  `json:"selected_clusters" jsonschema:"Cluster numbers to search"`
	Action           string `json:"action" jsonschema:"Action label, e.g. mix"`
	Ingredient       string `json:"ingredient" jsonschema:"Ingredient label, e.g. flour"`
}

// NewCountActionIngredientHandler creates the count_action_ingredient tool handler.
func NewCountActionIngredientHandler(deps *Dependencies) mcp.ToolHandlerFor[CountInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CountInput) (*mcp.CallToolResult, any, error) {
		if strings.TrimSpace(input.Dish) == "" {
			return ErrorResult("Dish is required", clusteringHint), nil, nil
		}
		if strings.TrimSpace(input.Action) == "" || strings.TrimSpace(input.Ingredient) == "" {
			return ErrorResult("Action and ingredient are required", "Use get_histograms to find frequent labels"), nil, nil
		}

		result, err := deps.Recipes.ActionIngredientCount(ctx, input.Dish, input.ClusterName, input.SelectedClusters, input.Action, input.Ingredient)
		if err != nil {
			return serviceError(deps, "count_action_ingredient", err, clusteringHint), nil, nil
		}
		return JSONResult(result), nil, nil
	}
}
