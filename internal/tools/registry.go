package tools

import (
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterAll registers all tools with the MCP server.
// This is called from main after server creation but before Run().
func RegisterAll(server *mcp.Server, deps *Dependencies) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_dishes",
		Description: "List all dishes (recipe groups) with recipe counts",
	}, NewListDishesHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_recipes",
		Description: "List the annotated recipes of a dish",
	}, NewListRecipesHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_recipe",
		Description: "Retrieve a recipe by its origin id",
	}, NewGetRecipeHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_clusterings",
		Description: "List the clustering runs of a dish with their cluster assignments",
	}, NewListClusteringsHandler(deps))

	// Workflow trees - action graphs built from annotations
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_trees",
		Description: "Build workflow trees (actions, consumed ingredients, producer edges) for a dish or a list of recipes",
	}, NewGetTreesHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_nodes",
		Description: "List action and ingredient labels per recipe for a dish or a list of recipes",
	}, NewGetNodesHandler(deps))

	// Cluster analytics
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_histograms",
		Description: "Top 3 actions and ingredients per selected cluster of a clustering run",
	}, NewGetHistogramsHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "count_action_ingredient",
		Description: "Count recipes in the selected clusters where an action is applied to an ingredient",
	}, NewCountActionIngredientHandler(deps))
}
