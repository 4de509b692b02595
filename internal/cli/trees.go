package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/raphaelgruber/recipescape-go/internal/models"
	"github.com/spf13/cobra"
)

var treeIDs []string

var treesCmd = &cobra.Command{
	Use:   "trees [dish]",
	Short: "Print workflow trees",
	Long: `Build and print the workflow trees of a dish, or of specific recipes
with --ids. Each tree is printed from its final actions down to the
actions that feed them.

Examples:
  recipescape trees cookies
  recipescape trees --ids r1,r3
  recipescape trees cookies --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTrees,
}

var nodesCmd = &cobra.Command{
	Use:   "nodes [dish]",
	Short: "Print the actions and ingredients of each recipe",
	Long: `Print the flattened actions and ingredients of each workflow tree of a
dish, or of specific recipes with --ids.

Examples:
  recipescape nodes cookies
  recipescape nodes --ids r1,r3`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNodes,
}

func init() {
	treesCmd.Flags().StringSliceVar(&treeIDs, "ids", nil, "recipe origin ids (takes precedence over dish)")
	nodesCmd.Flags().StringSliceVar(&treeIDs, "ids", nil, "recipe origin ids (takes precedence over dish)")
}

// treeTarget validates that either a dish or ids were given.
func treeTarget(args []string) (string, error) {
	if len(treeIDs) > 0 {
		return "", nil
	}
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("either a dish or --ids is required")
	}
	return args[0], nil
}

func runTrees(cmd *cobra.Command, args []string) error {
	dish, err := treeTarget(args)
	if err != nil {
		return err
	}
	svc, err := getRecipes(cmd.Context())
	if err != nil {
		return err
	}

	var trees []models.RecipeTree
	if len(treeIDs) > 0 {
		trees, err = svc.TreesByIDs(cmd.Context(), treeIDs)
	} else {
		trees, err = svc.Trees(cmd.Context(), dish)
	}
	if err != nil {
		return fmt.Errorf("build trees: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, trees)
	}
	if len(trees) == 0 {
		fmt.Fprintln(out, "No annotated recipes found.")
		return nil
	}
	for i, rt := range trees {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printTree(out, rt)
	}
	return nil
}

// printTree renders a tree depth-first from its roots through node inputs.
func printTree(out io.Writer, rt models.RecipeTree) {
	fmt.Fprintln(out, heading("%s", rt.ID))
	t := rt.Tree
	if t == nil || len(t.Nodes) == 0 {
		fmt.Fprintln(out, defaultTheme.hintStyle().Render("  (no actions)"))
		return
	}

	seen := make([]bool, len(t.Nodes))
	var walk func(idx, depth int)
	walk = func(idx, depth int) {
		if idx < 0 || idx >= len(t.Nodes) || seen[idx] {
			return
		}
		seen[idx] = true
		n := t.Nodes[idx]
		line := strings.Repeat("  ", depth+1) + n.Action
		if labels := t.IngredientLabels(n); len(labels) > 0 {
			line += " [" + strings.Join(labels, ", ") + "]"
		}
		fmt.Fprintln(out, line)
		for _, in := range n.Inputs {
			walk(in, depth+1)
		}
	}
	for _, root := range t.Roots {
		walk(root, 0)
	}
	if t.Dropped > 0 {
		fmt.Fprintln(out, defaultTheme.hintStyle().Render(fmt.Sprintf("  (%d malformed fragments skipped)", t.Dropped)))
	}
}

func runNodes(cmd *cobra.Command, args []string) error {
	dish, err := treeTarget(args)
	if err != nil {
		return err
	}
	svc, err := getRecipes(cmd.Context())
	if err != nil {
		return err
	}

	var nodes []models.RecipeNodes
	if len(treeIDs) > 0 {
		nodes, err = svc.NodesByIDs(cmd.Context(), treeIDs)
	} else {
		nodes, err = svc.Nodes(cmd.Context(), dish)
	}
	if err != nil {
		return fmt.Errorf("build nodes: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, nodes)
	}
	if len(nodes) == 0 {
		fmt.Fprintln(out, "No annotated recipes found.")
		return nil
	}
	for _, n := range nodes {
		fmt.Fprintf(out, "- %s\n", n.ID)
		fmt.Fprintf(out, "  Actions:     %s\n", strings.Join(n.Actions, ", "))
		fmt.Fprintf(out, "  Ingredients: %s\n", strings.Join(n.Ingredients, ", "))
	}
	return nil
}
