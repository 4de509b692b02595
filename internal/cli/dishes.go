package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var recipesVerbose bool

var dishesCmd = &cobra.Command{
	Use:   "dishes",
	Short: "List dishes with their recipe counts",
	Args:  cobra.NoArgs,
	RunE:  runDishes,
}

var recipesCmd = &cobra.Command{
	Use:   "recipes <dish>",
	Short: "List the annotated recipes of a dish",
	Long: `List the recipes of a dish that have an annotation, ordered by origin id.

Examples:
  recipescape recipes cookies
  recipescape recipes cookies --full`,
	Args: cobra.ExactArgs(1),
	RunE: runRecipes,
}

var recipeCmd = &cobra.Command{
	Use:   "recipe <origin-id>",
	Short: "Show a single recipe",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecipe,
}

func init() {
	recipesCmd.Flags().BoolVar(&recipesVerbose, "full", false, "include ingredients and instructions")
}

func runDishes(cmd *cobra.Command, args []string) error {
	svc, err := getRecipes(cmd.Context())
	if err != nil {
		return err
	}

	dishes, err := svc.ListDishes(cmd.Context())
	if err != nil {
		return fmt.Errorf("list dishes: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, dishes)
	}
	if len(dishes) == 0 {
		fmt.Fprintln(out, "No dishes found.")
		return nil
	}

	fmt.Fprintln(out, heading("Dishes (%d):", len(dishes)))
	fmt.Fprintln(out)
	for _, d := range dishes {
		fmt.Fprintf(out, "- %s (%d)\n", d.GroupName, d.Count)
	}
	return nil
}

func runRecipes(cmd *cobra.Command, args []string) error {
	svc, err := getRecipes(cmd.Context())
	if err != nil {
		return err
	}

	list, err := svc.ListRecipes(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("list recipes: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, list)
	}
	if len(list) == 0 {
		fmt.Fprintf(out, "No annotated recipes for %q.\n", args[0])
		return nil
	}

	fmt.Fprintln(out, heading("Recipes for %s (%d):", args[0], len(list)))
	fmt.Fprintln(out)
	for _, r := range list {
		fmt.Fprintf(out, "- %s  %s\n", r.OriginID, r.Title)
		if recipesVerbose || verbose {
			fmt.Fprintf(out, "  Ingredients: %s\n", oneLine(r.Ingredients))
			fmt.Fprintf(out, "  Instruction: %s\n", oneLine(r.Instruction))
		}
	}
	return nil
}

func runRecipe(cmd *cobra.Command, args []string) error {
	svc, err := getRecipes(cmd.Context())
	if err != nil {
		return err
	}

	r, err := svc.GetRecipe(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get recipe: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, r)
	}

	fmt.Fprintln(out, heading("%s", r.Title))
	fmt.Fprintf(out, "  ID:   %s\n", r.OriginID)
	fmt.Fprintf(out, "  Dish: %s\n", r.GroupName)
	fmt.Fprintln(out)
	fmt.Fprintln(out, heading("Ingredients"))
	fmt.Fprintln(out, strings.TrimSpace(r.Ingredients))
	fmt.Fprintln(out)
	fmt.Fprintln(out, heading("Instruction"))
	fmt.Fprintln(out, strings.TrimSpace(r.Instruction))
	return nil
}

// oneLine collapses whitespace so long text fits a list row.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
