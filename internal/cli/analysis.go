package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/raphaelgruber/recipescape-go/internal/models"
	"github.com/spf13/cobra"
)

var (
	clusteringTitle string
	clusterNumbers  []int
	countAction     string
	countIngredient string
)

var histogramCmd = &cobra.Command{
	Use:   "histogram <dish>",
	Short: "Show the most frequent actions and ingredients per cluster",
	Long: `Compare clusters of a clustering run by their most frequent actions and
ingredients. The first clustering whose title contains --clustering
(case-insensitive) is used.

Examples:
  recipescape histogram cookies --clustering edit --clusters 0,1
  recipescape histogram cookies --clustering ted --clusters 2 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runHistogram,
}

var countCmd = &cobra.Command{
	Use:   "count <dish>",
	Short: "Count recipes where an action is applied to an ingredient",
	Long: `Count the selected recipes in which the given action directly consumes
the given ingredient. Labels are matched case-insensitively.

Examples:
  recipescape count cookies --clustering edit --clusters 0,1 --action mix --ingredient flour`,
	Args: cobra.ExactArgs(1),
	RunE: runCount,
}

func init() {
	for _, c := range []*cobra.Command{histogramCmd, countCmd} {
		c.Flags().StringVar(&clusteringTitle, "clustering", "", "clustering title filter (substring, empty for the earliest run)")
		c.Flags().IntSliceVar(&clusterNumbers, "clusters", nil, "cluster numbers to compare")
		_ = c.MarkFlagRequired("clusters")
	}
	countCmd.Flags().StringVar(&countAction, "action", "", "action label")
	countCmd.Flags().StringVar(&countIngredient, "ingredient", "", "ingredient label")
	_ = countCmd.MarkFlagRequired("action")
	_ = countCmd.MarkFlagRequired("ingredient")
}

func runHistogram(cmd *cobra.Command, args []string) error {
	svc, err := getRecipes(cmd.Context())
	if err != nil {
		return err
	}

	result, err := svc.Histograms(cmd.Context(), args[0], clusteringTitle, clusterNumbers)
	if err != nil {
		return fmt.Errorf("histograms: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, result)
	}
	printHistograms(out, result, terminalWidth(out, 80))
	return nil
}

// printHistograms renders one block per cluster in ascending cluster order.
func printHistograms(out io.Writer, result models.AnalysisResult, width int) {
	barMax := max(width/3, 10)
	for i, no := range slices.Sorted(maps.Keys(result)) {
		if i > 0 {
			fmt.Fprintln(out)
		}
		h := result[no]
		fmt.Fprintln(out, heading("Cluster %d", no))
		printCounts(out, "Actions", h.Actions, barMax)
		printCounts(out, "Ingredients", h.Ingredients, barMax)
	}
}

func printCounts(out io.Writer, title string, counts []models.LabelCount, barMax int) {
	fmt.Fprintf(out, "  %s:\n", title)
	if len(counts) == 0 {
		fmt.Fprintln(out, defaultTheme.hintStyle().Render("    (none)"))
		return
	}
	top := counts[0].Count
	for _, c := range counts {
		n := c.Count * barMax / max(top, 1)
		bar := defaultTheme.statusStyle().Render(strings.Repeat("▇", max(n, 1)))
		fmt.Fprintf(out, "    %-16s %4d %s\n", c.Label, c.Count, bar)
	}
}

func runCount(cmd *cobra.Command, args []string) error {
	svc, err := getRecipes(cmd.Context())
	if err != nil {
		return err
	}

	result, err := svc.ActionIngredientCount(cmd.Context(), args[0], clusteringTitle, clusterNumbers, countAction, countIngredient)
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, result)
	}

	fmt.Fprintf(out, "%s + %s: %d recipes\n", result.Action, result.Ingredient, result.Count)
	for _, no := range slices.Sorted(maps.Keys(result.ByCluster)) {
		fmt.Fprintf(out, "  cluster %d: %d\n", no, result.ByCluster[no])
	}
	return nil
}
