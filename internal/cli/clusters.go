package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/raphaelgruber/recipescape-go/internal/models"
	"github.com/spf13/cobra"
)

var clustersCmd = &cobra.Command{
	Use:   "clusters <dish>",
	Short: "List the clustering runs of a dish",
	Long: `List clustering runs stored for a dish with the size of each cluster.

Examples:
  recipescape clusters cookies
  recipescape clusters cookies --json`,
	Args: cobra.ExactArgs(1),
	RunE: runClusters,
}

func runClusters(cmd *cobra.Command, args []string) error {
	svc, err := getRecipes(cmd.Context())
	if err != nil {
		return err
	}

	clusterings, err := svc.ListClusterings(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("list clusterings: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, clusterings)
	}

	fmt.Fprintln(out, heading("Clusterings for %s (%d):", args[0], len(clusterings)))
	fmt.Fprintln(out)
	for _, c := range clusterings {
		fmt.Fprintf(out, "- %s (%d recipes)\n", c.Title, len(c.Points))
		sizes := clusterSizes(c)
		for _, no := range slices.Sorted(maps.Keys(sizes)) {
			fmt.Fprintf(out, "    cluster %d: %d\n", no, sizes[no])
		}
	}
	return nil
}

// clusterSizes counts the points assigned to each cluster number.
func clusterSizes(c models.Clustering) map[int]int {
	sizes := make(map[int]int)
	for _, p := range c.Points {
		sizes[p.ClusterNo]++
	}
	return sizes
}
