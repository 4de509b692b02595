package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/raphaelgruber/recipescape-go/internal/metrics"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show server runtime statistics",
	Long: `Show in-memory runtime statistics of a running recipescape-server:
uptime, operation timings and annotation cache hit rate. Statistics reset
when the server restarts.

Examples:
  recipescape stats
  recipescape stats --server http://analysis:8484`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	stats, err := newClient().Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("get server stats: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, stats)
	}
	printServerStats(out, stats)
	return nil
}

func printServerStats(out io.Writer, stats *metrics.Snapshot) {
	uptime := time.Duration(stats.UptimeSeconds * float64(time.Second)).Round(time.Second)
	fmt.Fprintln(out, heading("Server Stats"))
	fmt.Fprintf(out, "  Uptime: %s\n", uptime)

	ops := []struct {
		name string
		snap *metrics.OperationSnapshot
	}{
		{"Requests", stats.Request},
		{"DB queries", stats.DBQuery},
		{"Tree builds", stats.TreeBuild},
		{"Analyses", stats.Analyze},
	}
	for _, op := range ops {
		if op.snap == nil {
			continue
		}
		fmt.Fprintf(out, "  %-12s %6d  avg %.1fms  min %dms  max %dms\n",
			op.name+":", op.snap.Count, op.snap.AvgTimeMs, op.snap.MinTimeMs, op.snap.MaxTimeMs)
	}

	c := stats.Cache
	fmt.Fprintf(out, "  Cache:       %d hits, %d misses (%.0f%% hit rate)\n", c.Hits, c.Misses, c.HitRate*100)
}
