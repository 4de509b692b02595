package workflow

import (
	"cmp"
	"slices"

	"github.com/raphaelgruber/recipescape-go/internal/models"
)

// TopN is the number of actions and ingredients kept per cluster.
const TopN = 3

// counter tallies labels and remembers the order in which they were first seen.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(label string) {
	if _, ok := c.counts[label]; !ok {
		c.order = append(c.order, label)
	}
	c.counts[label]++
}

// top ranks labels by count, descending. Ties keep first-seen order.
func (c *counter) top(n int) []models.LabelCount {
	ranked := make([]models.LabelCount, 0, len(c.order))
	for _, label := range c.order {
		ranked = append(ranked, models.LabelCount{Label: label, Count: c.counts[label]})
	}
	slices.SortStableFunc(ranked, func(a, b models.LabelCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Analyze ranks the most frequent action and ingredient labels of every
// cluster present in entries. Actions count once per node. Ingredients count
// once per node that consumes them, so an ingredient never linked to an action
// is not counted.
func Analyze(entries []models.TreeEntry) models.AnalysisResult {
	actions := make(map[int]*counter)
	ingredients := make(map[int]*counter)

	for _, e := range entries {
		ac, ok := actions[e.Cluster]
		if !ok {
			ac = newCounter()
			actions[e.Cluster] = ac
			ingredients[e.Cluster] = newCounter()
		}
		ic := ingredients[e.Cluster]
		if e.Tree == nil {
			continue
		}
		for _, n := range e.Tree.Nodes {
			ac.add(n.Action)
			// coreferent spans on one node share an identity
			seen := make(map[int]bool, len(n.Ingredients))
			for _, idx := range n.Ingredients {
				if seen[idx] {
					continue
				}
				seen[idx] = true
				ic.add(e.Tree.Ingredients[idx].Label)
			}
		}
	}

	result := make(models.AnalysisResult, len(actions))
	for cluster, ac := range actions {
		result[cluster] = models.ClusterHistogram{
			Actions:     ac.top(TopN),
			Ingredients: ingredients[cluster].top(TopN),
		}
	}
	return result
}

// CountWithFilter returns how many trees apply action to ingredient in at
// least one node.
func CountWithFilter(trees []*models.WorkflowTree, action, ingredient string) int {
	action, ingredient = NormalizeLabel(action), NormalizeLabel(ingredient)
	count := 0
	for _, t := range trees {
		if treeMatches(t, action, ingredient) {
			count++
		}
	}
	return count
}

// CountWithFilterByCluster applies the CountWithFilter predicate per cluster.
// Every cluster present in entries appears in the result, possibly with zero.
func CountWithFilterByCluster(entries []models.TreeEntry, action, ingredient string) map[int]int {
	action, ingredient = NormalizeLabel(action), NormalizeLabel(ingredient)
	counts := make(map[int]int)
	for _, e := range entries {
		if treeMatches(e.Tree, action, ingredient) {
			counts[e.Cluster]++
		} else if _, ok := counts[e.Cluster]; !ok {
			counts[e.Cluster] = 0
		}
	}
	return counts
}

// treeMatches expects normalized labels.
func treeMatches(t *models.WorkflowTree, action, ingredient string) bool {
	if t == nil {
		return false
	}
	for _, n := range t.Nodes {
		if n.Action != action {
			continue
		}
		for _, idx := range n.Ingredients {
			if t.Ingredients[idx].Label == ingredient {
				return true
			}
		}
	}
	return false
}
