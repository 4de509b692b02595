package models

// LabelCount is a label with its occurrence count.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ClusterHistogram holds the most frequent actions and ingredients of a cluster.
type ClusterHistogram struct {
	Actions     []LabelCount `json:"actions"`
	Ingredients []LabelCount `json:"ingredients"`
}

// AnalysisResult maps a cluster number to its histogram.
type AnalysisResult map[int]ClusterHistogram

// TreeEntry is a workflow tree together with its cluster and recipe id.
type TreeEntry struct {
	Tree     *WorkflowTree
	Cluster  int
	RecipeID string
}

// ActionIngredientCount is the result of a filtered co-occurrence count.
type ActionIngredientCount struct {
	Action     string      `json:"action"`
	Ingredient string      `json:"ingredient"`
	Count      int         `json:"count"`
	ByCluster  map[int]int `json:"by_cluster"`
}
