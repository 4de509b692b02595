package models

// Node is an action in a workflow tree. Indices refer into the owning
// WorkflowTree's Nodes and Ingredients slices.
type Node struct {
	Index  int    `json:"index"`
	SpanID string `json:"span_id"`
	Action string `json:"action"`
	Step   int    `json:"step"`
	Start  int    `json:"start"`

	Ingredients []int `json:"ingredients"` // consumed ingredient identities
	Inputs      []int `json:"inputs"`      // nodes whose output this action consumes
}

// Ingredient is one ingredient identity after coreference resolution.
type Ingredient struct {
	Index int      `json:"index"`
	Label string   `json:"label"`
	Spans []string `json:"spans"`
}

// Edge records that node From produces input for node To.
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// WorkflowTree is the action graph of one recipe. It is a forest when the
// annotation links are incomplete. Nodes are stored in traversal order.
type WorkflowTree struct {
	RecipeID    string       `json:"recipe_id"`
	Nodes       []Node       `json:"nodes"`
	Ingredients []Ingredient `json:"ingredients"`
	Edges       []Edge       `json:"edges"`
	Roots       []int        `json:"roots"`

	// Dropped counts malformed annotation fragments skipped while building.
	Dropped int `json:"dropped,omitempty"`
}

// IngredientLabels returns the labels of the ingredients consumed by n.
func (t *WorkflowTree) IngredientLabels(n Node) []string {
	labels := make([]string, 0, len(n.Ingredients))
	for _, idx := range n.Ingredients {
		labels = append(labels, t.Ingredients[idx].Label)
	}
	return labels
}

// NodeSummary is the flattened view of a workflow tree.
type NodeSummary struct {
	Actions     []string `json:"actions"`
	Ingredients []string `json:"ingredients"`
}

// RecipeTree pairs a recipe id with its workflow tree.
type RecipeTree struct {
	ID   string        `json:"id"`
	Tree *WorkflowTree `json:"tree"`
}

// RecipeNodes pairs a recipe id with its node summary.
type RecipeNodes struct {
	ID          string   `json:"id"`
	Actions     []string `json:"actions"`
	Ingredients []string `json:"ingredients"`
}
