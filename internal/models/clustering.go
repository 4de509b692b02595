package models

// Point assigns one recipe to a cluster within a clustering run.
type Point struct {
	RecipeID  string `json:"recipe_id" yaml:"recipe_id"` // Recipe.OriginID
	ClusterNo int    `json:"cluster_no" yaml:"cluster_no"`
}

// Clustering is one clustering run over the recipes of a dish.
// Title distinguishes runs (methods, parameters) for the same dish.
type Clustering struct {
	DishName string  `json:"dish_name" yaml:"dish_name"`
	Title    string  `json:"title" yaml:"title"`
	Points   []Point `json:"points" yaml:"points"`
}

// Selection is a recipe picked by cluster membership.
type Selection struct {
	RecipeID  string `json:"recipe_id"`
	ClusterNo int    `json:"cluster_no"`
}
