// Package models defines data structures for recipes, their annotations and
// the workflow trees derived from them.
package models

// Recipe is a scraped recipe. OriginID is the stable external identifier and
// is unrelated to the storage record id.
type Recipe struct {
	OriginID    string `json:"origin_id" yaml:"origin_id"`
	Title       string `json:"title" yaml:"title"`
	GroupName   string `json:"group_name" yaml:"group_name"` // dish category
	Ingredients string `json:"ingredients" yaml:"ingredients"`
	Instruction string `json:"instruction" yaml:"instruction"`
}

// AnnotatedRecipe joins a recipe with its (single) annotation.
type AnnotatedRecipe struct {
	Recipe     Recipe      `json:"recipe"`
	Annotation *Annotation `json:"annotation"`
}
