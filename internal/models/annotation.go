package models

// ActionSpan marks a cooking verb in the instruction text.
type ActionSpan struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
	// Step is the annotator-declared sequence position of the action.
	Step int `json:"step" yaml:"step"`
}

// IngredientSpan marks an ingredient mention in the instruction text.
type IngredientSpan struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
}

// Link connects an action span to a span it operates on. To may name an
// ingredient span or another action span (whose output is consumed).
type Link struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Coreference groups ingredient spans that refer to the same ingredient.
type Coreference struct {
	Spans []string `json:"spans" yaml:"spans"`
}

// Annotation is the crowd-sourced markup of one recipe's instructions.
type Annotation struct {
	RecipeID     string           `json:"origin_id" yaml:"origin_id"`
	Actions      []ActionSpan     `json:"actions" yaml:"actions"`
	Ingredients  []IngredientSpan `json:"ingredients" yaml:"ingredients"`
	Links        []Link           `json:"links" yaml:"links"`
	Coreferences []Coreference    `json:"coreferences,omitempty" yaml:"coreferences,omitempty"`
}
