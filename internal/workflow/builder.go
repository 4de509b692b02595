package workflow

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/raphaelgruber/recipescape-go/internal/models"
)

// ErrNoAnnotation is returned when a recipe has no annotation to build from.
var ErrNoAnnotation = errors.New("annotation is missing")

// NormalizeLabel canonicalizes an action or ingredient label for comparison.
func NormalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// MakeTree builds the workflow tree of a recipe from its annotation.
//
// Malformed annotation data never fails the build: dangling or inconsistent
// links, unlabeled spans and duplicate span ids are dropped and counted in
// WorkflowTree.Dropped. Only a missing annotation is an error.
func MakeTree(recipe models.Recipe, ann *models.Annotation) (*models.WorkflowTree, error) {
	if ann == nil {
		return nil, fmt.Errorf("recipe %q: %w", recipe.OriginID, ErrNoAnnotation)
	}

	b := newBuilder(ann)
	tree := b.build()
	tree.RecipeID = recipe.OriginID
	return tree, nil
}

// MakeNode builds the tree and flattens it into a node summary.
func MakeNode(recipe models.Recipe, ann *models.Annotation) (models.NodeSummary, error) {
	tree, err := MakeTree(recipe, ann)
	if err != nil {
		return models.NodeSummary{}, err
	}
	return Flatten(tree), nil
}

// Flatten lists the action labels in traversal order and the ingredient
// labels in order of first appearance, without duplicates.
func Flatten(tree *models.WorkflowTree) models.NodeSummary {
	summary := models.NodeSummary{
		Actions:     make([]string, 0, len(tree.Nodes)),
		Ingredients: make([]string, 0, len(tree.Ingredients)),
	}
	for _, n := range tree.Nodes {
		summary.Actions = append(summary.Actions, n.Action)
	}
	seen := make(map[string]bool, len(tree.Ingredients))
	for _, ing := range tree.Ingredients {
		if seen[ing.Label] {
			continue
		}
		seen[ing.Label] = true
		summary.Ingredients = append(summary.Ingredients, ing.Label)
	}
	return summary
}

// attachment is an ingredient identity consumed by an action, keyed by the
// offset of the earliest span through which the action references it.
type attachment struct {
	root  int
	start int
}

type builder struct {
	ann *models.Annotation

	actions   []models.ActionSpan // traversal order
	actionIdx map[string]int      // span id -> node index

	ingredients   []models.IngredientSpan // offset order
	ingredientPos map[string]int          // span id -> position in ingredients
	parent        []int                   // disjoint sets over ingredient positions

	dropped int
}

func newBuilder(ann *models.Annotation) *builder {
	return &builder{ann: ann}
}

func (b *builder) build() *models.WorkflowTree {
	b.collectActions()
	b.collectIngredients()
	b.resolveCoreferences()

	attached := make([][]attachment, len(b.actions))
	edgeSet := make(map[models.Edge]bool)

	for _, link := range b.ann.Links {
		consumer, ok := b.actionIdx[link.From]
		if !ok {
			b.dropped++
			continue
		}
		if producer, ok := b.actionIdx[link.To]; ok {
			// Output must flow forward in the sequence; this also rejects self links.
			if producer >= consumer {
				b.dropped++
				continue
			}
			edgeSet[models.Edge{From: producer, To: consumer}] = true
			continue
		}
		if pos, ok := b.ingredientPos[link.To]; ok {
			attached[consumer] = addAttachment(attached[consumer], b.find(pos), b.ingredients[pos].Start)
			continue
		}
		b.dropped++
	}

	tree := &models.WorkflowTree{
		Nodes:       make([]models.Node, len(b.actions)),
		Ingredients: []models.Ingredient{},
		Edges:       make([]models.Edge, 0, len(edgeSet)),
		Roots:       []int{},
	}

	// Ingredient identities are numbered by first appearance in traversal,
	// then unattached mentions follow in offset order.
	identity := make(map[int]int)
	assign := func(root int) int {
		if idx, ok := identity[root]; ok {
			return idx
		}
		idx := len(tree.Ingredients)
		identity[root] = idx
		tree.Ingredients = append(tree.Ingredients, models.Ingredient{
			Index: idx,
			Label: b.ingredients[root].Label,
			Spans: []string{},
		})
		return idx
	}

	for i, span := range b.actions {
		slices.SortFunc(attached[i], func(x, y attachment) int {
			return cmp.Or(cmp.Compare(x.start, y.start), cmp.Compare(x.root, y.root))
		})
		ings := make([]int, 0, len(attached[i]))
		for _, a := range attached[i] {
			ings = append(ings, assign(a.root))
		}
		tree.Nodes[i] = models.Node{
			Index:       i,
			SpanID:      span.ID,
			Action:      span.Label,
			Step:        span.Step,
			Start:       span.Start,
			Ingredients: ings,
			Inputs:      []int{},
		}
	}
	for pos := range b.ingredients {
		idx := assign(b.find(pos))
		tree.Ingredients[idx].Spans = append(tree.Ingredients[idx].Spans, b.ingredients[pos].ID)
	}

	for e := range edgeSet {
		tree.Edges = append(tree.Edges, e)
	}
	slices.SortFunc(tree.Edges, func(x, y models.Edge) int {
		return cmp.Or(cmp.Compare(x.From, y.From), cmp.Compare(x.To, y.To))
	})
	for _, e := range tree.Edges {
		tree.Nodes[e.To].Inputs = append(tree.Nodes[e.To].Inputs, e.From)
	}
	for i, n := range tree.Nodes {
		if len(n.Inputs) == 0 {
			tree.Roots = append(tree.Roots, i)
		}
	}

	tree.Dropped = b.dropped
	return tree
}

func addAttachment(list []attachment, root, start int) []attachment {
	for i, a := range list {
		if a.root == root {
			if start < a.start {
				list[i].start = start
			}
			return list
		}
	}
	return append(list, attachment{root: root, start: start})
}

// collectActions keeps labeled actions with unique ids and orders them by
// declared step, breaking ties by span offset.
func (b *builder) collectActions() {
	spans := make([]models.ActionSpan, 0, len(b.ann.Actions))
	for _, s := range b.ann.Actions {
		s.Label = NormalizeLabel(s.Label)
		if s.ID == "" || s.Label == "" {
			b.dropped++
			continue
		}
		spans = append(spans, s)
	}
	slices.SortStableFunc(spans, func(x, y models.ActionSpan) int {
		return cmp.Or(cmp.Compare(x.Start, y.Start), cmp.Compare(x.ID, y.ID))
	})

	seen := make(map[string]bool, len(spans))
	b.actions = spans[:0]
	for _, s := range spans {
		if seen[s.ID] {
			b.dropped++
			continue
		}
		seen[s.ID] = true
		b.actions = append(b.actions, s)
	}

	slices.SortStableFunc(b.actions, func(x, y models.ActionSpan) int {
		return cmp.Or(cmp.Compare(x.Step, y.Step), cmp.Compare(x.Start, y.Start), cmp.Compare(x.ID, y.ID))
	})
	b.actionIdx = make(map[string]int, len(b.actions))
	for i, s := range b.actions {
		b.actionIdx[s.ID] = i
	}
}

// collectIngredients keeps labeled ingredient spans in offset order. A span
// whose id is already taken by an action or earlier ingredient is dropped.
func (b *builder) collectIngredients() {
	spans := make([]models.IngredientSpan, 0, len(b.ann.Ingredients))
	for _, s := range b.ann.Ingredients {
		s.Label = NormalizeLabel(s.Label)
		if s.ID == "" || s.Label == "" {
			b.dropped++
			continue
		}
		spans = append(spans, s)
	}
	slices.SortStableFunc(spans, func(x, y models.IngredientSpan) int {
		return cmp.Or(cmp.Compare(x.Start, y.Start), cmp.Compare(x.ID, y.ID))
	})

	b.ingredients = spans[:0]
	b.ingredientPos = make(map[string]int, len(spans))
	for _, s := range spans {
		_, isAction := b.actionIdx[s.ID]
		_, dup := b.ingredientPos[s.ID]
		if isAction || dup {
			b.dropped++
			continue
		}
		b.ingredientPos[s.ID] = len(b.ingredients)
		b.ingredients = append(b.ingredients, s)
	}

	b.parent = make([]int, len(b.ingredients))
	for i := range b.parent {
		b.parent[i] = i
	}
}

func (b *builder) resolveCoreferences() {
	for _, group := range b.ann.Coreferences {
		first := -1
		for _, id := range group.Spans {
			pos, ok := b.ingredientPos[id]
			if !ok {
				b.dropped++
				continue
			}
			if first < 0 {
				first = pos
				continue
			}
			b.union(first, pos)
		}
	}
}

func (b *builder) find(x int) int {
	for b.parent[x] != x {
		b.parent[x] = b.parent[b.parent[x]]
		x = b.parent[x]
	}
	return x
}

// union keeps the earliest span as the set representative, so an identity
// is always labeled by its first mention.
func (b *builder) union(x, y int) {
	rx, ry := b.find(x), b.find(y)
	switch {
	case rx == ry:
	case rx < ry:
		b.parent[ry] = rx
	default:
		b.parent[rx] = ry
	}
}
