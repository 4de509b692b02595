package workflow

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/raphaelgruber/recipescape-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cookie = models.Recipe{OriginID: "r1", Title: "Nutty cookies", GroupName: "chocolate cookie"}

// cookieAnnotation: chop nuts, mix flour + butter + chopped nuts, bake the
// dough with "it" (butter again). Sugar is mentioned but never used.
func cookieAnnotation() *models.Annotation {
	return &models.Annotation{
		RecipeID: "r1",
		Actions: []models.ActionSpan{
			{ID: "a1", Label: "Mix", Start: 10, End: 13, Step: 1},
			{ID: "a2", Label: "Bake", Start: 40, End: 44, Step: 2},
			{ID: "a3", Label: "chop", Start: 0, End: 4, Step: 0},
		},
		Ingredients: []models.IngredientSpan{
			{ID: "i0", Label: "Nuts", Start: 5, End: 9},
			{ID: "i1", Label: "flour", Start: 15, End: 20},
			{ID: "i2", Label: "butter", Start: 22, End: 28},
			{ID: "i3", Label: "it", Start: 50, End: 52},
			{ID: "i4", Label: "sugar", Start: 60, End: 65},
		},
		Links: []models.Link{
			{From: "a3", To: "i0"},
			{From: "a1", To: "i2"},
			{From: "a1", To: "i1"},
			{From: "a1", To: "a3"},
			{From: "a2", To: "a1"},
			{From: "a2", To: "i3"},
		},
		Coreferences: []models.Coreference{
			{Spans: []string{"i3", "i2"}},
		},
	}
}

func TestMakeTree_Structure(t *testing.T) {
	tree, err := MakeTree(cookie, cookieAnnotation())
	require.NoError(t, err)

	assert.Equal(t, "r1", tree.RecipeID)
	require.Len(t, tree.Nodes, 3)
	assert.Equal(t, []string{"chop", "mix", "bake"}, Flatten(tree).Actions)
	assert.Equal(t, []models.Edge{{From: 0, To: 1}, {From: 1, To: 2}}, tree.Edges)
	assert.Equal(t, []int{0}, tree.Roots)
	assert.Zero(t, tree.Dropped)

	labels := make([]string, 0, len(tree.Ingredients))
	for _, ing := range tree.Ingredients {
		labels = append(labels, ing.Label)
	}
	assert.Equal(t, []string{"nuts", "flour", "butter", "sugar"}, labels)

	assert.Equal(t, []string{"nuts"}, tree.IngredientLabels(tree.Nodes[0]))
	assert.Equal(t, []string{"flour", "butter"}, tree.IngredientLabels(tree.Nodes[1]))
	assert.Equal(t, []string{"butter"}, tree.IngredientLabels(tree.Nodes[2]))
	assert.Equal(t, []int{1}, tree.Nodes[2].Inputs)
	assert.Equal(t, []string{"i2", "i3"}, tree.Ingredients[2].Spans)
}

func TestMakeTree_NilAnnotation(t *testing.T) {
	_, err := MakeTree(cookie, nil)
	assert.ErrorIs(t, err, ErrNoAnnotation)

	_, err = MakeNode(cookie, nil)
	assert.ErrorIs(t, err, ErrNoAnnotation)
}

func TestMakeTree_Idempotent(t *testing.T) {
	first, err := MakeTree(cookie, cookieAnnotation())
	require.NoError(t, err)
	second, err := MakeTree(cookie, cookieAnnotation())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Input order of spans and links does not affect the result.
	shuffled := cookieAnnotation()
	slices.Reverse(shuffled.Actions)
	slices.Reverse(shuffled.Ingredients)
	slices.Reverse(shuffled.Links)
	third, err := MakeTree(cookie, shuffled)
	require.NoError(t, err)
	if diff := cmp.Diff(first, third); diff != "" {
		t.Errorf("tree depends on input order (-want +got):\n%s", diff)
	}
}

func TestMakeTree_DoesNotMutateAnnotation(t *testing.T) {
	ann := cookieAnnotation()
	_, err := MakeTree(cookie, ann)
	require.NoError(t, err)
	if diff := cmp.Diff(cookieAnnotation(), ann); diff != "" {
		t.Errorf("annotation mutated (-want +got):\n%s", diff)
	}
}

func TestMakeTree_DanglingLinks(t *testing.T) {
	clean, err := MakeTree(cookie, cookieAnnotation())
	require.NoError(t, err)

	ann := cookieAnnotation()
	ann.Links = append(ann.Links,
		models.Link{From: "a1", To: "missing"},
		models.Link{From: "ghost", To: "i1"},
		models.Link{From: "i1", To: "a1"}, // ingredients do not act
	)

	tree, err := MakeTree(cookie, ann)
	require.NoError(t, err)
	assert.Equal(t, 3, tree.Dropped)

	tree.Dropped = 0
	assert.Equal(t, clean, tree)
}

func TestMakeTree_BackAndSelfLinksDropped(t *testing.T) {
	ann := cookieAnnotation()
	ann.Links = append(ann.Links,
		models.Link{From: "a1", To: "a2"}, // mix cannot consume the later bake
		models.Link{From: "a1", To: "a1"},
	)

	tree, err := MakeTree(cookie, ann)
	require.NoError(t, err)
	assert.Equal(t, 2, tree.Dropped)
	assert.Equal(t, []models.Edge{{From: 0, To: 1}, {From: 1, To: 2}}, tree.Edges)
}

func TestMakeTree_UnlinkedActionsFormForest(t *testing.T) {
	ann := &models.Annotation{
		Actions: []models.ActionSpan{
			{ID: "a", Label: "preheat", Start: 0, Step: 0},
			{ID: "b", Label: "whisk", Start: 10, Step: 1},
			{ID: "c", Label: "pour", Start: 20, Step: 2},
		},
		Links: []models.Link{{From: "c", To: "b"}},
	}

	tree, err := MakeTree(cookie, ann)
	require.NoError(t, err)
	assert.Len(t, tree.Nodes, 3)
	assert.Equal(t, []models.Edge{{From: 1, To: 2}}, tree.Edges)
	assert.Equal(t, []int{0, 1}, tree.Roots)
	assert.Empty(t, tree.Ingredients)
}

func TestMakeTree_MalformedSpans(t *testing.T) {
	ann := &models.Annotation{
		Actions: []models.ActionSpan{
			{ID: "a", Label: "stir", Start: 5},
			{ID: "a", Label: "fold", Start: 30}, // duplicate id, later offset
			{ID: "b", Label: "  ", Start: 40},   // no label
			{ID: "", Label: "serve", Start: 50},
		},
		Ingredients: []models.IngredientSpan{
			{ID: "a", Label: "egg", Start: 1}, // collides with an action id
			{ID: "x", Label: "Milk", Start: 7},
		},
		Links: []models.Link{{From: "a", To: "x"}, {From: "b", To: "x"}},
		Coreferences: []models.Coreference{
			{Spans: []string{"x", "nope"}},
		},
	}

	tree, err := MakeTree(cookie, ann)
	require.NoError(t, err)
	require.Len(t, tree.Nodes, 1)
	assert.Equal(t, "stir", tree.Nodes[0].Action)
	assert.Equal(t, []string{"milk"}, tree.IngredientLabels(tree.Nodes[0]))
	// fold, blank label, empty id, colliding ingredient, link from b, coref "nope"
	assert.Equal(t, 6, tree.Dropped)
}

func TestMakeTree_StepTiesBrokenByOffset(t *testing.T) {
	ann := &models.Annotation{
		Actions: []models.ActionSpan{
			{ID: "late", Label: "drain", Start: 90, Step: 1},
			{ID: "early", Label: "boil", Start: 10, Step: 1},
			{ID: "first", Label: "wash", Start: 200, Step: 0},
		},
	}

	node, err := MakeNode(cookie, ann)
	require.NoError(t, err)
	assert.Equal(t, []string{"wash", "boil", "drain"}, node.Actions)
}

func TestMakeNode_CoreferenceDeduplicated(t *testing.T) {
	node, err := MakeNode(cookie, cookieAnnotation())
	require.NoError(t, err)

	assert.Equal(t, []string{"nuts", "flour", "butter", "sugar"}, node.Ingredients)
	assert.NotContains(t, node.Ingredients, "it")
}

func TestMakeNode_AgreesWithMakeTree(t *testing.T) {
	malformed := cookieAnnotation()
	malformed.Links = append(malformed.Links, models.Link{From: "a2", To: "zzz"})
	malformed.Actions = append(malformed.Actions, models.ActionSpan{ID: "a9", Label: "cool", Start: 70, Step: 1})

	sameLabel := &models.Annotation{
		Actions: []models.ActionSpan{{ID: "a", Label: "add", Start: 0}, {ID: "b", Label: "add", Start: 9}},
		Ingredients: []models.IngredientSpan{
			{ID: "x", Label: "salt", Start: 3},
			{ID: "y", Label: "Salt", Start: 12},
		},
		Links: []models.Link{{From: "a", To: "x"}, {From: "b", To: "y"}},
	}

	cases := map[string]*models.Annotation{
		"cookie":     cookieAnnotation(),
		"malformed":  malformed,
		"empty":      {},
		"same label": sameLabel,
	}

	for name, ann := range cases {
		t.Run(name, func(t *testing.T) {
			tree, err := MakeTree(cookie, ann)
			require.NoError(t, err)
			node, err := MakeNode(cookie, ann)
			require.NoError(t, err)

			assert.Equal(t, Flatten(tree), node)

			actions := make([]string, 0, len(tree.Nodes))
			for _, n := range tree.Nodes {
				actions = append(actions, n.Action)
			}
			assert.Equal(t, actions, node.Actions)
		})
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Chop", "chop"},
		{"  brown   Sugar ", "brown sugar"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeLabel(tt.in), "NormalizeLabel(%q)", tt.in)
	}
}
