package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/raphaelgruber/recipescape-go/internal/db"
	"github.com/raphaelgruber/recipescape-go/internal/models"
)

// fakeStore is an in-memory Store and ImportStore.
type fakeStore struct {
	mu          sync.Mutex
	recipes     map[string]models.Recipe
	annotations map[string]models.Annotation
	clusterings []models.Clustering
	dishCalls   int
	failWith    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		recipes:     make(map[string]models.Recipe),
		annotations: make(map[string]models.Annotation),
	}
}

func (f *fakeStore) add(r models.Recipe, a *models.Annotation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recipes[r.OriginID] = r
	if a != nil {
		f.annotations[r.OriginID] = *a
	}
}

func (f *fakeStore) sortedIDs() []string {
	ids := make([]string, 0, len(f.recipes))
	for id := range f.recipes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (f *fakeStore) QueryAnnotationsByDish(_ context.Context, dish string) ([]models.AnnotatedRecipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dishCalls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []models.AnnotatedRecipe{}
	for _, id := range f.sortedIDs() {
		r := f.recipes[id]
		a, ok := f.annotations[id]
		if r.GroupName != dish || !ok {
			continue
		}
		out = append(out, models.AnnotatedRecipe{Recipe: r, Annotation: &a})
	}
	return out, nil
}

func (f *fakeStore) QueryAnnotationsByRecipeIDs(_ context.Context, ids []string) ([]models.AnnotatedRecipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.AnnotatedRecipe{}
	for _, id := range f.sortedIDs() {
		a, ok := f.annotations[id]
		if !ok || !slices.Contains(ids, id) {
			continue
		}
		out = append(out, models.AnnotatedRecipe{Recipe: f.recipes[id], Annotation: &a})
	}
	return out, nil
}

func (f *fakeStore) QueryRecipeByOriginID(_ context.Context, id string) (*models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.recipes[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *fakeStore) QueryRecipesByDish(_ context.Context, dish string) ([]models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Recipe{}
	for _, id := range f.sortedIDs() {
		if _, ok := f.annotations[id]; ok && f.recipes[id].GroupName == dish {
			out = append(out, f.recipes[id])
		}
	}
	return out, nil
}

func (f *fakeStore) QueryClustering(_ context.Context, dish, title string) (*models.Clustering, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.clusterings {
		if c.DishName == dish && strings.Contains(strings.ToLower(c.Title), strings.ToLower(title)) {
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) QueryListClusterings(_ context.Context, dish string) ([]models.Clustering, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Clustering{}
	for _, c := range f.clusterings {
		if c.DishName == dish {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) QueryListDishes(_ context.Context) ([]db.DishCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[string]int{}
	for _, r := range f.recipes {
		counts[r.GroupName]++
	}
	out := []db.DishCount{}
	for name, n := range counts {
		out = append(out, db.DishCount{GroupName: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupName < out[j].GroupName })
	return out, nil
}

func (f *fakeStore) QueryUpsertRecipe(_ context.Context, r models.Recipe) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recipes[r.OriginID] = r
	return nil
}

func (f *fakeStore) QueryUpsertAnnotation(_ context.Context, a models.Annotation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.recipes[a.RecipeID]; !ok {
		return fmt.Errorf("recipe %s missing", a.RecipeID)
	}
	f.annotations[a.RecipeID] = a
	return nil
}

func (f *fakeStore) QueryUpsertClustering(_ context.Context, c models.Clustering) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.clusterings {
		if existing.DishName == c.DishName && existing.Title == c.Title {
			f.clusterings[i] = c
			return nil
		}
	}
	f.clusterings = append(f.clusterings, c)
	return nil
}

// linear builds a recipe whose actions form a chain: each action consumes
// the previous action's output plus its own ingredients.
func linear(id, dish string, steps ...[]string) (models.Recipe, *models.Annotation) {
	ann := &models.Annotation{RecipeID: id}
	offset := 0
	for i, s := range steps {
		actionID := fmt.Sprintf("a%d", i)
		ann.Actions = append(ann.Actions, models.ActionSpan{ID: actionID, Label: s[0], Start: offset, End: offset + len(s[0]), Step: i})
		offset += 20
		if i > 0 {
			ann.Links = append(ann.Links, models.Link{From: actionID, To: fmt.Sprintf("a%d", i-1)})
		}
		for j, ing := range s[1:] {
			ingID := fmt.Sprintf("i%d_%d", i, j)
			ann.Ingredients = append(ann.Ingredients, models.IngredientSpan{ID: ingID, Label: ing, Start: offset, End: offset + len(ing)})
			ann.Links = append(ann.Links, models.Link{From: actionID, To: ingID})
			offset += 20
		}
	}
	return models.Recipe{OriginID: id, Title: id, GroupName: dish}, ann
}
