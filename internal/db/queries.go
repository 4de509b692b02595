// Package db provides SurrealDB query functions for recipes, annotations and
// clusterings.
package db

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/recipescape-go/internal/metrics"
	"github.com/raphaelgruber/recipescape-go/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// DishCount represents a dish with its recipe count.
type DishCount struct {
	GroupName string `json:"group_name"`
	Count     int    `json:"count"`
}

// annotationRow is an annotation record with its recipe fetched inline.
type annotationRow struct {
	OriginID     string                  `json:"origin_id"`
	Recipe       models.Recipe           `json:"recipe"`
	Actions      []models.ActionSpan     `json:"actions"`
	Ingredients  []models.IngredientSpan `json:"ingredients"`
	Links        []models.Link           `json:"links"`
	Coreferences []models.Coreference    `json:"coreferences"`
}

func (r annotationRow) annotated() models.AnnotatedRecipe {
	return models.AnnotatedRecipe{
		Recipe: r.Recipe,
		Annotation: &models.Annotation{
			RecipeID:     r.OriginID,
			Actions:      r.Actions,
			Ingredients:  r.Ingredients,
			Links:        r.Links,
			Coreferences: r.Coreferences,
		},
	}
}

// rows extracts the first statement's result, never returning nil.
func rows[T any](results *[]surrealdb.QueryResult[[]T]) []T {
	if results == nil || len(*results) == 0 || (*results)[0].Result == nil {
		return []T{}
	}
	return (*results)[0].Result
}

// QueryRecipeByOriginID retrieves a recipe by its origin id.
// Returns nil if not found.
func (c *Client) QueryRecipeByOriginID(ctx context.Context, id string) (*models.Recipe, error) {
	defer c.metrics.Time(metrics.OpDBQuery)()

	results, err := surrealdb.Query[[]models.Recipe](ctx, c.db, `
		SELECT * FROM type::record("recipe", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	recipes := rows(results)
	if len(recipes) == 0 {
		return nil, nil
	}
	return &recipes[0], nil
}

// QueryRecipesByDish returns the annotated recipes of a dish, ordered by origin id.
func (c *Client) QueryRecipesByDish(ctx context.Context, dish string) ([]models.Recipe, error) {
	defer c.metrics.Time(metrics.OpDBQuery)()

	results, err := surrealdb.Query[[]models.Recipe](ctx, c.db, `
		SELECT * FROM recipe
		WHERE group_name = $dish
			AND id IN (SELECT VALUE recipe FROM annotation WHERE recipe.group_name = $dish)
		ORDER BY origin_id
	`, map[string]any{"dish": dish})
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return rows(results), nil
}

// QueryAnnotationsByDish returns every annotation of a dish joined with its
// recipe, ordered by origin id.
func (c *Client) QueryAnnotationsByDish(ctx context.Context, dish string) ([]models.AnnotatedRecipe, error) {
	defer c.metrics.Time(metrics.OpDBQuery)()

	results, err := surrealdb.Query[[]annotationRow](ctx, c.db, `
		SELECT * FROM annotation
		WHERE recipe.group_name = $dish
		ORDER BY origin_id
		FETCH recipe
	`, map[string]any{"dish": dish})
	if err != nil {
		return nil, fmt.Errorf("annotations by dish: %w", err)
	}
	return toAnnotated(rows(results)), nil
}

// QueryAnnotationsByRecipeIDs returns the annotations of the given recipes
// joined with their recipe. Unknown ids are skipped.
func (c *Client) QueryAnnotationsByRecipeIDs(ctx context.Context, ids []string) ([]models.AnnotatedRecipe, error) {
	if len(ids) == 0 {
		return []models.AnnotatedRecipe{}, nil
	}
	defer c.metrics.Time(metrics.OpDBQuery)()

	results, err := surrealdb.Query[[]annotationRow](ctx, c.db, `
		SELECT * FROM annotation
		WHERE origin_id IN $ids
		ORDER BY origin_id
		FETCH recipe
	`, map[string]any{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("annotations by ids: %w", err)
	}
	return toAnnotated(rows(results)), nil
}

func toAnnotated(rs []annotationRow) []models.AnnotatedRecipe {
	out := make([]models.AnnotatedRecipe, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.annotated())
	}
	return out
}

// QueryClustering returns the first clustering run of dish whose title
// contains title, case-insensitively. Runs are ordered by creation time.
// Returns nil if none matches.
func (c *Client) QueryClustering(ctx context.Context, dish, title string) (*models.Clustering, error) {
	defer c.metrics.Time(metrics.OpDBQuery)()

	results, err := surrealdb.Query[[]models.Clustering](ctx, c.db, `
		SELECT * FROM clustering
		WHERE dish_name = $dish
			AND string::contains(string::lowercase(title), string::lowercase($title))
		ORDER BY created ASC, title ASC
		LIMIT 1
	`, map[string]any{"dish": dish, "title": title})
	if err != nil {
		return nil, fmt.Errorf("get clustering: %w", err)
	}

	clusterings := rows(results)
	if len(clusterings) == 0 {
		return nil, nil
	}
	return &clusterings[0], nil
}

// QueryListClusterings returns every clustering run of a dish.
func (c *Client) QueryListClusterings(ctx context.Context, dish string) ([]models.Clustering, error) {
	defer c.metrics.Time(metrics.OpDBQuery)()

	results, err := surrealdb.Query[[]models.Clustering](ctx, c.db, `
		SELECT * FROM clustering WHERE dish_name = $dish ORDER BY created ASC, title ASC
	`, map[string]any{"dish": dish})
	if err != nil {
		return nil, fmt.Errorf("list clusterings: %w", err)
	}
	return rows(results), nil
}

// QueryListDishes returns dish names with recipe counts.
func (c *Client) QueryListDishes(ctx context.Context) ([]DishCount, error) {
	defer c.metrics.Time(metrics.OpDBQuery)()

	results, err := surrealdb.Query[[]DishCount](ctx, c.db, `
		SELECT group_name, count() AS count FROM recipe GROUP BY group_name ORDER BY group_name
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("list dishes: %w", err)
	}
	return rows(results), nil
}

// QueryUpsertRecipe creates or updates a recipe keyed by its origin id.
func (c *Client) QueryUpsertRecipe(ctx context.Context, r models.Recipe) error {
	defer c.metrics.Time(metrics.OpDBQuery)()

	_, err := surrealdb.Query[any](ctx, c.db, `
		UPSERT type::record("recipe", $origin_id) MERGE {
			origin_id: $origin_id,
			title: $title,
			group_name: $group_name,
			ingredients: $ingredients,
			instruction: $instruction
		}
	`, map[string]any{
		"origin_id":   r.OriginID,
		"title":       r.Title,
		"group_name":  r.GroupName,
		"ingredients": r.Ingredients,
		"instruction": r.Instruction,
	})
	if err != nil {
		return fmt.Errorf("upsert recipe %s: %w", r.OriginID, wrapQueryError(err))
	}
	return nil
}

// QueryUpsertAnnotation creates or replaces the annotation of a recipe.
// The recipe must already exist.
func (c *Client) QueryUpsertAnnotation(ctx context.Context, a models.Annotation) error {
	defer c.metrics.Time(metrics.OpDBQuery)()

	_, err := surrealdb.Query[any](ctx, c.db, `
		UPSERT type::record("annotation", $origin_id) MERGE {
			origin_id: $origin_id,
			recipe: type::record("recipe", $origin_id),
			actions: $actions,
			ingredients: $ingredients,
			links: $links,
			coreferences: $coreferences
		}
	`, map[string]any{
		"origin_id":    a.RecipeID,
		"actions":      orEmpty(a.Actions),
		"ingredients":  orEmpty(a.Ingredients),
		"links":        orEmpty(a.Links),
		"coreferences": orEmpty(a.Coreferences),
	})
	if err != nil {
		return fmt.Errorf("upsert annotation %s: %w", a.RecipeID, wrapQueryError(err))
	}
	return nil
}

// QueryUpsertClustering creates or replaces a clustering run, keyed by
// dish and title. The creation time of an existing run is kept.
func (c *Client) QueryUpsertClustering(ctx context.Context, cl models.Clustering) error {
	defer c.metrics.Time(metrics.OpDBQuery)()

	_, err := surrealdb.Query[any](ctx, c.db, `
		UPSERT type::record("clustering", $key) MERGE {
			dish_name: $dish_name,
			title: $title,
			points: $points
		}
	`, map[string]any{
		"key":       cl.DishName + "|" + cl.Title,
		"dish_name": cl.DishName,
		"title":     cl.Title,
		"points":    orEmpty(cl.Points),
	})
	if err != nil {
		return fmt.Errorf("upsert clustering %q: %w", cl.Title, wrapQueryError(err))
	}
	return nil
}

// orEmpty keeps nil slices from being stored as NONE in array fields.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
