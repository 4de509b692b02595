// Package parser decodes recipe dataset files.
package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/raphaelgruber/recipescape-go/internal/models"
	"gopkg.in/yaml.v3"
)

// Dataset is the content of one dataset file: recipes with their optional
// annotation, and clustering runs over them.
type Dataset struct {
	Recipes     []DatasetRecipe     `yaml:"recipes"`
	Clusterings []models.Clustering `yaml:"clusterings"`
}

// DatasetRecipe is a recipe with its annotation inlined.
type DatasetRecipe struct {
	models.Recipe `yaml:",inline"`
	Annotation    *models.Annotation `yaml:"annotation,omitempty"`
}

// Extensions lists the file extensions recognized as dataset files.
var Extensions = []string{".yaml", ".yml", ".json"}

// IsDatasetFile reports whether path has a dataset file extension.
func IsDatasetFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// DecodeDataset reads a YAML or JSON dataset document. Unknown fields are
// rejected. Annotations without an origin id inherit their recipe's.
func DecodeDataset(r io.Reader) (*Dataset, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var ds Dataset
	if err := dec.Decode(&ds); err != nil {
		if errors.Is(err, io.EOF) {
			return &ds, nil
		}
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	for i := range ds.Recipes {
		if a := ds.Recipes[i].Annotation; a != nil && a.RecipeID == "" {
			a.RecipeID = ds.Recipes[i].OriginID
		}
	}
	return &ds, nil
}

// ParseDatasetFile opens and decodes a dataset file.
func ParseDatasetFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return DecodeDataset(f)
}

// Validate reports every structural problem of the dataset at once.
// Annotation quality (dangling links, unlabeled spans) is not checked here;
// the workflow builder absorbs it.
func (d *Dataset) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(d.Recipes))

	for i, r := range d.Recipes {
		switch {
		case r.OriginID == "":
			errs = append(errs, fmt.Errorf("recipe %d: missing origin_id", i))
			continue
		case r.GroupName == "":
			errs = append(errs, fmt.Errorf("recipe %s: missing group_name", r.OriginID))
		}
		if seen[r.OriginID] {
			errs = append(errs, fmt.Errorf("recipe %s: duplicate origin_id", r.OriginID))
		}
		seen[r.OriginID] = true

		if r.Annotation != nil && r.Annotation.RecipeID != r.OriginID {
			errs = append(errs, fmt.Errorf("recipe %s: annotation belongs to %s", r.OriginID, r.Annotation.RecipeID))
		}
	}

	for i, c := range d.Clusterings {
		if c.DishName == "" || c.Title == "" {
			errs = append(errs, fmt.Errorf("clustering %d: dish_name and title are required", i))
		}
		for j, p := range c.Points {
			if p.RecipeID == "" {
				errs = append(errs, fmt.Errorf("clustering %q point %d: missing recipe_id", c.Title, j))
			}
		}
	}

	return errors.Join(errs...)
}

// Annotations returns the annotations carried by the dataset's recipes.
func (d *Dataset) Annotations() []models.Annotation {
	out := make([]models.Annotation, 0, len(d.Recipes))
	for _, r := range d.Recipes {
		if r.Annotation != nil {
			out = append(out, *r.Annotation)
		}
	}
	return out
}
