package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/raphaelgruber/recipescape-go/internal/metrics"
	"github.com/raphaelgruber/recipescape-go/internal/models"
)

// Fetcher loads every annotated recipe of a dish from storage.
type Fetcher interface {
	QueryAnnotationsByDish(ctx context.Context, dish string) ([]models.AnnotatedRecipe, error)
}

// Annotations serves "all annotations of a dish", consulting the Store
// before storage. A nil Store disables caching.
//
// Concurrent misses for the same dish may each fetch and Put; the values
// are equivalent so the last writer wins.
type Annotations struct {
	fetcher Fetcher
	store   Store
	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewAnnotations wires a fetcher to a cache store.
func NewAnnotations(fetcher Fetcher, store Store, collector *metrics.Collector, logger *slog.Logger) *Annotations {
	if logger == nil {
		logger = slog.Default()
	}
	return &Annotations{
		fetcher: fetcher,
		store:   store,
		metrics: collector,
		logger:  logger,
	}
}

// Get returns the annotated recipes of dish. The returned slice is shared
// with other callers and must not be modified.
func (a *Annotations) Get(ctx context.Context, dish string) ([]models.AnnotatedRecipe, error) {
	if a.store != nil {
		if annotations, ok := a.store.Get(dish); ok {
			a.metrics.RecordCacheHit()
			return annotations, nil
		}
	}
	a.metrics.RecordCacheMiss()

	annotations, err := a.fetcher.QueryAnnotationsByDish(ctx, dish)
	if err != nil {
		return nil, fmt.Errorf("annotations for %q: %w", dish, err)
	}

	if a.store != nil {
		a.store.Put(dish, annotations)
		a.logger.Debug("cached annotations", "dish", dish, "count", len(annotations))
	}
	return annotations, nil
}
