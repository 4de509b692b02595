package service

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/recipescape-go/internal/models"
)

// ClusteringStore looks up clustering runs.
type ClusteringStore interface {
	// QueryClustering returns the first run of dish whose title contains
	// title case-insensitively, or nil when none matches.
	QueryClustering(ctx context.Context, dish, title string) (*models.Clustering, error)
}

// ClusterSelector picks recipes by cluster membership.
type ClusterSelector struct {
	store ClusteringStore
}

// NewClusterSelector creates a selector reading from store.
func NewClusterSelector(store ClusteringStore) *ClusterSelector {
	return &ClusterSelector{store: store}
}

// Select resolves the clustering run of dish matching titleFilter and returns
// its points whose cluster number is in selected, in point order.
// Returns ErrNotFound when no run matches. An empty or unmatched selection
// yields an empty slice.
func (s *ClusterSelector) Select(ctx context.Context, dish, titleFilter string, selected []int) ([]models.Selection, error) {
	clustering, err := s.store.QueryClustering(ctx, dish, titleFilter)
	if err != nil {
		return nil, fmt.Errorf("fetch clustering: %w", err)
	}
	if clustering == nil {
		return nil, fmt.Errorf("clustering %q for %q: %w", titleFilter, dish, ErrNotFound)
	}

	want := make(map[int]struct{}, len(selected))
	for _, c := range selected {
		want[c] = struct{}{}
	}

	selections := []models.Selection{}
	for _, p := range clustering.Points {
		if _, ok := want[p.ClusterNo]; ok {
			selections = append(selections, models.Selection{RecipeID: p.RecipeID, ClusterNo: p.ClusterNo})
		}
	}
	return selections, nil
}
