package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/raphaelgruber/recipescape-go/internal/metrics"
	"github.com/raphaelgruber/recipescape-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	calls atomic.Int32
	data  map[string][]models.AnnotatedRecipe
	err   error
}

func (f *fakeFetcher) QueryAnnotationsByDish(_ context.Context, dish string) ([]models.AnnotatedRecipe, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.data[dish], nil
}

func testData() map[string][]models.AnnotatedRecipe {
	return map[string][]models.AnnotatedRecipe{
		"potato salad": {
			{
				Recipe: models.Recipe{OriginID: "p1", Title: "Classic", GroupName: "potato salad"},
				Annotation: &models.Annotation{
					RecipeID: "p1",
					Actions:  []models.ActionSpan{{ID: "a", Label: "boil", Start: 0}},
					Ingredients: []models.IngredientSpan{
						{ID: "i", Label: "potato", Start: 5},
					},
					Links: []models.Link{{From: "a", To: "i"}},
				},
			},
			{
				Recipe:     models.Recipe{OriginID: "p2", Title: "Warm", GroupName: "potato salad"},
				Annotation: &models.Annotation{RecipeID: "p2"},
			},
		},
	}
}

func TestAnnotations_HitEqualsMiss(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{data: testData()}
	collector := metrics.NewCollector()
	a := NewAnnotations(fetcher, NewLRU(0, time.Minute), collector, nil)

	miss, err := a.Get(ctx, "potato salad")
	require.NoError(t, err)
	hit, err := a.Get(ctx, "potato salad")
	require.NoError(t, err)

	assert.Equal(t, miss, hit)
	assert.Equal(t, int32(1), fetcher.calls.Load(), "second call is served from cache")

	uncached, err := NewAnnotations(&fakeFetcher{data: testData()}, nil, nil, nil).Get(ctx, "potato salad")
	require.NoError(t, err)
	assert.Equal(t, uncached, hit)

	snap := collector.Snapshot()
	assert.Equal(t, int64(1), snap.Cache.Hits)
	assert.Equal(t, int64(1), snap.Cache.Misses)
}

func TestAnnotations_NilStoreAlwaysFetches(t *testing.T) {
	fetcher := &fakeFetcher{data: testData()}
	a := NewAnnotations(fetcher, nil, nil, nil)

	for i := 0; i < 3; i++ {
		_, err := a.Get(context.Background(), "potato salad")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), fetcher.calls.Load())
}

func TestAnnotations_Expiry(t *testing.T) {
	fetcher := &fakeFetcher{data: testData()}
	store := NewLRU(0, 50*time.Millisecond)
	a := NewAnnotations(fetcher, store, nil, nil)

	_, err := a.Get(context.Background(), "potato salad")
	require.NoError(t, err)
	assert.False(t, store.Expired("potato salad"))

	time.Sleep(100 * time.Millisecond)
	assert.True(t, store.Expired("potato salad"))

	_, err = a.Get(context.Background(), "potato salad")
	require.NoError(t, err)
	assert.Equal(t, int32(2), fetcher.calls.Load())
}

func TestAnnotations_ErrorNotCached(t *testing.T) {
	boom := errors.New("connection refused")
	fetcher := &fakeFetcher{err: boom}
	store := NewLRU(0, time.Minute)
	a := NewAnnotations(fetcher, store, nil, nil)

	_, err := a.Get(context.Background(), "potato salad")
	assert.ErrorIs(t, err, boom)
	assert.True(t, store.Expired("potato salad"))
}

func TestAnnotations_ConcurrentAccess(t *testing.T) {
	fetcher := &fakeFetcher{data: testData()}
	a := NewAnnotations(fetcher, NewLRU(0, time.Minute), nil, nil)
	want := testData()["potato salad"]

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := a.Get(context.Background(), "potato salad")
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
	assert.GreaterOrEqual(t, fetcher.calls.Load(), int32(1))
}

func TestLRU_EvictsBeyondSize(t *testing.T) {
	store := NewLRU(2, time.Minute)
	store.Put("a", nil)
	store.Put("b", nil)
	store.Put("c", nil)

	assert.Equal(t, 2, store.Len())
	assert.True(t, store.Expired("a"))
	assert.False(t, store.Expired("c"))
}
