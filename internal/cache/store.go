// Package cache memoizes per-dish annotation lookups for a bounded time.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/raphaelgruber/recipescape-go/internal/models"
)

const (
	// DefaultTTL is how long a dish's annotations are served from memory.
	DefaultTTL = 10 * time.Minute

	// DefaultSize bounds the number of dishes kept at once.
	DefaultSize = 256
)

// Store holds annotation collections keyed by dish name.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(dish string) ([]models.AnnotatedRecipe, bool)
	Put(dish string, annotations []models.AnnotatedRecipe)
	Expired(dish string) bool
}

// LRU is a Store backed by an expirable LRU. Entries expire ttl after they
// were put; the least recently used dish is evicted once size is reached.
type LRU struct {
	lru *expirable.LRU[string, []models.AnnotatedRecipe]
}

// NewLRU creates an LRU store. Non-positive arguments select the defaults.
func NewLRU(size int, ttl time.Duration) *LRU {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &LRU{lru: expirable.NewLRU[string, []models.AnnotatedRecipe](size, nil, ttl)}
}

// Get returns the annotations of dish if present and not expired.
func (l *LRU) Get(dish string) ([]models.AnnotatedRecipe, bool) {
	return l.lru.Get(dish)
}

// Put stores annotations for dish, replacing any previous entry.
func (l *LRU) Put(dish string, annotations []models.AnnotatedRecipe) {
	l.lru.Add(dish, annotations)
}

// Expired reports whether dish has no live entry.
func (l *LRU) Expired(dish string) bool {
	_, ok := l.lru.Peek(dish)
	return !ok
}

// Len returns the number of live entries.
func (l *LRU) Len() int {
	return l.lru.Len()
}
