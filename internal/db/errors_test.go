package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/surrealdb/surrealdb.go"
)

func TestWrapQueryError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unique index", &surrealdb.QueryError{Message: "Database index `recipe_origin` already contains 'p1'"}, ErrAlreadyExists},
		{"conflict", &surrealdb.QueryError{Message: "Transaction conflict: resource busy"}, ErrTransactionConflict},
		{"wrapped query error", fmt.Errorf("upsert: %w", &surrealdb.QueryError{Message: "record already exists"}), ErrAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, wrapQueryError(tt.err), tt.want)
		})
	}
}

func TestWrapQueryErrorPassthrough(t *testing.T) {
	assert.NoError(t, wrapQueryError(nil))

	plain := errors.New("connection reset")
	assert.Same(t, plain, wrapQueryError(plain))

	other := &surrealdb.QueryError{Message: "Parse error"}
	assert.Equal(t, error(other), wrapQueryError(other))
}

func TestRowsNeverNil(t *testing.T) {
	assert.NotNil(t, rows[int](nil))

	empty := []surrealdb.QueryResult[[]int]{}
	assert.NotNil(t, rows(&empty))

	one := []surrealdb.QueryResult[[]int]{{Result: []int{1, 2}}}
	assert.Equal(t, []int{1, 2}, rows(&one))
}

func TestOrEmpty(t *testing.T) {
	var links []int
	assert.NotNil(t, orEmpty(links))
	assert.Equal(t, []int{3}, orEmpty([]int{3}))
}
