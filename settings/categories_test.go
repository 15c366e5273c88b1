package settings

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCategoryLinks struct {
	mu      sync.Mutex
	linked  []int64
	added   []int64
	removed []int64
}

func (f *fakeCategoryLinks) LinkedCategoryIDs(_ context.Context, _ uuid.UUID) ([]int64, error) {
	return f.linked, nil
}

func (f *fakeCategoryLinks) AddCategories(_ context.Context, _ uuid.UUID, ids []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, ids...)

	return nil
}

func (f *fakeCategoryLinks) RemoveCategories(_ context.Context, _ uuid.UUID, ids []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, ids...)

	return nil
}

func TestReconcileCategories(t *testing.T) {
	links := &fakeCategoryLinks{linked: []int64{1, 2, 5}}

	require.NoError(t, ReconcileCategories(context.Background(), links, uuid.New(), []int64{3, 5}))

	assert.Equal(t, []int64{1, 2}, links.removed)
	assert.Equal(t, []int64{3}, links.added)
}

func TestReconcileCategoriesNoop(t *testing.T) {
	links := &fakeCategoryLinks{linked: []int64{4, 7}}

	require.NoError(t, ReconcileCategories(context.Background(), links, uuid.New(), []int64{7, 4}))

	assert.Empty(t, links.removed)
	assert.Empty(t, links.added)
}
