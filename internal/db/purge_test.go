package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePager simulates a paginated document source over a sorted ID set.
type fakePager struct {
	docs      map[string]bool
	pageSizes []int
	deletes   int
	deleteErr error
	fetchErr  error
}

func newFakePager(n int) *fakePager {
	docs := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		docs[fmt.Sprintf("doc-%04d", i)] = true
	}
	return &fakePager{docs: docs}
}

func (p *fakePager) nextPage(_ context.Context, limit int) ([]string, error) {
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	ids := make([]string, 0, len(p.docs))
	for id := range p.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	p.pageSizes = append(p.pageSizes, len(ids))
	return ids, nil
}

func (p *fakePager) deletePage(_ context.Context, ids []string) error {
	if p.deleteErr != nil {
		return p.deleteErr
	}
	p.deletes++
	for _, id := range ids {
		delete(p.docs, id)
	}
	return nil
}

func TestPurgeLoopDeletesEverythingInBatches(t *testing.T) {
	pager := newFakePager(1050)

	require.NoError(t, purgeLoop(context.Background(), pager, 500))

	assert.Empty(t, pager.docs)
	assert.Equal(t, 3, pager.deletes)
	// Final fetch sees the empty collection and terminates the loop.
	assert.Equal(t, []int{500, 500, 50, 0}, pager.pageSizes)
}

func TestPurgeLoopEmptyCollectionIsNoop(t *testing.T) {
	pager := newFakePager(0)

	require.NoError(t, purgeLoop(context.Background(), pager, 500))
	assert.Zero(t, pager.deletes)
}

func TestPurgeLoopIsIdempotent(t *testing.T) {
	pager := newFakePager(12)

	require.NoError(t, purgeLoop(context.Background(), pager, 5))
	require.Empty(t, pager.docs)

	// Running again over the already-emptied source succeeds with no work.
	deletesAfterFirst := pager.deletes
	require.NoError(t, purgeLoop(context.Background(), pager, 5))
	assert.Equal(t, deletesAfterFirst, pager.deletes)
}

func TestPurgeLoopSurfacesDeleteError(t *testing.T) {
	pager := newFakePager(10)
	pager.deleteErr = errors.New("commit aborted")

	err := purgeLoop(context.Background(), pager, 5)
	require.Error(t, err)
	assert.ErrorContains(t, err, "commit aborted")
	// Nothing was removed: the failed batch left the source intact.
	assert.Len(t, pager.docs, 10)
}

func TestPurgeLoopSurfacesFetchError(t *testing.T) {
	pager := newFakePager(10)
	pager.fetchErr = errors.New("deadline exceeded")

	err := purgeLoop(context.Background(), pager, 5)
	require.Error(t, err)
	assert.ErrorContains(t, err, "deadline exceeded")
}

func TestPurgeCollectionValidatesBatchSize(t *testing.T) {
	ctx := context.Background()

	assert.Error(t, PurgeCollection(ctx, nil, "datosNegocio/u1/transacciones", 0))
	assert.Error(t, PurgeCollection(ctx, nil, "datosNegocio/u1/transacciones", 501))
	assert.Error(t, PurgeCollection(ctx, nil, "", 100))
}
