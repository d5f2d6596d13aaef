package pendingstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "pending.json"))
}

func TestFileStorePutAndTake(t *testing.T) {
	ctx := context.Background()
	store := newTestFileStore(t)

	tx := samplePending(time.Now())
	require.NoError(t, store.Put(ctx, "S-1", tx))

	got, ok, err := store.TakeAndExpire(ctx, "S-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tx.UserID, got.UserID)
	assert.Equal(t, tx.Amount, got.Amount)

	_, ok, err = store.TakeAndExpire(ctx, "S-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreMissingFileReadsEmpty(t *testing.T) {
	ctx := context.Background()
	store := newTestFileStore(t)

	_, ok, err := store.TakeAndExpire(ctx, "S-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "pending.json")

	first := NewFileStore(path)
	require.NoError(t, first.Put(ctx, "S-1", samplePending(time.Now())))

	// A fresh store over the same file sees the persisted entry.
	second := NewFileStore(path)
	got, ok, err := second.TakeAndExpire(ctx, "S-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "user-1", got.UserID)
}

func TestFileStoreExpiresOldEntriesOnAccess(t *testing.T) {
	ctx := context.Background()
	store := newTestFileStore(t)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	require.NoError(t, store.Put(ctx, "S-old", samplePending(base.Add(-30*time.Hour))))
	require.NoError(t, store.Put(ctx, "S-fresh", samplePending(base.Add(-time.Minute))))

	_, ok, err := store.TakeAndExpire(ctx, "S-unrelated")
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = store.TakeAndExpire(ctx, "S-old")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = store.TakeAndExpire(ctx, "S-fresh")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFileStoreEmptyFileReadsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "pending.json")
	require.NoError(t, os.WriteFile(path, []byte{}, 0o600))

	store := NewFileStore(path)
	_, ok, err := store.TakeAndExpire(ctx, "S-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreCorruptFileReturnsError(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "pending.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewFileStore(path)
	_, _, err := store.TakeAndExpire(ctx, "S-1")
	assert.Error(t, err)
}
