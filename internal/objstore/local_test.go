package objstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalStoreFetch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bills"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bills", "receipt.jpg"), []byte("jpeg-bytes"), 0644))

	store := NewLocalStore(dir, zap.NewNop())

	data, err := store.Fetch(context.Background(), "bills/receipt.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)
}

func TestLocalStoreFetchNotFound(t *testing.T) {
	store := NewLocalStore(t.TempDir(), zap.NewNop())

	_, err := store.Fetch(context.Background(), "bills/missing.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store := NewLocalStore(t.TempDir(), zap.NewNop())

	_, err := store.Fetch(context.Background(), "../etc/passwd")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreHonorsContext(t *testing.T) {
	store := NewLocalStore(t.TempDir(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Fetch(ctx, "bills/receipt.jpg")
	assert.ErrorIs(t, err, context.Canceled)
}
