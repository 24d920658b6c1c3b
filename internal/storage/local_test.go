package storage_test

import (
	"bytes"
	"context"
	"testing"

	"landslide-backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProvider(t *testing.T) {
	ctx := context.Background()

	provider, err := storage.NewLocalProvider(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, provider.CreateBucket(ctx, "models"))

	require.NoError(t, provider.PutObject(ctx, "models", "abc/archive.bin", bytes.NewReader([]byte("blob-1"))))
	require.NoError(t, provider.PutObject(ctx, "models", "def/archive.bin", bytes.NewReader([]byte("blob-two"))))

	data, err := provider.GetObject(ctx, "models", "abc/archive.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte("blob-1"), data)

	objects, err := provider.ListObjects(ctx, "models", "")
	require.NoError(t, err)
	require.Len(t, objects, 2)

	objects, err = provider.ListObjects(ctx, "models", "def/")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "def/archive.bin", objects[0].Name)
	assert.Equal(t, int64(len("blob-two")), objects[0].Size)

	require.NoError(t, provider.DeleteObject(ctx, "models", "abc/archive.bin"))
	_, err = provider.GetObject(ctx, "models", "abc/archive.bin")
	assert.Error(t, err)

	// deleting a missing object is not an error
	assert.NoError(t, provider.DeleteObject(ctx, "models", "abc/archive.bin"))
}

func TestLocalProviderListMissingBucket(t *testing.T) {
	provider, err := storage.NewLocalProvider(t.TempDir())
	require.NoError(t, err)

	objects, err := provider.ListObjects(context.Background(), "nope", "")
	require.NoError(t, err)
	assert.Empty(t, objects)
}
