package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viewroyal/civicpipe/pkg/config"
)

func TestLocalStore_PutGetRoundtrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(config.BlobStoreConfig{Backend: "local", Root: dir})
	require.NoError(t, err)

	key, err := store.Put(context.Background(), []byte("hello world"))
	require.NoError(t, err)
	assert.Len(t, key, 64)

	data, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestLocalStore_PutIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(config.BlobStoreConfig{Backend: "local", Root: dir})
	require.NoError(t, err)

	k1, err := store.Put(context.Background(), []byte("same bytes"))
	require.NoError(t, err)
	k2, err := store.Put(context.Background(), []byte("same bytes"))
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
}

func TestNew_S3NotImplemented(t *testing.T) {
	_, err := New(config.BlobStoreConfig{Backend: "s3", Root: "bucket"})
	assert.Error(t, err)
}
