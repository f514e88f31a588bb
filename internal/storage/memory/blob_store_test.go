package memory

import (
	"bytes"
	"context"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlobStorePutObjectCopiesData(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	payload := []byte("content")
	uri, err := store.PutObject(context.Background(), "roma/report.txt", "text/plain", bytes.NewReader(payload))
	require.NoError(t, err)
	require.Equal(t, "memory://roma/report.txt", uri)

	payload[0] = 'C'
	stored, ok := store.Object("roma/report.txt")
	require.True(t, ok)
	require.Equal(t, "content", string(stored))

	stored[0] = 'X'
	again, _ := store.Object("roma/report.txt")
	require.Equal(t, "content", string(again))
	require.Equal(t, "text/plain", store.ContentType("roma/report.txt"))
}

func TestBlobStorePaths(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	ctx := context.Background()
	for _, p := range []string{"b/info.json", "a/info.json", "index.json"} {
		_, err := store.PutObject(ctx, p, "application/json", bytes.NewReader([]byte("{}")))
		require.NoError(t, err)
	}
	require.Equal(t, []string{"a/info.json", "b/info.json", "index.json"}, store.Paths())

	_, err := store.PutObject(ctx, "", "text/plain", bytes.NewReader(nil))
	require.Error(t, err)

	_, ok := store.Object("missing")
	require.False(t, ok)
}

func TestBlobStoreGetObject(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	ctx := context.Background()
	_, err := store.PutObject(ctx, "index.json", "application/json", bytes.NewReader([]byte(`{"restaurants":[]}`)))
	require.NoError(t, err)

	data, err := store.GetObject(ctx, "index.json")
	require.NoError(t, err)
	require.Equal(t, `{"restaurants":[]}`, string(data))

	_, err = store.GetObject(ctx, "missing.json")
	require.ErrorIs(t, err, fs.ErrNotExist)
}
