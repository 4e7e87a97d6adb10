package archive_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"newsqa-orchestrator/internal/adapter/archive"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	calls   atomic.Int64
	content []byte
	err     error
}

func (s *countingStore) Fetch(ctx context.Context, locator string) ([]byte, error) {
	s.calls.Add(1)
	return s.content, s.err
}

func TestCachedStore_FetchesOncePerLocator(t *testing.T) {
	inner := &countingStore{content: []byte("document")}
	store, err := archive.NewCachedStore(inner, 8)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		content, err := store.Fetch(context.Background(), "s3://b/doc.md")
		require.NoError(t, err)
		assert.Equal(t, "document", string(content))
	}
	assert.Equal(t, int64(1), inner.calls.Load())
}

func TestCachedStore_DoesNotCacheFailures(t *testing.T) {
	inner := &countingStore{err: errors.New("gateway down")}
	store, err := archive.NewCachedStore(inner, 8)
	require.NoError(t, err)

	_, err = store.Fetch(context.Background(), "s3://b/doc.md")
	assert.Error(t, err)
	_, err = store.Fetch(context.Background(), "s3://b/doc.md")
	assert.Error(t, err)
	assert.Equal(t, int64(2), inner.calls.Load())
}
