package archive

import (
	"context"
	"log/slog"

	"newsqa-orchestrator/internal/domain"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedStore is a read-through LRU layer over a DocumentStore. Archive
// documents are immutable once written, so entries never need invalidation.
type CachedStore struct {
	inner domain.DocumentStore
	cache *lru.Cache[string, []byte]
}

func NewCachedStore(inner domain.DocumentStore, size int) (*CachedStore, error) {
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &CachedStore{inner: inner, cache: cache}, nil
}

func (s *CachedStore) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if content, ok := s.cache.Get(locator); ok {
		slog.Debug("document_cache_hit", slog.String("locator", locator))
		return content, nil
	}

	content, err := s.inner.Fetch(ctx, locator)
	if err != nil {
		return nil, err
	}
	s.cache.Add(locator, content)
	return content, nil
}

var _ domain.DocumentStore = (*CachedStore)(nil)
