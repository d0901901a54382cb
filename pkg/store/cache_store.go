package store

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CacheStore is a process-local, in-memory Store backed by go-cache,
// adapted from this lineage's in-memory session repository. Used standalone
// in tests and as the hot front-end of TieredStore.
type CacheStore struct {
	cache *cache.Cache
}

func NewCacheStore(defaultExpiration, cleanupInterval time.Duration) *CacheStore {
	return &CacheStore{cache: cache.New(defaultExpiration, cleanupInterval)}
}

func (s *CacheStore) Put(_ context.Context, sessionID string, blob Blob) error {
	s.cache.Set(sessionID, blob, cache.DefaultExpiration)
	return nil
}

func (s *CacheStore) Get(_ context.Context, sessionID string) (Blob, bool, error) {
	if v, found := s.cache.Get(sessionID); found {
		return v.(Blob), true, nil
	}
	return nil, false, nil
}

func (s *CacheStore) Delete(_ context.Context, sessionID string) error {
	s.cache.Delete(sessionID)
	return nil
}
