package store

import "context"

// TieredStore fronts a durable Store with a process-local CacheStore:
// reads check the cache first and fall back to the durable tier on a
// miss, repopulating the cache; writes go to both.
type TieredStore struct {
	hot     *CacheStore
	durable Store
}

func NewTieredStore(hot *CacheStore, durable Store) *TieredStore {
	return &TieredStore{hot: hot, durable: durable}
}

func (s *TieredStore) Put(ctx context.Context, sessionID string, blob Blob) error {
	if err := s.durable.Put(ctx, sessionID, blob); err != nil {
		return err
	}
	return s.hot.Put(ctx, sessionID, blob)
}

func (s *TieredStore) Get(ctx context.Context, sessionID string) (Blob, bool, error) {
	if blob, found, err := s.hot.Get(ctx, sessionID); err == nil && found {
		return blob, true, nil
	}
	blob, found, err := s.durable.Get(ctx, sessionID)
	if err != nil || !found {
		return blob, found, err
	}
	_ = s.hot.Put(ctx, sessionID, blob)
	return blob, true, nil
}

func (s *TieredStore) Delete(ctx context.Context, sessionID string) error {
	_ = s.hot.Delete(ctx, sessionID)
	return s.durable.Delete(ctx, sessionID)
}
