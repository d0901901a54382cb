package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStorePutGetDelete(t *testing.T) {
	s := NewCacheStore(time.Minute, time.Minute)
	ctx := context.Background()

	_, found, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	blob := Blob{"turn_number": float64(3)}
	require.NoError(t, s.Put(ctx, "sess-1", blob))

	got, found, err := s.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, blob, got)

	require.NoError(t, s.Delete(ctx, "sess-1"))
	_, found, err = s.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, found)
}

type fakeDurable struct {
	data map[string]Blob
}

func newFakeDurable() *fakeDurable {
	return &fakeDurable{data: make(map[string]Blob)}
}

func (f *fakeDurable) Put(_ context.Context, sessionID string, blob Blob) error {
	f.data[sessionID] = blob
	return nil
}

func (f *fakeDurable) Get(_ context.Context, sessionID string) (Blob, bool, error) {
	b, ok := f.data[sessionID]
	return b, ok, nil
}

func (f *fakeDurable) Delete(_ context.Context, sessionID string) error {
	delete(f.data, sessionID)
	return nil
}

func TestTieredStoreFallsBackToDurableOnCacheMiss(t *testing.T) {
	durable := newFakeDurable()
	tiered := NewTieredStore(NewCacheStore(time.Minute, time.Minute), durable)
	ctx := context.Background()

	blob := Blob{"turn_number": float64(7)}
	require.NoError(t, durable.Put(ctx, "sess-2", blob))

	got, found, err := tiered.Get(ctx, "sess-2")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, blob, got)
}

func TestTieredStorePutWritesThroughBothTiers(t *testing.T) {
	durable := newFakeDurable()
	hot := NewCacheStore(time.Minute, time.Minute)
	tiered := NewTieredStore(hot, durable)
	ctx := context.Background()

	blob := Blob{"turn_number": float64(1)}
	require.NoError(t, tiered.Put(ctx, "sess-3", blob))

	_, found, err := durable.Get(ctx, "sess-3")
	require.NoError(t, err)
	assert.True(t, found)

	_, found, err = hot.Get(ctx, "sess-3")
	require.NoError(t, err)
	assert.True(t, found)
}
