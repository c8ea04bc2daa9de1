package caching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	values map[string]int
	sets   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]int{}}
}

func (f *fakeCache) Get(ctx context.Context, key string, target any) error {
	v, ok := f.values[key]
	if !ok {
		return cache.ErrCacheMiss
	}

	p, ok := target.(*int)
	if !ok {
		return errors.New("unexpected target type")
	}
	*p = v
	return nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.values[key] = value.(int)
	f.sets++
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	delete(f.values, key)
	return nil
}

func TestUseCacheMissThenHit(t *testing.T) {
	ctx := context.Background()
	c := newFakeCache()

	calls := 0
	callback := func() (int, error) {
		calls++
		return 42, nil
	}

	v, err := UseCache(ctx, c, "k", time.Minute, callback)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.sets)

	v, err = UseCache(ctx, c, "k", time.Minute, callback)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls, "hit must not re-run the callback")
}

func TestUseCacheCallbackError(t *testing.T) {
	ctx := context.Background()
	c := newFakeCache()

	wantErr := errors.New("boom")
	_, err := UseCache(ctx, c, "k", time.Minute, func() (int, error) {
		return 0, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 0, c.sets, "errors are not cached")
}

func TestUseCacheWithROReadsReplicaWritesPrimary(t *testing.T) {
	ctx := context.Background()
	ro := newFakeCache()
	primary := newFakeCache()

	v, err := UseCacheWithRO(ctx, ro, primary, "k", time.Minute, func() (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 0, ro.sets)
	assert.Equal(t, 1, primary.sets)

	// a replica hit skips both the callback and the primary
	ro.values["k"] = 9
	v, err = UseCacheWithRO(ctx, ro, primary, "k", time.Minute, func() (int, error) {
		t.Fatal("callback must not run on a hit")
		return 0, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 9, v)
}
