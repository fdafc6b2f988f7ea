package logo_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fivetwenty-io/logo-objects-client/pkg/logo"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryKeyValue is an in-process stand-in for a JetStream bucket. Only the
// methods NATSKVCache uses are implemented.
type memoryKeyValue struct {
	nats.KeyValue

	mu     sync.Mutex
	values map[string][]byte
}

func newMemoryKeyValue() *memoryKeyValue {
	return &memoryKeyValue{values: make(map[string][]byte)}
}

type memoryEntry struct {
	nats.KeyValueEntry

	value []byte
}

func (e memoryEntry) Value() []byte { return e.value }

func (kv *memoryKeyValue) Get(key string) (nats.KeyValueEntry, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	value, ok := kv.values[key]
	if !ok {
		return nil, nats.ErrKeyNotFound
	}

	return memoryEntry{value: value}, nil
}

func (kv *memoryKeyValue) Put(key string, value []byte) (uint64, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	kv.values[key] = value

	return uint64(len(kv.values)), nil
}

func (kv *memoryKeyValue) Delete(key string, _ ...nats.DeleteOpt) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	delete(kv.values, key)

	return nil
}

func (kv *memoryKeyValue) Keys(_ ...nats.WatchOpt) ([]string, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	if len(kv.values) == 0 {
		return nil, nats.ErrNoKeysFound
	}

	keys := make([]string, 0, len(kv.values))
	for key := range kv.values {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys, nil
}

func TestNATSKVCache_SetAndGet(t *testing.T) {
	t.Parallel()

	cache := logo.NewNATSKVCacheFromKeyValue(newMemoryKeyValue())
	ctx := context.Background()

	entry := &logo.CacheEntry{
		Data:      []byte(`{"items":[]}`),
		ETag:      `W/"1"`,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	key := "GET:/api/v1/items?q=CODE%20like%20%27A*%27"

	require.NoError(t, cache.Set(ctx, key, entry))
	assert.True(t, cache.Has(ctx, key))

	got, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, entry.Data, got.Data)
	assert.Equal(t, entry.ETag, got.ETag)
	assert.WithinDuration(t, entry.ExpiresAt, got.ExpiresAt, time.Millisecond)
}

func TestNATSKVCache_KeysAreBucketSafe(t *testing.T) {
	t.Parallel()

	kv := newMemoryKeyValue()
	cache := logo.NewNATSKVCacheFromKeyValue(kv)

	require.NoError(t, cache.Set(context.Background(), "GET:/api/v1/items?limit=10 & *", &logo.CacheEntry{Data: []byte("x")}))

	keys, err := kv.Keys()
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.False(t, strings.ContainsAny(keys[0], " :/?*&.>"))
}

func TestNATSKVCache_Misses(t *testing.T) {
	t.Parallel()

	cache := logo.NewNATSKVCacheFromKeyValue(newMemoryKeyValue())
	ctx := context.Background()

	_, err := cache.Get(ctx, "missing")
	require.ErrorIs(t, err, logo.ErrCacheKeyNotFound)

	require.NoError(t, cache.Set(ctx, "old", &logo.CacheEntry{Data: []byte("x"), ExpiresAt: time.Now().Add(-time.Minute)}))

	_, err = cache.Get(ctx, "old")
	require.ErrorIs(t, err, logo.ErrCacheExpired)
	assert.False(t, cache.Has(ctx, "old"))
}

func TestNATSKVCache_SkipsOversizedValues(t *testing.T) {
	t.Parallel()

	cache := logo.NewNATSKVCacheFromKeyValue(newMemoryKeyValue())
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "big", &logo.CacheEntry{Data: make([]byte, 2<<20)}))
	assert.False(t, cache.Has(ctx, "big"))
}

func TestNATSKVCache_DeleteAndClear(t *testing.T) {
	t.Parallel()

	cache := logo.NewNATSKVCacheFromKeyValue(newMemoryKeyValue())
	ctx := context.Background()

	require.NoError(t, cache.Clear(ctx))

	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, cache.Set(ctx, key, &logo.CacheEntry{Data: []byte(key)}))
	}

	require.NoError(t, cache.Delete(ctx, "a"))
	require.NoError(t, cache.Delete(ctx, "a"))
	assert.False(t, cache.Has(ctx, "a"))
	assert.True(t, cache.Has(ctx, "b"))

	require.NoError(t, cache.Clear(ctx))
	assert.False(t, cache.Has(ctx, "b"))
	assert.False(t, cache.Has(ctx, "c"))
}

func TestNATSKVCache_DeletePrefix(t *testing.T) {
	t.Parallel()

	cache := logo.NewNATSKVCacheFromKeyValue(newMemoryKeyValue())
	ctx := context.Background()

	require.NoError(t, cache.DeletePrefix(ctx, "GET:"))

	for _, key := range []string{"GET:/api/v1/items?q=CODE eq 'A'", "GET:/api/v1/items/3", "GET:/api/v1/salesOrders"} {
		require.NoError(t, cache.Set(ctx, key, &logo.CacheEntry{Data: []byte("x")}))
	}

	require.NoError(t, cache.DeletePrefix(ctx, "GET:/api/v1/items"))
	assert.False(t, cache.Has(ctx, "GET:/api/v1/items?q=CODE eq 'A'"))
	assert.False(t, cache.Has(ctx, "GET:/api/v1/items/3"))
	assert.True(t, cache.Has(ctx, "GET:/api/v1/salesOrders"))
}

func TestNATSKVCache_BehindCacheManager(t *testing.T) {
	t.Parallel()

	manager := logo.NewCacheManager(logo.NewNATSKVCacheFromKeyValue(newMemoryKeyValue()), nil)
	ctx := context.Background()

	key := manager.GetCacheKey("GET", "/api/v1/Arps", nil)
	require.NoError(t, manager.SetWithETag(ctx, key, []byte(`{"items":[]}`), "etag-1", 0))

	entry, err := manager.GetEntry(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "etag-1", entry.ETag)
	assert.Equal(t, int64(1), manager.GetStats().Hits)
}
