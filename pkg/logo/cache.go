package logo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/logo-objects-client/internal/constants"
)

// Cache errors.
var (
	ErrCacheKeyNotFound = errors.New("key not found")
	ErrCacheExpired     = errors.New("entry expired")
	ErrCacheNotSet      = errors.New("no cache configured")
)

// Cache is a response cache backend.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// PrefixDeleter is implemented by caches that can drop every key sharing a
// prefix.
type PrefixDeleter interface {
	DeletePrefix(ctx context.Context, prefix string) error
}

// CacheEntry is a cached response body.
type CacheEntry struct {
	Data      []byte    `json:"data"`
	ETag      string    `json:"etag,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry is past its expiry.
func (e *CacheEntry) Expired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// CacheOptions are settings shared by all backends.
type CacheOptions struct {
	TTL         time.Duration
	MaxSize     int
	EnableETags bool
}

// DefaultCacheOptions returns the default cache options.
func DefaultCacheOptions() *CacheOptions {
	return &CacheOptions{
		TTL:         constants.DefaultCacheTTL,
		MaxSize:     constants.DefaultCacheSize,
		EnableETags: true,
	}
}

// MemoryCache is a bounded in-process cache. When full it evicts the entry that
// expires first.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
	maxSize int
}

// NewMemoryCache creates a memory cache holding at most maxSize entries.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = constants.DefaultCacheSize
	}

	return &MemoryCache{
		entries: make(map[string]*CacheEntry),
		maxSize: maxSize,
	}
}

// Get returns the entry stored under key.
func (c *MemoryCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, ErrCacheKeyNotFound
	}

	if entry.Expired() {
		_ = c.Delete(ctx, key)

		return nil, ErrCacheExpired
	}

	return entry, nil
}

// Set stores entry under key.
func (c *MemoryCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictLocked()
	}

	c.entries[key] = entry

	return nil
}

func (c *MemoryCache) evictLocked() {
	var (
		victim string
		soon   time.Time
	)

	for key, entry := range c.entries {
		if victim == "" || entry.ExpiresAt.Before(soon) {
			victim = key
			soon = entry.ExpiresAt
		}
	}

	delete(c.entries, victim)
}

// Delete removes key.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)

	return nil
}

// DeletePrefix removes every key starting with prefix.
func (c *MemoryCache) DeletePrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}

	return nil
}

// Clear removes every entry.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*CacheEntry)

	return nil
}

// Has reports whether key holds an unexpired entry.
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]

	return ok && !entry.Expired()
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Cleanup drops expired entries.
func (c *MemoryCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if entry.Expired() {
			delete(c.entries, key)
		}
	}
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (c *MemoryCache) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// CacheStats counts cache activity.
type CacheStats struct {
	Hits   int64
	Misses int64
	Sets   int64
	Errors int64
}

// GetHitRate returns hits / (hits + misses), zero before any lookup.
func (s *CacheStats) GetHitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// CacheManager wraps a Cache with key building, TTLs and statistics.
type CacheManager struct {
	cache   Cache
	options *CacheOptions

	mu    sync.Mutex
	stats CacheStats
}

// NewCacheManager creates a manager. Nil options use DefaultCacheOptions.
func NewCacheManager(cache Cache, options *CacheOptions) *CacheManager {
	if options == nil {
		options = DefaultCacheOptions()
	}

	return &CacheManager{
		cache:   cache,
		options: options,
	}
}

// Options returns the manager's options.
func (m *CacheManager) Options() *CacheOptions {
	return m.options
}

// GetCacheKey builds "METHOD:path" followed by ":k=v&..." in sorted key order
// when params are given.
func (m *CacheManager) GetCacheKey(method, path string, params map[string]string) string {
	key := method + ":" + path
	if len(params) == 0 {
		return key
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}

	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+params[name])
	}

	return key + ":" + strings.Join(pairs, "&")
}

// Get returns the cached data for key.
func (m *CacheManager) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := m.GetEntry(ctx, key)
	if err != nil {
		return nil, err
	}

	return entry.Data, nil
}

// GetEntry returns the cached entry for key, ETag included.
func (m *CacheManager) GetEntry(ctx context.Context, key string) (*CacheEntry, error) {
	if m.cache == nil {
		return nil, ErrCacheNotSet
	}

	entry, err := m.cache.Get(ctx, key)

	m.mu.Lock()
	if err != nil {
		m.stats.Misses++
	} else {
		m.stats.Hits++
	}
	m.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}

	return entry, nil
}

// Set stores data under key for ttl; zero ttl uses the configured TTL.
func (m *CacheManager) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return m.SetWithETag(ctx, key, data, "", ttl)
}

// SetWithETag stores data and its ETag under key.
func (m *CacheManager) SetWithETag(ctx context.Context, key string, data []byte, etag string, ttl time.Duration) error {
	if m.cache == nil {
		return ErrCacheNotSet
	}

	if ttl <= 0 {
		ttl = m.options.TTL
	}

	if !m.options.EnableETags {
		etag = ""
	}

	err := m.cache.Set(ctx, key, &CacheEntry{
		Data:      data,
		ETag:      etag,
		ExpiresAt: time.Now().Add(ttl),
	})

	m.mu.Lock()
	if err != nil {
		m.stats.Errors++
	} else {
		m.stats.Sets++
	}
	m.mu.Unlock()

	if err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}

	return nil
}

// Invalidate removes key.
func (m *CacheManager) Invalidate(ctx context.Context, key string) error {
	if m.cache == nil {
		return nil
	}

	return m.cache.Delete(ctx, key)
}

// InvalidatePrefix removes every key starting with prefix. Backends that cannot
// match prefixes are cleared.
func (m *CacheManager) InvalidatePrefix(ctx context.Context, prefix string) error {
	if m.cache == nil {
		return nil
	}

	if deleter, ok := m.cache.(PrefixDeleter); ok {
		return deleter.DeletePrefix(ctx, prefix)
	}

	return m.cache.Clear(ctx)
}

// Clear empties the underlying cache.
func (m *CacheManager) Clear(ctx context.Context) error {
	if m.cache == nil {
		return nil
	}

	return m.cache.Clear(ctx)
}

// GetStats returns a snapshot of the statistics.
func (m *CacheManager) GetStats() CacheStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stats
}

// CachingPolicy decides which responses are cached.
type CachingPolicy struct {
	CacheGET     bool
	CachePOST    bool
	CacheErrors  bool
	IncludePaths []string
	ExcludePaths []string
}

// DefaultCachingPolicy caches successful GETs outside the token endpoint.
func DefaultCachingPolicy() *CachingPolicy {
	return &CachingPolicy{
		CacheGET:     true,
		ExcludePaths: []string{constants.TokenPath},
	}
}

// ShouldCache reports whether a response to method on path with status should be
// cached. Paths are matched by prefix, ignoring the query string.
func (p *CachingPolicy) ShouldCache(method, path string, status int) bool {
	switch method {
	case http.MethodGet:
		if !p.CacheGET {
			return false
		}
	case http.MethodPost:
		if !p.CachePOST {
			return false
		}
	default:
		return false
	}

	if status >= http.StatusBadRequest && !p.CacheErrors {
		return false
	}

	path = endpointPath(path)

	for _, excluded := range p.ExcludePaths {
		if strings.HasPrefix(path, excluded) {
			return false
		}
	}

	if len(p.IncludePaths) == 0 {
		return true
	}

	for _, included := range p.IncludePaths {
		if strings.HasPrefix(path, included) {
			return true
		}
	}

	return false
}
