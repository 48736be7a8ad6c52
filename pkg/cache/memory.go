package cache

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// MemoryCache is a bounded in-process cache. Entries may be evicted at any
// time once MaxBytes is reached; Set does not guarantee a later hit.
type MemoryCache struct {
	c *ristretto.Cache[string, []byte]
}

// NewMemoryCache creates a cache holding up to maxBytes of values.
func NewMemoryCache(maxBytes int64) (*MemoryCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 100_000,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &MemoryCache{c: c}, nil
}

// Get implements Cache.
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.c.Get(key)
	return v, ok, nil
}

// Set implements Cache. The value is visible to Get once Set returns.
func (m *MemoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	m.c.SetWithTTL(key, data, int64(len(data)), ttl)
	m.c.Wait()
	return nil
}

// Delete implements Cache.
func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.c.Del(key)
	return nil
}

// Clear removes every entry.
func (m *MemoryCache) Clear() {
	m.c.Clear()
}

// Close implements Cache.
func (m *MemoryCache) Close() error {
	m.c.Close()
	return nil
}

var _ Cache = (*MemoryCache)(nil)
