package cache

import (
	"context"
	"strings"
	"time"

	"github.com/terraweave/terraweave/pkg/observability"
)

// instrumented wraps a Cache and reports hits, misses, and writes through
// the observability hooks. The key type reported is the key's prefix
// ("eval", "graph"), so dashboards can split rates per result kind.
type instrumented struct {
	inner Cache
}

// Instrument wraps a cache with observability hooks.
// Wrapping a nil cache returns a null cache.
func Instrument(inner Cache) Cache {
	if inner == nil {
		inner = NewNullCache()
	}
	return &instrumented{inner: inner}
}

// keyType extracts the prefix from a key for hook reporting.
func keyType(key string) string {
	if prefix, _, ok := strings.Cut(key, ":"); ok {
		return prefix
	}
	return "unknown"
}

// Get retrieves a value and records the hit or miss.
func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, found, err := c.inner.Get(ctx, key)
	if err == nil {
		if found {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, found, err
}

// Set stores a value and records the write.
func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.inner.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	}
	return err
}

// Delete removes a value.
func (c *instrumented) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, key)
}

// Close closes the wrapped cache.
func (c *instrumented) Close() error {
	return c.inner.Close()
}

// Ensure instrumented implements Cache.
var _ Cache = (*instrumented)(nil)
