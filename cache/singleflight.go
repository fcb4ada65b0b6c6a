// Package cache implements shared, per-key single-flight identity caches:
// concurrent requests for the same key await one in-flight computation
// instead of duplicating it.
package cache

import (
	"fmt"

	"github.com/oarkflow/xsync"
	"golang.org/x/sync/singleflight"
)

// Cache memoizes compute results per key, backed by the same xsync.IMap
// memstore uses for its own store, and collapsing concurrent misses on
// the same key onto a single computation via singleflight.Group.
type Cache[K comparable, V any] struct {
	data  xsync.IMap[K, V]
	group singleflight.Group
}

// New returns an empty Cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{data: xsync.NewMap[K, V]()}
}

// Get returns the cached value for key, computing and storing it via
// compute on a miss. Concurrent Get calls for the same key that miss
// together share one compute call.
func (c *Cache[K, V]) Get(key K, compute func() (V, error)) (V, error) {
	if v, ok := c.data.Get(key); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(fmt.Sprint(key), func() (any, error) {
		if v, ok := c.data.Get(key); ok {
			return v, nil
		}
		val, err := compute()
		if err != nil {
			return nil, err
		}
		c.data.Set(key, val)
		return val, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Peek returns the cached value for key without computing it.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	return c.data.Get(key)
}

// Invalidate drops key from the cache.
func (c *Cache[K, V]) Invalidate(key K) {
	c.data.Del(key)
}
