// Package cache memoizes expensive analytics results for the lifetime of
// the process.
package cache

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Observer is notified of cache lookups.
type Observer interface {
	RecordCacheLookup(hit bool)
}

// Cache is a write-once key/value store. Entries never expire: the data
// they are computed from is immutable for the life of the process.
type Cache struct {
	entries  sync.Map
	group    singleflight.Group
	observer Observer

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates an empty cache. observer may be nil.
func New(observer Observer) *Cache {
	return &Cache{observer: observer}
}

// Key builds a deterministic key from a computation name and its
// parameters. Parameters are JSON encoded, so values that are equal
// produce equal keys independent of their identity; map keys are sorted by
// the encoder.
func Key(name string, params ...any) string {
	var b strings.Builder
	b.WriteString(name)
	for _, p := range params {
		b.WriteByte('|')
		enc, err := json.Marshal(p)
		if err != nil {
			// Only unsupported types (channels, funcs) end up here.
			panic(fmt.Sprintf("cache: cannot encode parameter of type %T: %v", p, err))
		}
		b.Write(enc)
	}
	return b.String()
}

// Get returns the value stored under key.
func (c *Cache) Get(key string) (any, bool) {
	v, ok := c.entries.Load(key)
	c.record(ok)
	return v, ok
}

// Remember returns the value stored under key, computing and storing it
// with fn on a miss. Concurrent misses on the same key share one call to
// fn, and the first stored value wins.
func (c *Cache) Remember(key string, fn func() any) any {
	if v, ok := c.Get(key); ok {
		return v
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.entries.Load(key); ok {
			return v, nil
		}
		v, _ := c.entries.LoadOrStore(key, fn())
		return v, nil
	})
	return v
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Stats returns the hit and miss counters.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *Cache) record(hit bool) {
	if hit {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	if c.observer != nil {
		c.observer.RecordCacheLookup(hit)
	}
}

// Memo is the typed form of Remember. A nil cache computes without storing.
func Memo[T any](c *Cache, key string, fn func() T) T {
	if c == nil {
		return fn()
	}
	return c.Remember(key, func() any { return fn() }).(T)
}
