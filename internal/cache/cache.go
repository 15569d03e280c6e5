// Package cache is a read-through cache keyed by entity and query, with
// tag-based invalidation and shared in-flight fetches.
package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Tag groups entries so writes can invalidate related reads.
type Tag string

type entry struct {
	value   any
	tags    []Tag
	fetched time.Time
}

// Cache stores successful fetch results. Errors are never cached.
// Safe for concurrent use.
type Cache struct {
	ttl     time.Duration
	timeout time.Duration
	log     *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	entries  map[string]entry
	tagGen   map[Tag]uint64
	inflight map[string]flight
	nextID   uint64
	group    singleflight.Group
}

type flight struct {
	id   uint64
	tags []Tag
}

// Options configures a Cache.
type Options struct {
	// TTL expires entries after this long. Zero keeps them until invalidated.
	TTL time.Duration
	// FetchTimeout bounds a shared fetch, which outlives any single caller.
	FetchTimeout time.Duration
	Logger       *zap.Logger
}

// New creates an empty Cache.
func New(opts Options) *Cache {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	timeout := opts.FetchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Cache{
		ttl:      opts.TTL,
		timeout:  timeout,
		log:      log,
		now:      time.Now,
		entries:  make(map[string]entry),
		tagGen:   make(map[Tag]uint64),
		inflight: make(map[string]flight),
	}
}

// FetchFunc loads the value for a key.
type FetchFunc func(ctx context.Context) (any, error)

// Fetch returns the cached value for key, or runs fn to load it. Concurrent
// callers of the same key share one fn call. If ctx ends first, Fetch returns
// ctx.Err() while the shared fetch carries on for the remaining callers.
func (c *Cache) Fetch(ctx context.Context, key string, tags []Tag, fn FetchFunc) (any, error) {
	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		gens, id := c.begin(key, tags)
		defer c.finish(key, id)
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		v, err := fn(fctx)
		if err != nil {
			return nil, err
		}
		c.store(key, tags, gens, v)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.log.Debug("cache shared fetch", zap.String("key", key))
		}
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Get is a typed wrapper around Cache.Fetch.
func Get[T any](ctx context.Context, c *Cache, key string, tags []Tag, fn func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.Fetch(ctx, key, tags, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops every entry carrying one of tags. Fetches already in
// flight for those tags will not store their results.
func (c *Cache) Invalidate(tags ...Tag) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range tags {
		c.tagGen[t]++
	}
	dropped := 0
	for key, e := range c.entries {
		if hasAny(e.tags, tags) {
			delete(c.entries, key)
			dropped++
		}
	}
	// Later callers must not join a fetch that started before the write.
	for key, f := range c.inflight {
		if hasAny(f.tags, tags) {
			c.group.Forget(key)
			delete(c.inflight, key)
		}
	}
	c.log.Debug("cache invalidate", zap.Any("tags", tags), zap.Int("dropped", dropped))
}

// Evict drops a single key.
func (c *Cache) Evict(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) lookup(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(e.fetched) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// begin records an in-flight fetch and snapshots the generations of its tags.
func (c *Cache) begin(key string, tags []Tag) ([]uint64, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	gens := make([]uint64, len(tags))
	for i, t := range tags {
		gens[i] = c.tagGen[t]
	}
	c.nextID++
	c.inflight[key] = flight{id: c.nextID, tags: tags}
	return gens, c.nextID
}

func (c *Cache) finish(key string, id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.inflight[key]; ok && f.id == id {
		delete(c.inflight, key)
	}
}

// store keeps v unless one of its tags was invalidated since gens was taken.
func (c *Cache) store(key string, tags []Tag, gens []uint64, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, t := range tags {
		if c.tagGen[t] != gens[i] {
			c.log.Debug("cache drop stale result", zap.String("key", key))
			return
		}
	}
	c.entries[key] = entry{value: v, tags: tags, fetched: c.now()}
}

func hasAny(have, want []Tag) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}
