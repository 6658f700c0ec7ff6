package querycache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"luminahealth.io/client-go/internal/metrics"
)

// Freshness windows shared by the entity bindings. Urgent views pair a
// short window with a Refetcher interval; near-static taxonomies keep a
// long one.
const (
	StaleShort    = 30 * time.Second
	StaleDefault  = 60 * time.Second
	StaleTaxonomy = 15 * time.Minute
)

// FetchFunc loads the value for a key. It receives a detached context
// bounded by the cache's fetch timeout, so one caller abandoning its view
// never fails the other callers sharing the flight.
type FetchFunc func(ctx context.Context) (interface{}, error)

type entry struct {
	value     interface{}
	fetchedAt time.Time
	stale     bool
}

// Cache is the client-side query cache: one entry per hierarchical key,
// de-duplicated in-flight fetches, and atomic batch invalidation. Reads
// reconcile last-write-wins per key. Each key carries a generation,
// bumped by invalidations and direct puts; a fetch resolves against the
// generation it started under, so a fetch that raced a mutation cannot
// store its pre-mutation result as fresh.
type Cache struct {
	mu           sync.Mutex
	entries      map[string]*entry
	gens         map[string]uint64
	group        singleflight.Group
	fetchTimeout time.Duration
	clock        func() time.Time
}

// New creates a cache whose shared fetches are bounded by fetchTimeout.
func New(fetchTimeout time.Duration) *Cache {
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}
	return &Cache{
		entries:      make(map[string]*entry),
		gens:         make(map[string]uint64),
		fetchTimeout: fetchTimeout,
		clock:        time.Now,
	}
}

// Fetch returns the cached value when it is fresh, otherwise loads it.
// Concurrent callers for the same key coalesce onto a single in-flight
// fetch and all receive the same resolved value. A caller whose context
// ends while waiting gets its context error; the shared fetch keeps
// running for the remaining callers.
func (c *Cache) Fetch(ctx context.Context, key Key, staleAfter time.Duration, fn FetchFunc) (interface{}, error) {
	flat := key.String()

	c.mu.Lock()
	if e, ok := c.entries[flat]; ok && !e.stale && c.clock().Sub(e.fetchedAt) < staleAfter {
		value := e.value
		c.mu.Unlock()
		metrics.RecordCacheLookup(key.metricPrefix(), "hit")
		return value, nil
	}
	gen, ok := c.gens[flat]
	if !ok {
		// Register the key so a prefix invalidation can supersede a
		// first fetch still in flight.
		c.gens[flat] = gen
	}
	c.mu.Unlock()
	metrics.RecordCacheLookup(key.metricPrefix(), "miss")

	ch := c.group.DoChan(flat, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.Background(), c.fetchTimeout)
		defer cancel()

		value, err := fn(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.putAt(key, value, gen)
		return value, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val, nil
	case <-ctx.Done():
		// Benign abandonment: the view navigated away.
		return nil, fmt.Errorf("cache fetch abandoned: %w", ctx.Err())
	}
}

// Refresh bypasses the freshness check and reloads the key now.
func (c *Cache) Refresh(ctx context.Context, key Key, fn FetchFunc) (interface{}, error) {
	c.mu.Lock()
	if e, ok := c.entries[key.String()]; ok {
		e.stale = true
	}
	c.mu.Unlock()
	return c.Fetch(ctx, key, 0, fn)
}

// Put stores a value directly, e.g. seeding a detail entry from a mutation
// response. The put is authoritative: it bumps the key's generation so a
// fetch that was already in flight cannot overwrite it.
func (c *Cache) Put(key Key, value interface{}) {
	flat := key.String()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[flat]++
	c.entries[flat] = &entry{
		value:     value,
		fetchedAt: c.clock(),
	}
}

// putAt stores a fetched value only when the key's generation still
// matches the one the fetch started under. A mismatch means an
// invalidation or direct put happened while the fetch ran; the result is
// discarded so pre-mutation data never lands as fresh.
func (c *Cache) putAt(key Key, value interface{}, gen uint64) {
	flat := key.String()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[flat] != gen {
		return
	}
	c.entries[flat] = &entry{
		value:     value,
		fetchedAt: c.clock(),
	}
}

// Invalidate marks every given key stale in one atomic batch: a single
// lock covers the whole fan-out, so a concurrent reader observes either
// none or all of the invalidation. In-flight fetches for the keys are
// superseded and forgotten, so the next reader starts a fresh fetch.
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	counts := make(map[string]int)
	for _, key := range keys {
		flat := key.String()
		c.gens[flat]++
		c.group.Forget(flat)
		if e, ok := c.entries[flat]; ok {
			e.stale = true
		}
		counts[key.metricPrefix()]++
	}
	c.mu.Unlock()

	for prefix, n := range counts {
		metrics.RecordCacheInvalidation(prefix, n)
	}
}

// InvalidatePrefix marks every key under the prefix stale in one batch.
func (c *Cache) InvalidatePrefix(prefix Key) {
	c.mu.Lock()
	n := 0
	for flat := range c.gens {
		if !Key(splitFlat(flat)).HasPrefix(prefix) {
			continue
		}
		c.gens[flat]++
		c.group.Forget(flat)
		if e, ok := c.entries[flat]; ok {
			e.stale = true
			n++
		}
	}
	c.mu.Unlock()

	if n > 0 {
		metrics.RecordCacheInvalidation(prefix.metricPrefix(), n)
	}
}

// Peek returns the cached value without freshness checks or fetching.
// Stale entries are still returned; missing keys report false.
func (c *Cache) Peek(key Key) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Clear drops every entry, e.g. on logout. Generations are bumped, not
// reset, so an in-flight fetch from before the clear cannot repopulate
// the emptied cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for flat := range c.gens {
		c.gens[flat]++
		c.group.Forget(flat)
	}
	c.entries = make(map[string]*entry)
}

// Fetch is the typed wrapper over Cache.Fetch.
func Fetch[T any](c *Cache, ctx context.Context, key Key, staleAfter time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	value, err := c.Fetch(ctx, key, staleAfter, func(ctx context.Context) (interface{}, error) {
		return fn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache entry %s holds %T, not the requested type", key, value)
	}
	return typed, nil
}
