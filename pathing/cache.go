package pathing

import (
	"container/list"

	"github.com/briarlock/ecotick/worldmap"
)

// CacheKey identifies a cached path by its endpoints.
type CacheKey struct {
	From, To worldmap.Tile
}

type cacheEntry struct {
	key       CacheKey
	result    Result
	cachedAt  uint64
	listElem  *list.Element
}

// Cache is an LRU of (from,to) -> cached Result with a tick-based TTL.
// Cached results are shared by reference (spec.md §4.3, §9 clone
// reduction): callers must treat the returned Result.Path as read-only.
type Cache struct {
	capacity int
	ttl      uint64
	entries  map[CacheKey]*cacheEntry
	order    *list.List // front = most recently used
}

// NewCache builds a path cache with the given entry capacity and TTL in
// ticks.
func NewCache(capacity int, ttlTicks uint64) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		ttl:      ttlTicks,
		entries:  make(map[CacheKey]*cacheEntry),
		order:    list.New(),
	}
}

// Get returns the cached result for key if present and not expired as
// of currentTick.
func (c *Cache) Get(key CacheKey, currentTick uint64) (Result, bool) {
	e, ok := c.entries[key]
	if !ok {
		return Result{}, false
	}
	if currentTick-e.cachedAt > c.ttl {
		c.removeEntry(e)
		return Result{}, false
	}
	c.order.MoveToFront(e.listElem)
	return e.result, true
}

// Put stores a result, evicting the least-recently-used entry if the
// cache is at capacity.
func (c *Cache) Put(key CacheKey, result Result, currentTick uint64) {
	if e, ok := c.entries[key]; ok {
		e.result = result
		e.cachedAt = currentTick
		c.order.MoveToFront(e.listElem)
		return
	}
	if len(c.entries) >= c.capacity {
		c.evictOldest()
	}
	e := &cacheEntry{key: key, result: result, cachedAt: currentTick}
	e.listElem = c.order.PushFront(e)
	c.entries[key] = e
}

func (c *Cache) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	c.removeEntry(oldest.Value.(*cacheEntry))
}

func (c *Cache) removeEntry(e *cacheEntry) {
	c.order.Remove(e.listElem)
	delete(c.entries, e.key)
}

// Len returns the number of live entries.
func (c *Cache) Len() int { return len(c.entries) }

// IsPathValid reports whether a cached path's tiles remain passable,
// used to detect staleness from a changed world (never true in this
// core, since terrain is immutable during simulation, but kept as a
// defensive check for future world-editing extensions).
func IsPathValid(grid *Grid, path []worldmap.Tile) bool {
	for _, t := range path {
		if !grid.Passable(t) {
			return false
		}
	}
	return true
}
