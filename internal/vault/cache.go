// ABOUTME: Size-bounded read cache for note content keyed by path.
// ABOUTME: Entries are validated against file mtimes and evicted oldest-first.

package vault

import (
	"container/list"
	"sync"
	"time"
)

// defaultCacheSize bounds the number of cached note bodies.
const defaultCacheSize = 256

// cacheEntry stores cached content with the mtime it was read at.
type cacheEntry struct {
	path    string
	content string
	modTime time.Time
	element *list.Element
}

// readCache is a thread-safe, size-limited content cache. A doubly-linked
// list maintains insertion order for O(1) eviction of the oldest entry.
type readCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	order   *list.List
	maxSize int
}

func newReadCache(maxSize int) *readCache {
	return &readCache{
		entries: make(map[string]*cacheEntry),
		order:   list.New(),
		maxSize: maxSize,
	}
}

// get returns cached content for path if present and read at the given
// mtime. A stale entry is dropped.
func (c *readCache) get(path string, modTime time.Time) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[path]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !entry.modTime.Equal(modTime) {
		c.invalidate(path)
		return "", false
	}
	return entry.content, true
}

// put stores content for path. The oldest entry is evicted at capacity.
func (c *readCache) put(path, content string, modTime time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, exists := c.entries[path]; exists {
		entry.content = content
		entry.modTime = modTime
		c.order.MoveToBack(entry.element)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	entry := &cacheEntry{path: path, content: content, modTime: modTime}
	entry.element = c.order.PushBack(entry)
	c.entries[path] = entry
}

// invalidate drops the entry for path, if any.
func (c *readCache) invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[path]; ok {
		c.order.Remove(entry.element)
		delete(c.entries, path)
	}
}

// evictOldest removes the oldest entry. Must be called with mu held.
func (c *readCache) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}
	entry := front.Value.(*cacheEntry)
	c.order.Remove(front)
	delete(c.entries, entry.path)
}
