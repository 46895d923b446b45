// Package cache provides an LRU cache and the prepared statement cache built on it.
package cache

import (
	"sync"
)

// Stats represents cache statistics
type Stats struct {
	Hits      int64
	Misses    int64
	Size      int
	MaxSize   int
	Evictions int64
	HitRate   float64
}

// LRU is a size bounded least recently used cache keyed by string
type LRU[V any] struct {
	mu      sync.Mutex
	data    map[string]*node[V]
	maxSize int
	head    *node[V]
	tail    *node[V]
	stats   Stats
	onEvict func(key string, value V)
}

// node represents a node in the doubly-linked list for LRU
type node[V any] struct {
	key   string
	value V
	prev  *node[V]
	next  *node[V]
}

// NewLRU creates a cache holding at most maxSize entries. onEvict, when not
// nil, is called for every entry that leaves the cache, whether evicted,
// replaced, invalidated or cleared.
func NewLRU[V any](maxSize int, onEvict func(key string, value V)) *LRU[V] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &LRU[V]{
		data:    make(map[string]*node[V]),
		maxSize: maxSize,
		stats:   Stats{MaxSize: maxSize},
		onEvict: onEvict,
	}
}

// Get retrieves a value and marks it most recently used
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.data[key]
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}

	c.moveToFront(n)
	c.stats.Hits++
	return n.value, true
}

// Set stores a value, evicting the least recently used entry when full
func (c *LRU[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, exists := c.data[key]; exists {
		old := n.value
		n.value = value
		c.moveToFront(n)
		c.evicted(key, old)
		return
	}

	if len(c.data) >= c.maxSize && c.tail != nil {
		victim := c.tail
		c.removeNode(victim)
		c.stats.Evictions++
		c.evicted(victim.key, victim.value)
	}

	n := &node[V]{key: key, value: value}
	c.addToFront(n)
	c.data[key] = n
}

// Invalidate removes a specific key from the cache
func (c *LRU[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.data[key]; ok {
		c.removeNode(n)
		c.evicted(n.key, n.value)
	}
}

// Clear removes all entries from the cache
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for n := c.head; n != nil; n = n.next {
		c.evicted(n.key, n.value)
	}
	c.data = make(map[string]*node[V])
	c.head = nil
	c.tail = nil
}

// Len returns the number of cached entries
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// GetStats returns cache statistics
func (c *LRU[V]) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Size = len(c.data)
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total) * 100
	}
	return stats
}

func (c *LRU[V]) evicted(key string, value V) {
	if c.onEvict != nil {
		c.onEvict(key, value)
	}
}

// addToFront adds a node to the front of the list
func (c *LRU[V]) addToFront(n *node[V]) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

// moveToFront moves a node to the front of the list
func (c *LRU[V]) moveToFront(n *node[V]) {
	if n == c.head {
		return
	}
	c.unlink(n)
	c.addToFront(n)
}

// removeNode removes a node from the list and the index
func (c *LRU[V]) removeNode(n *node[V]) {
	c.unlink(n)
	delete(c.data, n.key)
}

func (c *LRU[V]) unlink(n *node[V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil
}
