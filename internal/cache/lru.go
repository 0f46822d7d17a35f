// Package cache provides a thread-safe, bounded LRU cache with optional
// time-based expiry.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// LRU is a mutex-guarded LRU cache. Entries older than the TTL, measured from
// insertion, are never returned; they are dropped on the lookup that finds
// them. A zero TTL disables expiry.
type LRU[K comparable, V any] struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock

	mu      sync.Mutex
	entries map[K]*entry[K, V]
	head    *entry[K, V] // most recently used
	tail    *entry[K, V] // least recently used
}

type entry[K comparable, V any] struct {
	key        K
	value      V
	insertedAt time.Time
	prev       *entry[K, V]
	next       *entry[K, V]
}

// New creates an LRU holding at most maxEntries. A nil clock uses real time.
func New[K comparable, V any](maxEntries int, ttl time.Duration, clock clockwork.Clock) *LRU[K, V] {
	if maxEntries < 1 {
		maxEntries = 1
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &LRU[K, V]{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
		entries:    make(map[K]*entry[K, V]),
	}
}

// Get returns the value for key if present and fresh, promoting it to most
// recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.expired(e) {
		c.delete(e)
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

// Put stores value under key, resetting its insertion time. When the cache is
// over capacity the least recently used entry is evicted.
func (c *LRU[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.insertedAt = now
		c.moveToFront(e)
		return
	}

	e := &entry[K, V]{key: key, value: value, insertedAt: now}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.delete(c.tail)
	}
}

// Len returns the number of resident entries, including stale ones not yet
// dropped.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *LRU[K, V]) expired(e *entry[K, V]) bool {
	return c.ttl > 0 && c.clock.Since(e.insertedAt) >= c.ttl
}

func (c *LRU[K, V]) moveToFront(e *entry[K, V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *LRU[K, V]) addToFront(e *entry[K, V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *LRU[K, V]) remove(e *entry[K, V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *LRU[K, V]) delete(e *entry[K, V]) {
	if e == nil {
		return
	}
	delete(c.entries, e.key)
	c.remove(e)
}
