package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRUCache holds at most capacity values. Values also expire ttl after
// they were stored; a non-positive ttl keeps them until evicted.
type LRUCache[T any] struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time

	mu    sync.Mutex
	order *list.List // front is most recently used
	index map[string]*list.Element
	stats Stats
}

type entry[T any] struct {
	key      string
	value    T
	deadline time.Time
}

// Stats counts cache activity since creation.
type Stats struct {
	Size      int   `json:"size"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Expired   int64 `json:"expired"`
}

// NewLRUCache returns an empty cache. capacity below 1 is raised to 1.
func NewLRUCache[T any](capacity int, ttl time.Duration) *LRUCache[T] {
	return &LRUCache[T]{
		capacity: max(capacity, 1),
		ttl:      ttl,
		now:      time.Now,
		order:    list.New(),
		index:    make(map[string]*list.Element),
	}
}

func (c *LRUCache[T]) live(e *entry[T], at time.Time) bool {
	return c.ttl <= 0 || !at.After(e.deadline)
}

// lookup returns the live element for key, dropping it if it has expired.
// c.mu must be held.
func (c *LRUCache[T]) lookup(key string) (*list.Element, bool) {
	el, ok := c.index[key]
	if !ok {
		return nil, false
	}
	if !c.live(el.Value.(*entry[T]), c.now()) {
		c.unlink(el)
		c.stats.Expired++
		return nil, false
	}
	return el, true
}

// Get returns the value for key and marks it most recently used.
func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.lookup(key)
	if !ok {
		c.stats.Misses++
		var zero T
		return zero, false
	}
	c.stats.Hits++
	c.order.MoveToFront(el)
	return el.Value.(*entry[T]).value, true
}

// Peek is Get without touching recency or the hit counters.
func (c *LRUCache[T]) Peek(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.lookup(key); ok {
		return el.Value.(*entry[T]).value, true
	}
	var zero T
	return zero, false
}

// Set stores value under key, evicting the least recently used values when
// the cache is full.
func (c *LRUCache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry[T]{key: key, value: value, deadline: c.now().Add(c.ttl)}
	if el, ok := c.index[key]; ok {
		el.Value = e
		c.order.MoveToFront(el)
		return
	}
	c.index[key] = c.order.PushFront(e)
	for c.order.Len() > c.capacity {
		c.unlink(c.order.Back())
		c.stats.Evictions++
	}
}

func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		c.unlink(el)
	}
}

// Purge empties the cache. Counters are kept.
func (c *LRUCache[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	clear(c.index)
}

// CleanExpired drops every expired value and returns how many it dropped.
func (c *LRUCache[T]) CleanExpired() int {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	at := c.now()
	n := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if !c.live(el.Value.(*entry[T]), at) {
			c.unlink(el)
			n++
		}
		el = next
	}
	c.stats.Expired += int64(n)
	return n
}

func (c *LRUCache[T]) unlink(el *list.Element) {
	c.order.Remove(el)
	delete(c.index, el.Value.(*entry[T]).key)
}

func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns a snapshot of the counters.
func (c *LRUCache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = c.order.Len()
	return s
}
