package server

import (
	"container/list"
	"sync"
)

type lruEntry[V any] struct {
	key   string
	value V
}

// lru is a string-keyed map bounded by max entries. Adding past the bound
// drops the least recently used entry and calls onEvict.
type lru[V any] struct {
	mu      sync.Mutex
	max     int
	order   *list.List
	entries map[string]*list.Element
	onEvict func()
}

func newLRU[V any](max int, onEvict func()) *lru[V] {
	return &lru[V]{
		max:     max,
		order:   list.New(),
		entries: make(map[string]*list.Element),
		onEvict: onEvict,
	}
}

func (c *lru[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*lruEntry[V]).value, true
}

// getOrAdd returns the entry for key, storing create() first when it is missing.
func (c *lru[V]) getOrAdd(key string, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.order.MoveToFront(elem)
		return elem.Value.(*lruEntry[V]).value
	}
	value := create()
	c.addLocked(key, value)
	return value
}

// add stores value under key and returns the number of entries afterwards.
func (c *lru[V]) add(key string, value V) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addLocked(key, value)
	return c.order.Len()
}

func (c *lru[V]) addLocked(key string, value V) {
	if elem, ok := c.entries[key]; ok {
		elem.Value.(*lruEntry[V]).value = value
		c.order.MoveToFront(elem)
		return
	}

	c.entries[key] = c.order.PushFront(&lruEntry[V]{key: key, value: value})
	for c.order.Len() > c.max {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*lruEntry[V]).key)
		if c.onEvict != nil {
			c.onEvict()
		}
	}
}

func (c *lru[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
