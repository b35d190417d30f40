package jmespath

import (
	"container/list"
	"sync"

	"github.com/quiverpath/jmespath/pkg/ast"
)

// Cache is a thread-safe LRU cache of parsed expressions, keyed by source
// text. An Evaluator uses one internally when WithCaching is enabled, so
// that repeatedly calling Eval with the same query string against many
// different documents only lexes and parses that query once; Compile
// itself never consults a Cache, since a *Expression returned from Compile
// is already meant to be held onto and reused directly by the caller.
//
// Because parsing a JMESPath query is purely syntactic — it never looks at
// which functions an Evaluator happens to have registered via
// WithCustomFunction — a single Cache can safely be shared across multiple
// Evaluators built with different custom functions (WithCache does exactly
// this); the cached *ast.Node for a given source string is the same
// regardless of which Evaluator resolves it.
type Cache struct {
	mu       sync.RWMutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

type cacheEntry struct {
	key  string
	node *ast.Node
}

// NewCache creates an LRU cache with room for capacity entries. A
// non-positive capacity is replaced with a default of 256.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 256
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

// Get looks up key and, if present, promotes it to most-recently-used.
func (c *Cache) Get(key string) (*ast.Node, bool) {
	c.mu.RLock()
	el, ok := c.entries[key]
	front := ok && c.order.Front() == el
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if front {
		return el.Value.(*cacheEntry).node, true
	}

	c.mu.Lock()
	el, ok = c.entries[key]
	if ok {
		c.order.MoveToFront(el)
	}
	c.mu.Unlock()
	if !ok {
		return nil, false
	}
	return el.Value.(*cacheEntry).node, true
}

// Set stores node under key, evicting the least-recently-used entry first
// if the cache is already at capacity.
func (c *Cache) Set(key string, node *ast.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).node = node
		c.order.MoveToFront(el)
		return
	}
	if c.order.Len() >= c.capacity {
		c.evictOldest()
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, node: node})
}

// GetOrCompile returns the cached node for key, or calls compile to produce
// one, caching it on success. Once a key is cached, later calls do not run
// compile again; concurrent calls that miss on the same key may each run it.
// A failed compile is never cached, so the next call retries it.
func (c *Cache) GetOrCompile(key string, compile func() (*ast.Node, error)) (*ast.Node, error) {
	if node, ok := c.Get(key); ok {
		return node, nil
	}
	node, err := compile()
	if err != nil {
		return nil, err
	}
	c.Set(key, node)
	return node, nil
}

// Len reports the number of entries currently cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Capacity reports the maximum number of entries the cache will hold.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Invalidate removes key from the cache, if present.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.order.Remove(el)
		delete(c.entries, key)
	}
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[string]*list.Element, c.capacity)
}

func (c *Cache) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	c.order.Remove(el)
	delete(c.entries, el.Value.(*cacheEntry).key)
}
