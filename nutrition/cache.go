package nutrition

import "sync"

// Cache memoizes lookup results per normalized food name. The catalog of
// generic foods upstream is effectively static, so entries live for the
// process lifetime with no invalidation.
type Cache struct {
	mu      sync.RWMutex
	results map[string]Result
}

func NewCache() *Cache {
	return &Cache{results: make(map[string]Result)}
}

func (c *Cache) Get(key string) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.results[key]
	return r, ok
}

func (c *Cache) Put(key string, result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[key] = result
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}
