package compiler

import (
	"sync"

	skema "github.com/reoring/skema"
)

// Cache memoizes compilation per schema node. Schemas are keyed by identity:
// a schema modified after it was cached must be invalidated explicitly.
type Cache struct {
	opt skema.CompileOpt

	mu      sync.RWMutex
	entries map[*skema.Schema]*Compiled
}

// NewCache returns an empty cache compiling with opts (last one wins).
func NewCache(opts ...skema.CompileOpt) *Cache {
	var opt skema.CompileOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return &Cache{opt: opt, entries: map[*skema.Schema]*Compiled{}}
}

// Get returns the compiled form of s, compiling it on first use. Failed
// compilations are not cached.
func (c *Cache) Get(s *skema.Schema) (*Compiled, error) {
	c.mu.RLock()
	hit, ok := c.entries[s]
	c.mu.RUnlock()
	if ok {
		return hit, nil
	}
	compiled, err := Compile(s, c.opt)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	// a concurrent Get may have won; keep the first result so callers share
	// one instance
	if prev, ok := c.entries[s]; ok {
		return prev, nil
	}
	c.entries[s] = compiled
	return compiled, nil
}

// Invalidate drops the entry of s.
func (c *Cache) Invalidate(s *skema.Schema) {
	c.mu.Lock()
	delete(c.entries, s)
	c.mu.Unlock()
}

// Reset drops every entry.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.entries = map[*skema.Schema]*Compiled{}
	c.mu.Unlock()
}

// Len reports the number of cached schemas.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
