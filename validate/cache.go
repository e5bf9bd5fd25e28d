package validate

import "sync"

// MemoryCache is a ProgramCache backed by a sync.Map. Entries are never
// evicted, which suits the bounded set of rule expressions a process compiles.
type MemoryCache struct {
	programs sync.Map
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

// Get implements ProgramCache.
func (c *MemoryCache) Get(key string) (any, bool) {
	return c.programs.Load(key)
}

// Set implements ProgramCache.
func (c *MemoryCache) Set(key string, value any) {
	c.programs.Store(key, value)
}
