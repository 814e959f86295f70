package cache

import (
	"context"
	"sync"

	"github.com/sarenasr/Rappi-Dashboard/internal/utils"
)

// Memory is an in-process cache bounded by entry count. When full, the
// oldest insertion is evicted. Entries do not expire on their own.
type Memory struct {
	mu         sync.RWMutex
	entries    map[string][]byte
	order      []string // insertion order, oldest first
	maxEntries int
	hits       uint64
	misses     uint64
}

// NewMemory creates a memory cache holding at most maxEntries values.
// maxEntries <= 0 selects utils.DefaultCacheEntries.
func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = utils.DefaultCacheEntries
	}
	return &Memory{
		entries:    make(map[string][]byte),
		maxEntries: maxEntries,
	}
}

// Get retrieves a value from cache
func (c *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	value, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false, nil
	}
	c.hits++
	return value, true, nil
}

// Set stores a value in cache. The slice is kept as is; callers must not
// modify it afterwards.
func (c *Memory) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = value
		return nil
	}

	for len(c.order) >= c.maxEntries {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = value
	c.order = append(c.order, key)
	return nil
}

// Purge removes all entries
func (c *Memory) Purge(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string][]byte)
	c.order = nil
	return nil
}

// Close does nothing for the memory cache
func (c *Memory) Close() error {
	return nil
}

// Len returns the number of cached entries
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns cache statistics
func (c *Memory) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]interface{}{
		"total_entries": len(c.entries),
		"max_entries":   c.maxEntries,
		"hits":          c.hits,
		"misses":        c.misses,
	}
}
