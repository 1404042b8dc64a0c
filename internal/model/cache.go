package model

import (
	"path/filepath"
	"sync"
)

// Cache memoizes parsed schemas by resolved location so a single xsdcov
// process invocation that loads the same schema more than once (e.g. to
// both measure coverage and validate against it) only parses it once.
// Adapted from the teacher's SchemaCache (cache.go), trimmed of the HTTP
// loader path that Loader no longer carries.
type Cache struct {
	mu      sync.RWMutex
	BaseDir string
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	once   sync.Once
	schema *Schema
	err    error
}

// NewCache creates a schema cache resolving relative paths against baseDir.
func NewCache(baseDir string) *Cache {
	return &Cache{BaseDir: baseDir, entries: make(map[string]*cacheEntry)}
}

// Get loads and caches the schema at location, resolving its imports with a
// fresh Loader the first time it's requested.
func (c *Cache) Get(location string) (*Schema, error) {
	resolved := location
	if c.BaseDir != "" && !filepath.IsAbs(location) {
		resolved = filepath.Join(c.BaseDir, location)
	}

	c.mu.Lock()
	entry, ok := c.entries[resolved]
	if !ok {
		entry = &cacheEntry{}
		c.entries[resolved] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		entry.schema, entry.err = NewLoader("").Load(resolved)
	})
	return entry.schema, entry.err
}

// Clear drops every cached schema.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}
