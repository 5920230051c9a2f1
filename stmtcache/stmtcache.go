// Package stmtcache caches prepared statements per connection, keyed by
// query text. Eviction closes the evicted statement so driver resources
// are not leaked when the cache is full.
package stmtcache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/squill-app/squill-drivers/driver"
)

// Cache is an LRU of prepared statements for a single connection. It is
// not safe for concurrent use; the owning connection serializes access.
type Cache struct {
	lru *lru.Cache[string, driver.Stmt]
}

// New creates a cache holding at most size statements. Size must be
// positive.
func New(size int) (*Cache, error) {
	inner, err := lru.NewWithEvict(size, func(_ string, stmt driver.Stmt) {
		_ = stmt.Close()
	})
	if err != nil {
		return nil, err
	}
	return &Cache{lru: inner}, nil
}

// Get returns the cached statement for a query, if any.
func (c *Cache) Get(query string) (driver.Stmt, bool) {
	return c.lru.Get(query)
}

// Put stores a statement under its query text, possibly evicting and
// closing the least recently used entry.
func (c *Cache) Put(query string, stmt driver.Stmt) {
	c.lru.Add(query, stmt)
}

// Remove drops a statement from the cache, closing it through the
// eviction callback. It is used when a cached statement turns out to
// be broken.
func (c *Cache) Remove(query string) {
	c.lru.Remove(query)
}

// Len returns the number of cached statements.
func (c *Cache) Len() int { return c.lru.Len() }

// Close evicts and closes every cached statement.
func (c *Cache) Close() {
	c.lru.Purge()
}
