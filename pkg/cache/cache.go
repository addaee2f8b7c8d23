// Package cache provides a small LRU for fingerprints keyed by source
// content, so repeated fingerprint requests do not recanonicalize inputs
// already seen. It stores fingerprints only: comparisons and breaking
// checks, which need canonical trees, always recanonicalize.
package cache

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize bounds the cache when callers do not choose one.
const DefaultSize = 1024

// Cache maps content keys to fingerprints.
type Cache struct {
	entries *lru.Cache[string, string]
}

// New creates a cache holding up to size fingerprints.
func New(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries}, nil
}

// Key derives the cache key for raw source content.
func Key(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached fingerprint for a content key.
func (c *Cache) Get(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	return c.entries.Get(key)
}

// Add stores a fingerprint under a content key.
func (c *Cache) Add(key, fingerprint string) {
	if c == nil {
		return
	}
	c.entries.Add(key, fingerprint)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}
