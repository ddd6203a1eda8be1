package library

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedSource keeps recently loaded entries in memory. Listings are not
// cached; they are cheap and change when the data directory does.
type CachedSource struct {
	Source
	entries *lru.Cache[string, *Entry]
}

// NewCachedSource wraps src with an LRU of size decoded entries.
func NewCachedSource(src Source, size int) (*CachedSource, error) {
	entries, err := lru.New[string, *Entry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create entry cache: %w", err)
	}
	return &CachedSource{Source: src, entries: entries}, nil
}

// Entry implements Source.
func (c *CachedSource) Entry(ctx context.Context, name string, index int) (*Entry, error) {
	key := entryKey(name, index)
	if e, ok := c.entries.Get(key); ok {
		return e, nil
	}
	e, err := c.Source.Entry(ctx, name, index)
	if err != nil {
		return nil, err
	}
	c.entries.Add(key, e)
	return e, nil
}

// Purge drops every cached entry.
func (c *CachedSource) Purge() {
	c.entries.Purge()
}

// Len returns the number of cached entries.
func (c *CachedSource) Len() int {
	return c.entries.Len()
}

func entryKey(name string, index int) string {
	return fmt.Sprintf("%s/%d", name, index)
}
