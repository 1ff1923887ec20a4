package catalog

import (
	"context"
	"fmt"
	"sync"

	"cebuano/internal/domain"
	"cebuano/internal/repository"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is used when a non-positive size is configured
const DefaultCacheSize = 1024

// Cached decorates an item repository with an LRU of item lookups and a
// memoized active list. Catalog contents are assumed immutable while running.
type Cached struct {
	next  repository.ItemRepository
	cache *lru.Cache[string, domain.Item]

	mu     sync.Mutex
	active []domain.Item
}

// NewCached creates a new caching item repository
func NewCached(next repository.ItemRepository, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, domain.Item](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create item cache: %w", err)
	}
	return &Cached{next: next, cache: cache}, nil
}

// FindByID returns an item by id or nil. Misses are not cached.
func (c *Cached) FindByID(ctx context.Context, id string) (*domain.Item, error) {
	if it, ok := c.cache.Get(id); ok {
		return &it, nil
	}

	it, err := c.next.FindByID(ctx, id)
	if err != nil || it == nil {
		return it, err
	}

	c.cache.Add(id, *it)
	return it, nil
}

// ListAllActive returns active items by rank, loading them once
func (c *Cached) ListAllActive(ctx context.Context) ([]domain.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		items, err := c.next.ListAllActive(ctx)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []domain.Item{}
		}
		c.active = items
	}

	return append([]domain.Item(nil), c.active...), nil
}

// Purge drops every cached entry
func (c *Cached) Purge() {
	c.cache.Purge()

	c.mu.Lock()
	c.active = nil
	c.mu.Unlock()
}
