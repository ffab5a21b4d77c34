package directory

import (
	"context"
	"sync"
	"time"

	"namegame/internal/models"
)

// Cache keeps the last successfully fetched roster for a TTL. Concurrent
// misses may both fetch; the last one to finish wins.
type Cache struct {
	source Source
	ttl    time.Duration
	now    func() time.Time

	mu        sync.RWMutex
	people    []models.Person
	fetchedAt time.Time
}

// NewCache wraps a source with a TTL cache
func NewCache(source Source, ttl time.Duration) *Cache {
	return &Cache{source: source, ttl: ttl, now: time.Now}
}

// Get returns the cached roster, fetching it when missing or stale
func (c *Cache) Get(ctx context.Context) ([]models.Person, error) {
	c.mu.RLock()
	if c.people != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		people := c.people
		c.mu.RUnlock()
		return people, nil
	}
	c.mu.RUnlock()

	return c.Refresh(ctx)
}

// Refresh fetches the roster unconditionally. A failed fetch keeps the previous roster.
func (c *Cache) Refresh(ctx context.Context) ([]models.Person, error) {
	people, err := c.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if people == nil {
		people = []models.Person{}
	}

	c.mu.Lock()
	c.people = people
	c.fetchedAt = c.now()
	c.mu.Unlock()

	return people, nil
}

// TTL returns how long a fetched roster is served
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// FetchedAt returns when the cached roster was fetched, zero when empty
func (c *Cache) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}
