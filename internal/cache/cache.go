// Package cache memoizes trip list and detail lookups for the lifetime of a
// browser. Entries never expire; they live until InvalidateAll or process exit.
//
// Concurrent misses for the same key are not collapsed: both callers fetch
// and the last response to arrive overwrites the entry.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pkordes/trip-browser/internal/domain"
)

// Source is the upstream the cache reads through to.
// *client.Client satisfies it.
type Source interface {
	GetList(ctx context.Context, q domain.QueryParams) (domain.TripPage, error)
	GetDetail(ctx context.Context, id string) (domain.Trip, error)
}

// ResponseCache is a read-through cache in front of a Source.
// It satisfies Source itself so it can be dropped in wherever one is expected.
type ResponseCache struct {
	source Source
	log    *slog.Logger

	mu      sync.RWMutex
	lists   map[string]domain.TripPage
	details map[string]domain.Trip
}

// New constructs an empty ResponseCache over source.
func New(source Source, log *slog.Logger) *ResponseCache {
	if log == nil {
		log = slog.Default()
	}
	return &ResponseCache{
		source:  source,
		log:     log,
		lists:   make(map[string]domain.TripPage),
		details: make(map[string]domain.Trip),
	}
}

// CanonicalKey serializes q deterministically. Parameters are sorted by name
// and absent optional fields are omitted, so two field-wise equal queries
// always produce the same key regardless of the order they were built in.
func CanonicalKey(q domain.QueryParams) string {
	return q.Values().Encode()
}

// GetList returns the page for q, fetching it from the source on a miss.
// Failed fetches are not cached.
func (c *ResponseCache) GetList(ctx context.Context, q domain.QueryParams) (domain.TripPage, error) {
	key := CanonicalKey(q)

	c.mu.RLock()
	page, ok := c.lists[key]
	c.mu.RUnlock()
	if ok {
		c.log.DebugContext(ctx, "trip list cache hit", "key", key)
		return page, nil
	}

	c.log.DebugContext(ctx, "trip list cache miss", "key", key)
	page, err := c.source.GetList(ctx, q)
	if err != nil {
		return domain.TripPage{}, fmt.Errorf("cache.ResponseCache.GetList: %w", err)
	}

	c.mu.Lock()
	c.lists[key] = page
	c.mu.Unlock()
	return page, nil
}

// GetDetail returns the trip with id, fetching it from the source on a miss.
func (c *ResponseCache) GetDetail(ctx context.Context, id string) (domain.Trip, error) {
	c.mu.RLock()
	trip, ok := c.details[id]
	c.mu.RUnlock()
	if ok {
		c.log.DebugContext(ctx, "trip detail cache hit", "id", id)
		return trip, nil
	}

	c.log.DebugContext(ctx, "trip detail cache miss", "id", id)
	trip, err := c.source.GetDetail(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("cache.ResponseCache.GetDetail: %w", err)
	}

	c.mu.Lock()
	c.details[id] = trip
	c.mu.Unlock()
	return trip, nil
}

// InvalidateAll empties both maps. Fetches already in flight are unaffected
// and still store their result when they complete.
func (c *ResponseCache) InvalidateAll() {
	c.mu.Lock()
	c.lists = make(map[string]domain.TripPage)
	c.details = make(map[string]domain.Trip)
	c.mu.Unlock()
}

// Len returns the number of cached lists plus cached details.
func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lists) + len(c.details)
}
