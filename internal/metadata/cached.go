package metadata

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of games kept by Cached.
const DefaultCacheSize = 1000

// Cached memoises successful lookups of an underlying provider. Failures are
// not cached so a later lookup can recover.
type Cached struct {
	next  Provider
	cache *lru.Cache[int, Game]
}

// NewCached wraps next with a bounded LRU cache.
func NewCached(next Provider, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[int, Game](size)
	if err != nil {
		return nil, fmt.Errorf("metadata cache: %w", err)
	}
	return &Cached{next: next, cache: cache}, nil
}

// Lookup implements Provider.
func (c *Cached) Lookup(ctx context.Context, gameID int) (Game, error) {
	if game, ok := c.cache.Get(gameID); ok {
		return game, nil
	}
	game, err := c.next.Lookup(ctx, gameID)
	if err != nil {
		return Game{}, err
	}
	c.cache.Add(gameID, game)
	return game, nil
}

// Len returns the number of cached games.
func (c *Cached) Len() int {
	return c.cache.Len()
}
