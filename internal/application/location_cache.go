package application

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/example/boardgame-tables/internal/proposition"
)

const (
	defaultLocationCacheTTL = 30 * time.Second
	locationCacheMaxEntries = 256
	defaultLocationCacheKey = "\x00default"
)

// locationCache keeps read-mostly location lists for a short time. Any
// location mutation purges it before returning to the caller.
type locationCache struct {
	lists    *expirable.LRU[string, []proposition.Location]
	defaults *expirable.LRU[string, proposition.Location]
}

func newLocationCache(ttl time.Duration) *locationCache {
	if ttl <= 0 {
		ttl = defaultLocationCacheTTL
	}
	return &locationCache{
		lists:    expirable.NewLRU[string, []proposition.Location](locationCacheMaxEntries, nil, ttl),
		defaults: expirable.NewLRU[string, proposition.Location](1, nil, ttl),
	}
}

func (c *locationCache) available(viewerKey string) ([]proposition.Location, bool) {
	locations, ok := c.lists.Get(viewerKey)
	if !ok {
		return nil, false
	}
	return cloneLocations(locations), true
}

func (c *locationCache) storeAvailable(viewerKey string, locations []proposition.Location) {
	c.lists.Add(viewerKey, cloneLocations(locations))
}

func (c *locationCache) defaultLocation() (proposition.Location, bool) {
	return c.defaults.Get(defaultLocationCacheKey)
}

func (c *locationCache) storeDefault(location proposition.Location) {
	c.defaults.Add(defaultLocationCacheKey, location)
}

// Invalidate drops every cached entry.
func (c *locationCache) Invalidate() {
	c.lists.Purge()
	c.defaults.Purge()
}

func cloneLocations(locations []proposition.Location) []proposition.Location {
	if locations == nil {
		return nil
	}
	return append([]proposition.Location(nil), locations...)
}
