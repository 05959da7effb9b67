package experience

import (
	"context"
	"slices"
	"time"

	"github.com/patrickmn/go-cache"
)

const activeKey = "experiences:active"

// Source is anything that can produce the active catalog.
type Source interface {
	ActiveExperiences(ctx context.Context) ([]Experience, error)
}

// CachedCatalog keeps a short-lived snapshot of the active catalog in memory.
type CachedCatalog struct {
	next  Source
	cache *cache.Cache
}

func NewCachedCatalog(next Source, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *CachedCatalog) ActiveExperiences(ctx context.Context) ([]Experience, error) {
	if cached, found := c.cache.Get(activeKey); found {
		return slices.Clone(cached.([]Experience)), nil
	}
	experiences, err := c.next.ActiveExperiences(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Set(activeKey, experiences, cache.DefaultExpiration)
	return slices.Clone(experiences), nil
}

// Invalidate drops the snapshot so the next read goes to the source.
func (c *CachedCatalog) Invalidate() {
	c.cache.Delete(activeKey)
}
