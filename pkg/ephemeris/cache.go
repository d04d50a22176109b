package ephemeris

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/kjnapes/spacerocks/pkg/astronomy/astrotime"
	"github.com/kjnapes/spacerocks/pkg/astronomy/coordinates"
	"github.com/kjnapes/spacerocks/pkg/astronomy/nbody"
)

// CacheObserver is told whether each lookup was served from the cache
type CacheObserver interface {
	ObserveCache(hit bool)
}

// CachedProvider memoizes another provider's answers in an LRU cache
type CachedProvider struct {
	next     nbody.EphemerisProvider
	cache    *lru.Cache
	Observer CacheObserver
}

func NewCachedProvider(next nbody.EphemerisProvider, size int) (*CachedProvider, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &CachedProvider{next: next, cache: cache}, nil
}

// cacheKey identifies a request by instant rather than representation,
// to a resolution of about a millisecond
func cacheKey(name string, epoch astrotime.Time, plane coordinates.ReferencePlane, origin coordinates.Origin) string {
	return fmt.Sprintf("%s|%.8f|%s|%s", name, epoch.In(astrotime.TDB).JD(), plane, origin)
}

func (c *CachedProvider) BodyFromService(ctx context.Context, name string, epoch astrotime.Time, plane coordinates.ReferencePlane, origin coordinates.Origin) (nbody.Body, error) {
	key := cacheKey(name, epoch, plane, origin)
	if v, ok := c.cache.Get(key); ok {
		c.observe(true)
		b := v.(nbody.Body).Clone()
		b.Epoch = epoch
		return b, nil
	}
	c.observe(false)

	b, err := c.next.BodyFromService(ctx, name, epoch, plane, origin)
	if err != nil {
		return nbody.Body{}, err
	}
	c.cache.Add(key, b.Clone())
	return b, nil
}

// Len is the number of cached states
func (c *CachedProvider) Len() int { return c.cache.Len() }

func (c *CachedProvider) observe(hit bool) {
	if c.Observer != nil {
		c.Observer.ObserveCache(hit)
	}
}
