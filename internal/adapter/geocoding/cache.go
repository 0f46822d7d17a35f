// Package geocoding provides decorators around domain.Geocoder: an in-memory
// LRU cache and a request rate limiter.
package geocoding

import (
	"context"
	"strings"

	"github.com/P4za/alagAlert/internal/cache"
	"github.com/P4za/alagAlert/internal/domain"
	"github.com/P4za/alagAlert/internal/observability"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   *cache.LRU[string, domain.GeocodingResult]
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator around a geocoder. Entries
// never expire; place coordinates do not change.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		cache:   cache.New[string, domain.GeocodingResult](maxEntries, 0, nil),
		metrics: metrics,
	}
}

func (c *CachedGeocoder) ForwardGeocode(ctx context.Context, query string) (domain.GeocodingResult, error) {
	key := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if result, ok := c.cache.Get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return result, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	result, err := c.inner.ForwardGeocode(ctx, query)
	if err != nil {
		// Misses are not cached so transient "not found" responses can be retried.
		return result, err
	}
	c.cache.Put(key, result)
	return result, nil
}
