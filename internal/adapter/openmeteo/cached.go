package openmeteo

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/P4za/alagAlert/internal/cache"
	"github.com/P4za/alagAlert/internal/domain"
	"github.com/P4za/alagAlert/internal/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// Forecast cache defaults.
const (
	DefaultCacheSize = 500
	DefaultCacheTTL  = 600 * time.Second
)

// CachedForecaster wraps a ForecastSource with a bounded, expiring cache keyed
// on the normalized query. Concurrent misses for the same key share one
// upstream call.
type CachedForecaster struct {
	inner   domain.ForecastSource
	cache   *cache.LRU[string, domain.ForecastSeries]
	group   singleflight.Group
	metrics *observability.Metrics
}

// NewCachedForecaster creates a cache decorator around a forecast source.
func NewCachedForecaster(inner domain.ForecastSource, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedForecaster {
	return &CachedForecaster{
		inner:   inner,
		cache:   cache.New[string, domain.ForecastSeries](maxEntries, ttl, clock),
		metrics: metrics,
	}
}

// FetchHourlyForecast returns the cached series for q when fresh, otherwise
// fetches it once and stores it. Failures are never cached.
//
// The shared fetch runs detached from any one caller's cancellation and is
// bounded by the HTTP client timeout instead. Each caller stops waiting when
// its own ctx is done.
func (c *CachedForecaster) FetchHourlyForecast(ctx context.Context, q domain.ForecastQuery) (domain.ForecastSeries, error) {
	q = q.Normalize()
	key := CacheKey(q)

	if series, ok := c.cache.Get(key); ok {
		c.metrics.ForecastCache.WithLabelValues("hit").Inc()
		return series, nil
	}
	c.metrics.ForecastCache.WithLabelValues("miss").Inc()

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		series, err := c.inner.FetchHourlyForecast(shared, q)
		if err != nil {
			return nil, err
		}
		c.cache.Put(key, series)
		return series, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(domain.ForecastSeries), nil
	}
}

// CacheKey builds the cache signature for an already normalized query:
// coordinates rounded to 4 decimals, day count and timezone.
func CacheKey(q domain.ForecastQuery) string {
	return fmt.Sprintf("%.4f,%.4f,%d,%s", round4(q.Lat), round4(q.Lon), q.ForecastDays, q.Timezone)
}

func round4(v float64) float64 {
	r := math.Round(v*1e4) / 1e4
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}
