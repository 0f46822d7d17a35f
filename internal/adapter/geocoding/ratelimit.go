package geocoding

import (
	"context"
	"fmt"

	"github.com/P4za/alagAlert/internal/domain"
	"golang.org/x/time/rate"
)

// RateLimited wraps a Geocoder so that calls never exceed rps requests per
// second. Callers block until a token is available or ctx is done.
type RateLimited struct {
	inner   domain.Geocoder
	limiter *rate.Limiter
}

// NewRateLimited creates a rate limiting decorator. rps may be fractional.
func NewRateLimited(inner domain.Geocoder, rps float64) *RateLimited {
	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (r *RateLimited) ForwardGeocode(ctx context.Context, query string) (domain.GeocodingResult, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.inner.ForwardGeocode(ctx, query)
}
