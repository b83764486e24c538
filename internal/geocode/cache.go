package geocode

import (
	"context"
	"fmt"
	"time"

	"luxtrail/internal/logging"
	"luxtrail/internal/store"
)

// DefaultCacheTTL is how long resolved addresses are kept.
const DefaultCacheTTL = 24 * time.Hour

// Cached answers repeated lookups from a store. Coordinates are rounded to
// five decimals (about one meter) for the cache key. Only successful answers
// are cached.
type Cached struct {
	next  Geocoder
	store store.Store
	ttl   time.Duration
}

// NewCached wraps next with a store-backed cache.
func NewCached(next Geocoder, s store.Store, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{next: next, store: s, ttl: ttl}
}

func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("geocode:%.5f,%.5f", lat, lon)
}

func (c *Cached) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	key := cacheKey(lat, lon)
	var name string
	if err := c.store.Get(ctx, key, &name); err == nil && name != "" {
		return name, nil
	}

	name, err := c.next.Reverse(ctx, lat, lon)
	if err != nil {
		return "", err
	}
	if err := c.store.SetTTL(ctx, key, name, c.ttl); err != nil {
		logging.FromContext(ctx).Debug("geocode cache write failed", "key", key, "err", err)
	}
	return name, nil
}
