// Package geocode resolves coordinates to address text.
package geocode

import (
	"context"
	"errors"
	"strings"
	"time"

	"luxtrail/internal/logging"
)

// Unknown is shown when an address cannot be resolved.
const Unknown = "unknown"

// DefaultTimeout bounds a single lookup made through Resolve.
const DefaultTimeout = 2 * time.Second

// ErrNoAddress is returned when the geocoder has no address for a point.
var ErrNoAddress = errors.New("no address found")

// Geocoder turns a latitude/longitude pair into an address line.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (string, error)
}

// Func adapts a function to the Geocoder interface.
type Func func(ctx context.Context, lat, lon float64) (string, error)

func (f Func) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	return f(ctx, lat, lon)
}

// Resolve looks up the address for lat/lon with a bounded wait. Failures,
// timeouts and empty answers are logged and reported as Unknown.
func Resolve(ctx context.Context, g Geocoder, lat, lon float64, timeout time.Duration) string {
	if g == nil {
		return Unknown
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	name, err := g.Reverse(ctx, lat, lon)
	if err == nil {
		name = strings.TrimSpace(name)
		if name == "" {
			err = ErrNoAddress
		}
	}
	if err != nil {
		logging.FromContext(ctx).Warn("could not resolve location", "lat", lat, "lon", lon, "err", err)
		return Unknown
	}
	return name
}

// Static always answers with the same address. An empty address behaves as
// ErrNoAddress.
type Static string

func (s Static) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	if s == "" {
		return "", ErrNoAddress
	}
	return string(s), nil
}
