// Package source produces location and light events for a session.
package source

import (
	"context"
	"time"

	"luxtrail/internal/geo"
	"luxtrail/internal/logging"
	"luxtrail/internal/telemetry"
)

// Walk drives gen on two tickers, sending a position every locationEvery and
// a light sample every lightEvery, until ctx is done. The starting position is
// sent first. Both channels are closed on return.
func Walk(ctx context.Context, gen *telemetry.Generator, locationEvery, lightEvery time.Duration, locations chan<- geo.Position, lights chan<- float32) {
	defer close(locations)
	defer close(lights)

	log := logging.FromContext(ctx)
	log.Info("starting walk", "start", gen.Position().String(), "location_interval", locationEvery, "light_interval", lightEvery)

	select {
	case locations <- gen.Position():
	case <-ctx.Done():
		return
	}

	locTicker := time.NewTicker(locationEvery)
	defer locTicker.Stop()
	lightTicker := time.NewTicker(lightEvery)
	defer lightTicker.Stop()

	dt := locationEvery.Seconds()
	for {
		select {
		case <-ctx.Done():
			log.Info("walk stopped")
			return
		case <-locTicker.C:
			pos := gen.Step(dt)
			select {
			case locations <- pos:
			case <-ctx.Done():
				return
			}
		case <-lightTicker.C:
			v := gen.Light()
			select {
			case lights <- v:
			case <-ctx.Done():
				return
			}
		}
	}
}
