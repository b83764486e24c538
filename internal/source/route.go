package source

import (
	"context"
	"time"

	"luxtrail/internal/geo"
	"luxtrail/internal/logging"
	"luxtrail/internal/route"
)

// Route sends the planned steps in order: each step's position followed by
// lightsPerStep light samples, then waits interval (no wait when interval is
// zero). Both channels are closed on return.
func Route(ctx context.Context, steps []route.Step, interval time.Duration, lightsPerStep int, locations chan<- geo.Position, lights chan<- float32) error {
	defer close(locations)
	defer close(lights)

	log := logging.FromContext(ctx)
	log.Info("starting route", "steps", len(steps), "interval", interval)
	leg := ""
	for i, st := range steps {
		if st.Leg != leg {
			leg = st.Leg
			log.Info("route leg", "leg", leg, "step", i)
		}
		select {
		case locations <- st.Position:
		case <-ctx.Done():
			return ctx.Err()
		}
		for j := 0; j < lightsPerStep; j++ {
			select {
			case lights <- st.Lux:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if i < len(steps)-1 {
			if err := sleep(ctx, interval); err != nil {
				return err
			}
		}
	}
	log.Info("route finished")
	return nil
}
