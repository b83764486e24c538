package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"luxtrail/internal/geo"
	"luxtrail/internal/logging"
	"luxtrail/internal/telemetry"
)

// replayRow holds the fields of any row kind that replay needs.
type replayRow struct {
	Kind      string    `json:"kind"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Alt       float64   `json:"alt"`
	Lux       float32   `json:"lux"`
	Timestamp time.Time `json:"ts"`
}

// Replay feeds location and light rows recorded by a FileWriter from r back
// into the channels, in file order. A speed >0 paces playback by the recorded
// timestamps divided by speed; otherwise no delay is inserted. Checkpoint rows
// are derived output and skipped. Both channels are closed on return.
func Replay(ctx context.Context, r io.Reader, speed float64, locations chan<- geo.Position, lights chan<- float32) error {
	defer close(locations)
	defer close(lights)

	log := logging.FromContext(ctx)
	dec := json.NewDecoder(r)
	var prev time.Time
	var n int
	for {
		var row replayRow
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				log.Info("replay finished", "rows", n)
				return nil
			}
			return fmt.Errorf("decode row %d: %w", n+1, err)
		}
		n++

		switch row.Kind {
		case telemetry.KindCheckpoint:
			continue
		case telemetry.KindLocation, telemetry.KindLight:
		default:
			return fmt.Errorf("row %d: unknown kind %q", n, row.Kind)
		}

		if !prev.IsZero() && speed > 0 {
			diff := row.Timestamp.Sub(prev)
			if speed != 1 {
				diff = time.Duration(float64(diff) / speed)
			}
			if err := sleep(ctx, diff); err != nil {
				return err
			}
		}
		prev = row.Timestamp

		if row.Kind == telemetry.KindLocation {
			select {
			case locations <- geo.Position{Lat: row.Lat, Lon: row.Lon, Alt: row.Alt}:
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		select {
		case lights <- row.Lux:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ReplayFile opens path and replays its rows.
func ReplayFile(ctx context.Context, path string, speed float64, locations chan<- geo.Position, lights chan<- float32) error {
	f, err := os.Open(path)
	if err != nil {
		close(locations)
		close(lights)
		return err
	}
	defer f.Close()
	return Replay(ctx, f, speed, locations, lights)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
