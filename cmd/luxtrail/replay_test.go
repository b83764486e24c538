package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"luxtrail/internal/config"
	"luxtrail/internal/geo"
	"luxtrail/internal/logging"
	"luxtrail/internal/session"
	"luxtrail/internal/source"
	"luxtrail/internal/telemetry"
)

type checkpointCollector struct {
	rows []telemetry.CheckpointRow
}

func (c *checkpointCollector) WriteLocation(telemetry.LocationRow) error { return nil }
func (c *checkpointCollector) WriteLight(telemetry.LightRow) error       { return nil }
func (c *checkpointCollector) WriteCheckpoint(r telemetry.CheckpointRow) error {
	c.rows = append(c.rows, r)
	return nil
}

// runRecorded walks steps positions north in 12 m steps with four light
// samples each, recording every row to path.
func runRecorded(t *testing.T, ctx context.Context, path string, steps int) []telemetry.CheckpointRow {
	t.Helper()
	fw, err := session.NewFileWriter(path)
	if err != nil {
		t.Fatalf("file writer: %v", err)
	}
	col := &checkpointCollector{}
	cfg := config.Default()
	sess := newSession(cfg, nil, session.NewMultiWriter(fw, col))

	locations := make(chan geo.Position)
	lights := make(chan float32)
	done := make(chan struct{})
	go func() {
		sess.Run(ctx, locations, lights)
		close(done)
	}()
	pos := geo.Position{Lat: 48.2, Lon: 16.4}
	for i := 0; i < steps; i++ {
		locations <- pos
		for j := 0; j < 4; j++ {
			lights <- float32(100*i + j)
		}
		pos = geo.Offset(pos, 0, 12)
	}
	close(locations)
	close(lights)
	<-done
	if err := fw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return col.rows
}

func TestReplayReproducesCheckpoints(t *testing.T) {
	ctx := logging.NewContext(context.Background(), logging.Discard())
	path := filepath.Join(t.TempDir(), "rows.jsonl")
	recorded := runRecorded(t, ctx, path, 10)
	if len(recorded) < 2 {
		t.Fatalf("expected several checkpoints, got %d", len(recorded))
	}

	col := &checkpointCollector{}
	sess := newSession(config.Default(), nil, col)
	locations := make(chan geo.Position)
	lights := make(chan float32)
	errc := make(chan error, 1)
	go func() { errc <- source.ReplayFile(ctx, path, 0, locations, lights) }()

	done := make(chan struct{})
	go func() {
		sess.Run(ctx, locations, lights)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("replay did not finish")
	}
	if err := <-errc; err != nil {
		t.Fatalf("replay: %v", err)
	}

	if len(col.rows) != len(recorded) {
		t.Fatalf("replayed %d checkpoints, recorded %d", len(col.rows), len(recorded))
	}
	for i := range recorded {
		got, want := col.rows[i], recorded[i]
		if got.AverageLux != want.AverageLux || got.Samples != want.Samples || got.Lat != want.Lat || got.Lon != want.Lon {
			t.Fatalf("checkpoint %d = %+v, want %+v", i, got, want)
		}
	}
}
