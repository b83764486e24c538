package session

import (
	"context"
	"errors"
	"sync"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"luxtrail/internal/telemetry"
)

// greptimeClient is the part of the ingester client the writer needs.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// DefaultLightBatch is the number of light rows buffered before a flush.
const DefaultLightBatch = 100

// maxPendingBatches bounds how many batches of light rows are kept while
// GreptimeDB rejects writes. The oldest rows are dropped beyond that.
const maxPendingBatches = 10

// GreptimeDBWriter writes rows to GreptimeDB. Location and checkpoint rows
// are written immediately; light rows are batched and flushed when the batch
// is full, when a checkpoint closes, or on Close.
type GreptimeDBWriter struct {
	client          greptimeClient
	locationTable   string
	lightTable      string
	checkpointTable string
	batchSize       int

	mu     sync.Mutex
	lights []telemetry.LightRow
}

// NewGreptimeDBWriter connects to the GreptimeDB gRPC endpoint at host.
func NewGreptimeDBWriter(host, database string) (*GreptimeDBWriter, error) {
	cfg := greptime.NewConfig(host).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return newGreptimeDBWriter(client), nil
}

func newGreptimeDBWriter(client greptimeClient) *GreptimeDBWriter {
	return &GreptimeDBWriter{
		client:          client,
		locationTable:   telemetry.LocationRow{}.TableName(),
		lightTable:      telemetry.LightRow{}.TableName(),
		checkpointTable: telemetry.CheckpointRow{}.TableName(),
		batchSize:       DefaultLightBatch,
	}
}

// WriteLocation inserts a single location row.
func (w *GreptimeDBWriter) WriteLocation(row telemetry.LocationRow) error {
	tbl, err := table.New(w.locationTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("device_id", types.STRING)
	tbl.AddFieldColumn("seq", types.INT64)
	tbl.AddFieldColumn("lat", types.FLOAT64)
	tbl.AddFieldColumn("lon", types.FLOAT64)
	tbl.AddFieldColumn("alt", types.FLOAT64)
	tbl.AddFieldColumn("name", types.STRING)
	tbl.AddFieldColumn("checkpoint_id", types.STRING)
	tbl.AddFieldColumn("checkpoint_lat", types.FLOAT64)
	tbl.AddFieldColumn("checkpoint_lon", types.FLOAT64)
	tbl.AddFieldColumn("checkpoint_alt", types.FLOAT64)
	tbl.AddFieldColumn("checkpoint_name", types.STRING)
	tbl.AddFieldColumn("distance_m", types.FLOAT64)
	tbl.AddFieldColumn("checkpoint_reset", types.BOOLEAN)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	if err := tbl.AddRow(
		row.DeviceID, int64(row.Seq), row.Lat, row.Lon, row.Alt, row.Name,
		row.CheckpointID, row.CheckpointLat, row.CheckpointLon, row.CheckpointAlt, row.CheckpointName,
		row.DistanceM, row.CheckpointReset, row.Timestamp,
	); err != nil {
		return err
	}
	_, err = w.client.Write(context.Background(), tbl)
	return err
}

// WriteLight buffers a light row and flushes once the batch is full.
func (w *GreptimeDBWriter) WriteLight(row telemetry.LightRow) error {
	w.mu.Lock()
	w.lights = append(w.lights, row)
	full := len(w.lights) >= w.batchSize
	w.mu.Unlock()
	if full {
		return w.Flush()
	}
	return nil
}

// WriteCheckpoint flushes pending light rows and inserts the checkpoint row.
// The checkpoint row is written even when the flush fails.
func (w *GreptimeDBWriter) WriteCheckpoint(row telemetry.CheckpointRow) error {
	flushErr := w.Flush()
	return errors.Join(flushErr, w.writeCheckpoint(row))
}

func (w *GreptimeDBWriter) writeCheckpoint(row telemetry.CheckpointRow) error {
	tbl, err := table.New(w.checkpointTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("device_id", types.STRING)
	tbl.AddTagColumn("checkpoint_id", types.STRING)
	tbl.AddFieldColumn("lat", types.FLOAT64)
	tbl.AddFieldColumn("lon", types.FLOAT64)
	tbl.AddFieldColumn("alt", types.FLOAT64)
	tbl.AddFieldColumn("name", types.STRING)
	tbl.AddFieldColumn("average_lux", types.FLOAT32)
	tbl.AddFieldColumn("samples", types.INT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	if err := tbl.AddRow(
		row.DeviceID, row.CheckpointID, row.Lat, row.Lon, row.Alt, row.Name,
		row.AverageLux, int64(row.Samples), row.Timestamp,
	); err != nil {
		return err
	}
	_, err = w.client.Write(context.Background(), tbl)
	return err
}

// Flush writes any buffered light rows. Rows from a failed write stay
// buffered for the next flush.
func (w *GreptimeDBWriter) Flush() error {
	w.mu.Lock()
	rows := w.lights
	w.lights = nil
	w.mu.Unlock()
	if len(rows) == 0 {
		return nil
	}

	tbl, err := table.New(w.lightTable)
	if err != nil {
		w.requeue(rows)
		return err
	}
	tbl.AddTagColumn("device_id", types.STRING)
	tbl.AddFieldColumn("lux", types.FLOAT32)
	tbl.AddFieldColumn("buffered", types.INT64)
	tbl.AddFieldColumn("cleared", types.BOOLEAN)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		if err := tbl.AddRow(r.DeviceID, r.Lux, int64(r.Buffered), r.Cleared, r.Timestamp); err != nil {
			return err
		}
	}
	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		w.requeue(rows)
		return err
	}
	return nil
}

// requeue puts rows back in front of anything buffered since they were taken.
func (w *GreptimeDBWriter) requeue(rows []telemetry.LightRow) {
	w.mu.Lock()
	defer w.mu.Unlock()
	pending := append(rows, w.lights...)
	if limit := w.batchSize * maxPendingBatches; len(pending) > limit {
		pending = pending[len(pending)-limit:]
	}
	w.lights = pending
}

// Close flushes buffered light rows.
func (w *GreptimeDBWriter) Close() error {
	return w.Flush()
}
