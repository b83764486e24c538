// Row types emitted for every processed event, with greptime column roles noted.
package telemetry

import (
	"os"
	"time"
)

// Row kinds, stored in the "kind" field of every JSON row.
const (
	KindLocation   = "location"
	KindLight      = "light"
	KindCheckpoint = "checkpoint"
)

// LocationRow describes one processed location update.
type LocationRow struct {
	Kind            string    `json:"kind"`
	DeviceID        string    `json:"device_id"`       // TAG
	Seq             uint64    `json:"seq"`             // FIELD
	Lat             float64   `json:"lat"`             // FIELD
	Lon             float64   `json:"lon"`             // FIELD
	Alt             float64   `json:"alt"`             // FIELD
	Name            string    `json:"name"`            // FIELD
	CheckpointID    string    `json:"checkpoint_id"`   // FIELD
	CheckpointLat   float64   `json:"checkpoint_lat"`  // FIELD
	CheckpointLon   float64   `json:"checkpoint_lon"`  // FIELD
	CheckpointAlt   float64   `json:"checkpoint_alt"`  // FIELD
	CheckpointName  string    `json:"checkpoint_name"` // FIELD
	DistanceM       float64   `json:"distance_m"`      // FIELD
	CheckpointReset bool      `json:"checkpoint_reset"`
	Timestamp       time.Time `json:"ts"` // TIME INDEX
}

// LightRow describes one ambient light sample.
type LightRow struct {
	Kind      string    `json:"kind"`
	DeviceID  string    `json:"device_id"` // TAG
	Lux       float32   `json:"lux"`       // FIELD
	Buffered  int       `json:"buffered"`  // FIELD
	Cleared   bool      `json:"cleared,omitempty"`
	Timestamp time.Time `json:"ts"` // TIME INDEX
}

// CheckpointRow summarises a checkpoint when the device leaves its radius.
type CheckpointRow struct {
	Kind         string    `json:"kind"`
	DeviceID     string    `json:"device_id"`     // TAG
	CheckpointID string    `json:"checkpoint_id"` // TAG
	Lat          float64   `json:"lat"`           // FIELD
	Lon          float64   `json:"lon"`           // FIELD
	Alt          float64   `json:"alt"`           // FIELD
	Name         string    `json:"name"`          // FIELD
	AverageLux   float32   `json:"average_lux"`   // FIELD
	Samples      int       `json:"samples"`       // FIELD
	Timestamp    time.Time `json:"ts"`            // TIME INDEX
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Table names used when writing to GreptimeDB. They can be overridden with
// the LOCATION_TABLE, LIGHT_TABLE and CHECKPOINT_TABLE environment variables.
var (
	LocationTableName   = envOr("LOCATION_TABLE", "device_locations")
	LightTableName      = envOr("LIGHT_TABLE", "light_samples")
	CheckpointTableName = envOr("CHECKPOINT_TABLE", "light_checkpoints")
)

func (LocationRow) TableName() string   { return LocationTableName }
func (LightRow) TableName() string      { return LightTableName }
func (CheckpointRow) TableName() string { return CheckpointTableName }
