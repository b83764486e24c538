package session

import (
	"context"
	"fmt"
	"time"

	"luxtrail/internal/store"
	"luxtrail/internal/telemetry"
)

// DefaultStateTTL is how long the latest state of a device is kept.
const DefaultStateTTL = time.Hour

// RedisWriter keeps the latest location, light sample and checkpoint of every
// device in a key/value store. Keys expire after ttl without updates.
type RedisWriter struct {
	store  store.Store
	ttl    time.Duration
	prefix string
}

// NewRedisWriter creates a RedisWriter on top of st.
func NewRedisWriter(st store.Store, ttl time.Duration) *RedisWriter {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &RedisWriter{store: st, ttl: ttl, prefix: "state"}
}

// Key returns the store key holding the latest row of kind for deviceID.
func (w *RedisWriter) Key(deviceID, kind string) string {
	return fmt.Sprintf("%s:%s:%s", w.prefix, deviceID, kind)
}

// WriteLocation stores the row as the device's latest location.
func (w *RedisWriter) WriteLocation(row telemetry.LocationRow) error {
	row.Kind = telemetry.KindLocation
	return w.store.SetTTL(context.Background(), w.Key(row.DeviceID, row.Kind), row, w.ttl)
}

// WriteLight stores the row as the device's latest light sample.
func (w *RedisWriter) WriteLight(row telemetry.LightRow) error {
	row.Kind = telemetry.KindLight
	return w.store.SetTTL(context.Background(), w.Key(row.DeviceID, row.Kind), row, w.ttl)
}

// WriteCheckpoint stores the row as the device's last closed checkpoint.
func (w *RedisWriter) WriteCheckpoint(row telemetry.CheckpointRow) error {
	row.Kind = telemetry.KindCheckpoint
	return w.store.SetTTL(context.Background(), w.Key(row.DeviceID, row.Kind), row, w.ttl)
}
