package session

import (
	"encoding/json"
	"os"
	"sync"

	"luxtrail/internal/telemetry"
)

// FileWriter appends every row to a single JSONL file. The "kind" field tells
// rows apart, which lets the file be replayed later.
type FileWriter struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewFileWriter creates (or truncates) path.
func NewFileWriter(path string) (*FileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &FileWriter{file: f, enc: json.NewEncoder(f)}, nil
}

func (f *FileWriter) encode(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enc.Encode(v)
}

// WriteLocation logs a location row.
func (f *FileWriter) WriteLocation(row telemetry.LocationRow) error {
	row.Kind = telemetry.KindLocation
	return f.encode(row)
}

// WriteLight logs a light row.
func (f *FileWriter) WriteLight(row telemetry.LightRow) error {
	row.Kind = telemetry.KindLight
	return f.encode(row)
}

// WriteCheckpoint logs a checkpoint row.
func (f *FileWriter) WriteCheckpoint(row telemetry.CheckpointRow) error {
	row.Kind = telemetry.KindCheckpoint
	return f.encode(row)
}

// Close closes the underlying file.
func (f *FileWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}
