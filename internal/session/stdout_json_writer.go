package session

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"luxtrail/internal/telemetry"
)

// JSONStdoutWriter prints rows as JSON lines to STDOUT.
type JSONStdoutWriter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

func (w *JSONStdoutWriter) print(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// WriteLocation outputs a location row in JSON format.
func (w *JSONStdoutWriter) WriteLocation(row telemetry.LocationRow) error { return w.print(row) }

// WriteLight outputs a light row in JSON format.
func (w *JSONStdoutWriter) WriteLight(row telemetry.LightRow) error { return w.print(row) }

// WriteCheckpoint outputs a checkpoint row in JSON format.
func (w *JSONStdoutWriter) WriteCheckpoint(row telemetry.CheckpointRow) error { return w.print(row) }
