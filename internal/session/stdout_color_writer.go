// ColorStdoutWriter prints human-friendly, colorized rows to STDOUT.
package session

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"luxtrail/internal/config"
	"luxtrail/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
	colorWhite   = "\x1b[37m"
)

// ColorStdoutWriter prints rows using ANSI colors. Light rows are only echoed
// every lightEvery samples to keep the output readable.
type ColorStdoutWriter struct {
	cfg        *config.Config
	out        io.Writer
	once       sync.Once
	mu         sync.Mutex
	lightEvery int
	lights     int
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(cfg *config.Config) *ColorStdoutWriter {
	return &ColorStdoutWriter{cfg: cfg, out: os.Stdout, lightEvery: 10}
}

func (w *ColorStdoutWriter) printOverview() {
	if w.cfg == nil {
		return
	}
	fmt.Fprintln(w.out, "Tracker Configuration:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Device:\t%s\n", w.cfg.DeviceID)
	fmt.Fprintf(tw, "Checkpoint Radius (m):\t%.1f\n", w.cfg.Tracker.RadiusM)
	fmt.Fprintf(tw, "Max Light Storage:\t%d\n", w.cfg.Tracker.MaxLightStorage)
	fmt.Fprintf(tw, "Geocoder:\t%s\n", w.cfg.Geocoder.Provider)
	fmt.Fprintf(tw, "Lookup Timeout:\t%s\n", w.cfg.Geocoder.Timeout())
	tw.Flush()
	fmt.Fprintln(w.out)
}

func stamp(ts time.Time) string {
	return fmt.Sprintf("%s[%s]%s", colorGray, ts.Format(time.RFC3339), colorReset)
}

// WriteLocation outputs a location row in colorized format.
func (w *ColorStdoutWriter) WriteLocation(row telemetry.LocationRow) error {
	w.once.Do(w.printOverview)
	w.mu.Lock()
	defer w.mu.Unlock()

	distColor := colorGreen
	if row.CheckpointReset {
		distColor = colorRed
	}
	fmt.Fprintf(w.out, "%s %sLOC%s ", stamp(row.Timestamp), colorBlue, colorReset)
	fmt.Fprintf(w.out, "%sdevice=%s%s ", colorWhite, row.DeviceID, colorReset)
	fmt.Fprintf(w.out, "%slat=%.6f%s ", colorGreen, row.Lat, colorReset)
	fmt.Fprintf(w.out, "%slon=%.6f%s ", colorYellow, row.Lon, colorReset)
	fmt.Fprintf(w.out, "%salt=%.1f%s ", colorMagenta, row.Alt, colorReset)
	fmt.Fprintf(w.out, "%sdist=%.2fm%s ", distColor, row.DistanceM, colorReset)
	fmt.Fprintf(w.out, "%sname=%q%s", colorCyan, row.Name, colorReset)
	fmt.Fprintln(w.out)
	return nil
}

// WriteLight outputs every lightEvery-th light row.
func (w *ColorStdoutWriter) WriteLight(row telemetry.LightRow) error {
	w.once.Do(w.printOverview)
	w.mu.Lock()
	defer w.mu.Unlock()

	w.lights++
	if !row.Cleared && w.lightEvery > 1 && w.lights%w.lightEvery != 1 {
		return nil
	}
	fmt.Fprintf(w.out, "%s %sLIGHT%s lux=%.1f buffered=%d", stamp(row.Timestamp), colorYellow, colorReset, row.Lux, row.Buffered)
	if row.Cleared {
		fmt.Fprintf(w.out, " %scleared%s", colorRed, colorReset)
	}
	fmt.Fprintln(w.out)
	return nil
}

// WriteCheckpoint outputs a checkpoint summary.
func (w *ColorStdoutWriter) WriteCheckpoint(row telemetry.CheckpointRow) error {
	w.once.Do(w.printOverview)
	w.mu.Lock()
	defer w.mu.Unlock()

	fmt.Fprintf(w.out, "%s %sCHECKPOINT%s id=%s lat=%.6f lon=%.6f alt=%.1f name=%q %savg=%.2f lux%s samples=%d\n",
		stamp(row.Timestamp), colorRed, colorReset, row.CheckpointID,
		row.Lat, row.Lon, row.Alt, row.Name,
		colorGreen, row.AverageLux, colorReset, row.Samples)
	return nil
}
