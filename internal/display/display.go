// Package display formats the text shown on the single status screen.
package display

import (
	"strconv"
	"strings"

	"luxtrail/internal/geo"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatLux(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}

// Describe renders the current position block.
func Describe(p geo.Position, name string) string {
	return describe("", p, name)
}

// DescribeLast renders the checkpoint position block.
func DescribeLast(p geo.Position, name string) string {
	return describe("Last ", p, name)
}

func describe(prefix string, p geo.Position, name string) string {
	var b strings.Builder
	b.WriteString(prefix + "Longitude: " + formatFloat(p.Lon) + "\n")
	b.WriteString(prefix + "Latitude: " + formatFloat(p.Lat) + "\n")
	b.WriteString(prefix + "Altitude: " + formatFloat(p.Alt) + "\n")
	b.WriteString(prefix + "Location Name: " + name)
	return b.String()
}

// Light renders the latest light reading.
func Light(v float32) string {
	return "Light: " + formatLux(v) + " lux"
}

// LastLight renders the average emitted at the last checkpoint.
func LastLight(avg float32) string {
	return "Last Light: " + formatLux(avg) + " lux"
}

// Distance renders the distance to the checkpoint in meters.
func Distance(d float64) string {
	return "Distance: " + formatFloat(d) + " m"
}

// CheckpointEntry renders one entry of the checkpoint log.
func CheckpointEntry(lastDesc string, avg float32) string {
	return lastDesc + "\n" + formatLux(avg) + " lux"
}

// Log appends entries to the checkpoint log text.
func Log(log string, entry string) string {
	if log == "" {
		return entry
	}
	return log + "\n" + entry
}
