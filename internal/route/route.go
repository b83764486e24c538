// Package route describes scripted walks made of straight legs.
package route

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"luxtrail/internal/geo"
)

// Route is an ordered list of legs walked from a start position.
type Route struct {
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
	Legs        []Leg  `yaml:"legs"`
}

// Leg is a straight walk at constant speed under constant light.
type Leg struct {
	Name       string  `yaml:"name"`
	HeadingDeg float64 `yaml:"heading_deg"`
	DistanceM  float64 `yaml:"distance_m"`
	SpeedMPS   float64 `yaml:"speed_mps"`
	LightLux   float64 `yaml:"light_lux"`
}

// Step is one sampled point of a route with the light reading taken there.
type Step struct {
	Leg      string
	Position geo.Position
	Lux      float32
}

// Load reads a YAML route definition from disk.
func Load(path string) (*Route, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read route: %w", err)
	}
	var r Route
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse route: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate reports the first invalid leg.
func (r Route) Validate() error {
	if len(r.Legs) == 0 {
		return errors.New("route has no legs")
	}
	for i, l := range r.Legs {
		switch {
		case l.DistanceM <= 0:
			return fmt.Errorf("leg %d (%s): distance_m must be positive", i, l.Name)
		case l.SpeedMPS <= 0:
			return fmt.Errorf("leg %d (%s): speed_mps must be positive", i, l.Name)
		case l.LightLux < 0:
			return fmt.Errorf("leg %d (%s): light_lux must not be negative", i, l.Name)
		}
	}
	return nil
}

// Length returns the walked distance in meters.
func (r Route) Length() float64 {
	var total float64
	for _, l := range r.Legs {
		total += l.DistanceM
	}
	return total
}

// Plan samples the route every dt seconds starting at start. The first step
// is the start itself; the last step is the end of the final leg.
func (r Route) Plan(start geo.Position, dt float64) []Step {
	if dt <= 0 {
		dt = 1
	}
	steps := []Step{{Position: start}}
	if len(r.Legs) > 0 {
		steps[0].Leg = r.Legs[0].Name
		steps[0].Lux = float32(r.Legs[0].LightLux)
	}
	pos := start
	for _, l := range r.Legs {
		stride := l.SpeedMPS * dt
		for walked := 0.0; walked < l.DistanceM; {
			d := stride
			if walked+d > l.DistanceM {
				d = l.DistanceM - walked
			}
			walked += d
			next := geo.Offset(pos, l.HeadingDeg, d)
			next.Alt = pos.Alt
			pos = next
			steps = append(steps, Step{Leg: l.Name, Position: pos, Lux: float32(l.LightLux)})
		}
	}
	return steps
}
