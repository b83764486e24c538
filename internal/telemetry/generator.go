package telemetry

import (
	"math"
	"math/rand"

	"luxtrail/internal/geo"
)

// Walk parameters for a simulated device.
type WalkParams struct {
	SpeedMinMPS  float64
	SpeedMaxMPS  float64
	TurnMaxDeg   float64
	AltJitterM   float64
	LightMeanLux float64
	LightNoise   float64
}

// DefaultWalkParams describes a pedestrian walking outdoors on a cloudy day.
var DefaultWalkParams = WalkParams{
	SpeedMinMPS:  1.0,
	SpeedMaxMPS:  1.8,
	TurnMaxDeg:   25,
	AltJitterM:   0.5,
	LightMeanLux: 1000,
	LightNoise:   0.15,
}

// Generator simulates a device moving on foot and reading an ambient light sensor.
type Generator struct {
	params   WalkParams
	rand     *rand.Rand
	position geo.Position
	heading  float64
	lightLux float64
}

// NewGenerator starts a walk at start. A nil rng uses a time-independent seed of 1.
func NewGenerator(start geo.Position, params WalkParams, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if params.SpeedMaxMPS < params.SpeedMinMPS {
		params.SpeedMaxMPS = params.SpeedMinMPS
	}
	return &Generator{
		params:   params,
		rand:     rng,
		position: start,
		heading:  rng.Float64() * 360,
		lightLux: params.LightMeanLux,
	}
}

// Position returns the current simulated position.
func (g *Generator) Position() geo.Position { return g.position }

// Step advances the walk by dt seconds and returns the new position.
func (g *Generator) Step(dt float64) geo.Position {
	turn := (g.rand.Float64()*2 - 1) * g.params.TurnMaxDeg
	g.heading = math.Mod(g.heading+turn+360, 360)
	speed := g.rand.Float64()*(g.params.SpeedMaxMPS-g.params.SpeedMinMPS) + g.params.SpeedMinMPS

	next := geo.Offset(g.position, g.heading, speed*dt)
	next.Alt = g.position.Alt + (g.rand.Float64()*2-1)*g.params.AltJitterM
	g.position = next
	return next
}

// Light returns the next light sensor reading. Readings drift around the
// configured mean and never go negative.
func (g *Generator) Light() float32 {
	mean := g.params.LightMeanLux
	// mean reversion plus multiplicative noise
	g.lightLux += (mean - g.lightLux) * 0.1
	g.lightLux += g.rand.NormFloat64() * g.params.LightNoise * mean * 0.1
	if g.lightLux < 0 {
		g.lightLux = 0
	}
	return float32(g.lightLux)
}
