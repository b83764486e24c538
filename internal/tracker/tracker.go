// Package tracker keeps the checkpoint and light-averaging state for one device.
//
// A Tracker is not safe for concurrent use. It is meant to be owned by a single
// event loop that feeds it location updates and light samples in arrival order.
package tracker

import "luxtrail/internal/geo"

const (
	// Radius is the distance in meters from the checkpoint that triggers a reset.
	Radius = 30.0
	// MaxLightStorage is the number of light samples kept between checkpoints.
	MaxLightStorage = 5000
)

// Update is the outcome of a location update.
type Update struct {
	// Distance from the checkpoint in meters, clamped to the radius.
	Distance float64
	// Initialized is set on the first update, which creates the checkpoint.
	Initialized bool
	// CheckpointReset is set when the radius was crossed. Average, Samples and
	// Previous are only meaningful when it is set.
	CheckpointReset bool
	Average         float32
	Samples         int
	Previous        geo.Position
	// Checkpoint is the checkpoint after the update was applied.
	Checkpoint geo.Position
}

// Tracker holds the current position, the last checkpoint and the light
// samples collected since that checkpoint.
type Tracker struct {
	radius        float64
	capacity      int
	current       geo.Position
	checkpoint    geo.Position
	hasCheckpoint bool
	lights        []float32
	overflows     int
}

// New returns a Tracker. Non-positive radius or capacity fall back to Radius
// and MaxLightStorage.
func New(radius float64, capacity int) *Tracker {
	if radius <= 0 {
		radius = Radius
	}
	if capacity <= 0 {
		capacity = MaxLightStorage
	}
	return &Tracker{
		radius:   radius,
		capacity: capacity,
		lights:   make([]float32, 0, 64),
	}
}

// OnLocationUpdate records pos as the current position and checks it against
// the checkpoint.
func (t *Tracker) OnLocationUpdate(pos geo.Position) Update {
	t.current = pos
	if !t.hasCheckpoint {
		t.checkpoint = pos
		t.hasCheckpoint = true
		return Update{Initialized: true, Checkpoint: pos}
	}

	dist := geo.Distance(t.checkpoint, pos)
	if dist < t.radius {
		return Update{Distance: dist, Checkpoint: t.checkpoint}
	}

	upd := Update{
		Distance:        t.radius,
		CheckpointReset: true,
		Average:         ComputeAverage(t.lights),
		Samples:         len(t.lights),
		Previous:        t.checkpoint,
		Checkpoint:      pos,
	}
	t.checkpoint = pos
	t.lights = t.lights[:0]
	return upd
}

// OnLightSample appends v to the sample buffer. A full buffer is emptied
// before the append; older samples are dropped all at once, not one by one.
// It reports whether the buffer was cleared. The clear happens on the insert
// that would exceed the capacity, so Buffered never exceeds it.
func (t *Tracker) OnLightSample(v float32) bool {
	cleared := false
	if len(t.lights) >= t.capacity {
		t.lights = t.lights[:0]
		t.overflows++
		cleared = true
	}
	t.lights = append(t.lights, v)
	return cleared
}

// Current returns the last position seen, or false before the first update.
func (t *Tracker) Current() (geo.Position, bool) {
	return t.current, t.hasCheckpoint
}

// Checkpoint returns the checkpoint, or false while none is set.
func (t *Tracker) Checkpoint() (geo.Position, bool) {
	return t.checkpoint, t.hasCheckpoint
}

// Buffered returns the number of samples collected since the last checkpoint.
func (t *Tracker) Buffered() int { return len(t.lights) }

// Samples returns a copy of the buffered samples.
func (t *Tracker) Samples() []float32 {
	out := make([]float32, len(t.lights))
	copy(out, t.lights)
	return out
}

// Overflows returns how many times the sample buffer was cleared for being full.
func (t *Tracker) Overflows() int { return t.overflows }

// Radius returns the reset distance in meters.
func (t *Tracker) Radius() float64 { return t.radius }

// Capacity returns the sample buffer capacity.
func (t *Tracker) Capacity() int { return t.capacity }

// ComputeAverage returns the arithmetic mean of values, or 0 for none.
// The sum is accumulated in float32.
func ComputeAverage(values []float32) float32 {
	if len(values) == 0 {
		return 0
	}
	var sum float32
	for _, v := range values {
		sum += v
	}
	return sum / float32(len(values))
}
