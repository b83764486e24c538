package admin

import (
	"context"
	"errors"
	"sync"

	"luxtrail/internal/geo"
)

// ErrFeedClosed is returned when an event arrives after the feed was closed.
var ErrFeedClosed = errors.New("feed closed")

// Feed turns HTTP ingest requests into the input channels of a session.
type Feed struct {
	locations chan geo.Position
	lights    chan float32
	done      chan struct{}

	mu     sync.RWMutex
	once   sync.Once
	closed bool
}

// NewFeed creates a feed whose channels buffer up to size events each.
func NewFeed(size int) *Feed {
	if size < 0 {
		size = 0
	}
	return &Feed{
		locations: make(chan geo.Position, size),
		lights:    make(chan float32, size),
		done:      make(chan struct{}),
	}
}

// Locations returns the channel of ingested positions.
func (f *Feed) Locations() <-chan geo.Position { return f.locations }

// Lights returns the channel of ingested light samples.
func (f *Feed) Lights() <-chan float32 { return f.lights }

// SendLocation queues pos, waiting until it is accepted, ctx is done or the
// feed is closed.
func (f *Feed) SendLocation(ctx context.Context, pos geo.Position) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return ErrFeedClosed
	}
	select {
	case f.locations <- pos:
		return nil
	case <-f.done:
		return ErrFeedClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SendLight queues a light sample.
func (f *Feed) SendLight(ctx context.Context, lux float32) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return ErrFeedClosed
	}
	select {
	case f.lights <- lux:
		return nil
	case <-f.done:
		return ErrFeedClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting events and closes both channels.
func (f *Feed) Close() {
	f.once.Do(func() {
		close(f.done)
		f.mu.Lock()
		f.closed = true
		close(f.locations)
		close(f.lights)
		f.mu.Unlock()
	})
}
