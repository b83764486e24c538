// Session runs the event loop that drives a checkpoint tracker.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"luxtrail/internal/display"
	"luxtrail/internal/geo"
	"luxtrail/internal/geocode"
	"luxtrail/internal/logging"
	"luxtrail/internal/telemetry"
	"luxtrail/internal/tracker"
)

// Writer receives the rows produced by a session.
type Writer interface {
	WriteLocation(telemetry.LocationRow) error
	WriteLight(telemetry.LightRow) error
	WriteCheckpoint(telemetry.CheckpointRow) error
}

// Options tune address lookups.
type Options struct {
	// LookupTimeout bounds a single address lookup.
	LookupTimeout time.Duration
	// MaxLookups caps concurrent address lookups. When all slots are busy the
	// location is reported with an unknown name instead of waiting.
	MaxLookups int
}

const defaultMaxLookups = 4

// Screen is the presentation state of a session.
type Screen struct {
	DeviceID        string        `json:"device_id"`
	Description     string        `json:"description"`
	LastDescription string        `json:"last_description"`
	Light           string        `json:"light"`
	LastLight       string        `json:"last_light"`
	Distance        string        `json:"distance"`
	Content         string        `json:"content"`
	Current         *geo.Position `json:"current,omitempty"`
	Checkpoint      *geo.Position `json:"checkpoint,omitempty"`
	DistanceM       float64       `json:"distance_m"`
	Buffered        int           `json:"buffered"`
	Checkpoints     int           `json:"checkpoints"`
	Locations       uint64        `json:"locations"`
	LightSamples    uint64        `json:"light_samples"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// pendingLocation is a processed location update waiting for its address.
type pendingLocation struct {
	seq            uint64
	pos            geo.Position
	update         tracker.Update
	checkpointID   string
	checkpointName string
	at             time.Time
}

type lookupResult struct {
	loc  pendingLocation
	name string
	// retry marks a lookup that only names the checkpoint in loc.
	retry bool
}

// Session feeds location and light events into a tracker and reports rows to
// a writer. The tracker is only touched from the goroutine running Run.
type Session struct {
	deviceID string
	tracker  *tracker.Tracker
	geocoder geocode.Geocoder
	writer   Writer
	opts     Options
	now      func() time.Time

	// owned by Run
	seq            uint64
	describedSeq   uint64
	checkpointID   string
	checkpointName string
	// set while a lookup that names the current checkpoint is outstanding
	checkpointPending bool

	mu     sync.RWMutex
	screen Screen
}

// NewSession creates a session. geocoder may be nil to skip address lookups.
func NewSession(deviceID string, tr *tracker.Tracker, geocoder geocode.Geocoder, writer Writer, opts Options) *Session {
	if tr == nil {
		tr = tracker.New(tracker.Radius, tracker.MaxLightStorage)
	}
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = geocode.DefaultTimeout
	}
	if opts.MaxLookups <= 0 {
		opts.MaxLookups = defaultMaxLookups
	}
	return &Session{
		deviceID: deviceID,
		tracker:  tr,
		geocoder: geocoder,
		writer:   writer,
		opts:     opts,
		now:      time.Now,
		screen: Screen{
			DeviceID:  deviceID,
			LastLight: display.LastLight(0),
			Distance:  display.Distance(0),
		},
	}
}

// Snapshot returns a copy of the current screen.
func (s *Session) Snapshot() Screen {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.screen
}

// Run consumes locations and lights until ctx is done, or until both channels
// are closed and every pending address lookup has reported back.
func (s *Session) Run(ctx context.Context, locations <-chan geo.Position, lights <-chan float32) {
	log := logging.FromContext(ctx)
	log.Info("starting session", "device_id", s.deviceID, "radius_m", s.tracker.Radius(), "max_light_storage", s.tracker.Capacity())

	lookupCtx, cancel := context.WithCancel(ctx)
	var lookups errgroup.Group
	lookups.SetLimit(s.opts.MaxLookups)
	results := make(chan lookupResult, s.opts.MaxLookups)
	defer func() {
		cancel()
		lookups.Wait()
	}()

	pending := 0
	for locations != nil || lights != nil || pending > 0 {
		select {
		case <-ctx.Done():
			log.Info("stopping session", "device_id", s.deviceID)
			return
		case pos, ok := <-locations:
			if !ok {
				locations = nil
				continue
			}
			loc := s.handleLocation(ctx, pos)
			if s.geocoder == nil {
				s.finishLocation(ctx, loc, geocode.Unknown)
				continue
			}
			ownsCheckpoint := loc.update.Initialized || loc.update.CheckpointReset
			if s.startLookup(lookupCtx, &lookups, results, loc, false) {
				pending++
				if ownsCheckpoint {
					s.checkpointPending = true
				}
			} else {
				log.Debug("address lookup skipped, all slots busy", "seq", loc.seq)
				s.finishLocation(ctx, loc, geocode.Unknown)
			}
			// the checkpoint is still unnamed and nothing is resolving it
			if !ownsCheckpoint && s.checkpointName == "" && !s.checkpointPending {
				retry := pendingLocation{pos: loc.update.Checkpoint, checkpointID: s.checkpointID}
				if s.startLookup(lookupCtx, &lookups, results, retry, true) {
					pending++
					s.checkpointPending = true
				}
			}
		case res := <-results:
			pending--
			if res.retry {
				s.nameCheckpoint(ctx, res.loc, res.name)
			} else {
				s.finishLocation(ctx, res.loc, res.name)
			}
		case v, ok := <-lights:
			if !ok {
				lights = nil
				continue
			}
			s.handleLight(ctx, v)
		}
	}
	log.Info("session inputs closed", "device_id", s.deviceID)
}

// startLookup resolves the address of loc off the loop. It reports false when
// every lookup slot is busy.
func (s *Session) startLookup(ctx context.Context, g *errgroup.Group, results chan<- lookupResult, loc pendingLocation, retry bool) bool {
	return g.TryGo(func() error {
		name := geocode.Resolve(ctx, s.geocoder, loc.pos.Lat, loc.pos.Lon, s.opts.LookupTimeout)
		select {
		case results <- lookupResult{loc: loc, name: name, retry: retry}:
		case <-ctx.Done():
		}
		return nil
	})
}

func (s *Session) handleLight(ctx context.Context, v float32) {
	cleared := s.tracker.OnLightSample(v)
	if cleared {
		logging.FromContext(ctx).Debug("light buffer full, cleared", "capacity", s.tracker.Capacity())
	}
	row := telemetry.LightRow{
		Kind:      telemetry.KindLight,
		DeviceID:  s.deviceID,
		Lux:       v,
		Buffered:  s.tracker.Buffered(),
		Cleared:   cleared,
		Timestamp: s.now().UTC(),
	}

	s.mu.Lock()
	s.screen.Light = display.Light(v)
	s.screen.Buffered = row.Buffered
	s.screen.LightSamples++
	s.screen.UpdatedAt = row.Timestamp
	s.mu.Unlock()

	if s.writer != nil {
		if err := s.writer.WriteLight(row); err != nil {
			logging.FromContext(ctx).Error("light write failed", "err", err)
		}
	}
}

// handleLocation applies pos to the tracker and emits the checkpoint summary
// when the radius was crossed. The location row itself is emitted by
// finishLocation once the address is known.
func (s *Session) handleLocation(ctx context.Context, pos geo.Position) pendingLocation {
	now := s.now().UTC()
	s.seq++
	upd := s.tracker.OnLocationUpdate(pos)

	if upd.CheckpointReset {
		s.closeCheckpoint(ctx, upd, now)
	}
	if upd.Initialized || upd.CheckpointReset {
		s.checkpointID = uuid.NewString()
		s.checkpointName = ""
		s.checkpointPending = false
	}

	s.mu.Lock()
	cur, cp := pos, upd.Checkpoint
	s.screen.Current = &cur
	s.screen.Checkpoint = &cp
	s.screen.DistanceM = upd.Distance
	s.screen.Distance = display.Distance(upd.Distance)
	s.screen.Buffered = s.tracker.Buffered()
	s.screen.Locations++
	s.screen.UpdatedAt = now
	s.mu.Unlock()

	return pendingLocation{
		seq:            s.seq,
		pos:            pos,
		update:         upd,
		checkpointID:   s.checkpointID,
		checkpointName: s.checkpointName,
		at:             now,
	}
}

func (s *Session) closeCheckpoint(ctx context.Context, upd tracker.Update, now time.Time) {
	name := s.checkpointName
	if name == "" {
		name = geocode.Unknown
	}
	row := telemetry.CheckpointRow{
		Kind:         telemetry.KindCheckpoint,
		DeviceID:     s.deviceID,
		CheckpointID: s.checkpointID,
		Lat:          upd.Previous.Lat,
		Lon:          upd.Previous.Lon,
		Alt:          upd.Previous.Alt,
		Name:         name,
		AverageLux:   upd.Average,
		Samples:      upd.Samples,
		Timestamp:    now,
	}

	entry := display.CheckpointEntry(display.DescribeLast(upd.Previous, name), upd.Average)
	s.mu.Lock()
	s.screen.Content = display.Log(s.screen.Content, entry)
	s.screen.LastLight = display.LastLight(upd.Average)
	s.screen.Checkpoints++
	s.mu.Unlock()

	logging.FromContext(ctx).Info("checkpoint reached",
		"checkpoint_id", row.CheckpointID, "average_lux", row.AverageLux, "samples", row.Samples)
	if s.writer != nil {
		if err := s.writer.WriteCheckpoint(row); err != nil {
			logging.FromContext(ctx).Error("checkpoint write failed", "err", err)
		}
	}
}

// nameCheckpoint applies the result of a checkpoint retry lookup. Results for
// a checkpoint that has since been replaced are dropped.
func (s *Session) nameCheckpoint(ctx context.Context, cp pendingLocation, name string) {
	if cp.checkpointID != s.checkpointID {
		return
	}
	s.checkpointPending = false
	if name == geocode.Unknown {
		return
	}
	s.checkpointName = name
	logging.FromContext(ctx).Debug("checkpoint named", "checkpoint_id", cp.checkpointID, "name", name)

	s.mu.Lock()
	s.screen.LastDescription = display.DescribeLast(cp.pos, name)
	s.mu.Unlock()
}

// finishLocation records the resolved address and emits the location row.
func (s *Session) finishLocation(ctx context.Context, loc pendingLocation, name string) {
	cpName := loc.checkpointName
	if loc.checkpointID == s.checkpointID {
		// this position became the checkpoint when it was processed
		if loc.update.Initialized || loc.update.CheckpointReset {
			s.checkpointPending = false
			if name != geocode.Unknown {
				s.checkpointName = name
			}
		}
		cpName = s.checkpointName
	}
	if cpName == "" {
		cpName = geocode.Unknown
	}

	row := telemetry.LocationRow{
		Kind:            telemetry.KindLocation,
		DeviceID:        s.deviceID,
		Seq:             loc.seq,
		Lat:             loc.pos.Lat,
		Lon:             loc.pos.Lon,
		Alt:             loc.pos.Alt,
		Name:            name,
		CheckpointID:    loc.checkpointID,
		CheckpointLat:   loc.update.Checkpoint.Lat,
		CheckpointLon:   loc.update.Checkpoint.Lon,
		CheckpointAlt:   loc.update.Checkpoint.Alt,
		CheckpointName:  cpName,
		DistanceM:       loc.update.Distance,
		CheckpointReset: loc.update.CheckpointReset,
		Timestamp:       loc.at,
	}

	s.mu.Lock()
	// a slow lookup must not overwrite the text of a newer location
	if loc.seq > s.describedSeq {
		s.describedSeq = loc.seq
		s.screen.Description = display.Describe(loc.pos, name)
	}
	if loc.checkpointID == s.checkpointID {
		s.screen.LastDescription = display.DescribeLast(loc.update.Checkpoint, cpName)
	}
	s.mu.Unlock()

	if s.writer != nil {
		if err := s.writer.WriteLocation(row); err != nil {
			logging.FromContext(ctx).Error("location write failed", "seq", row.Seq, "err", err)
		}
	}
}
