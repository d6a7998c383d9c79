package geo

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Fix is the tracker's published position state. Lat and Lng carry the
// raw coordinates formatted to six decimal places.
type Fix struct {
	Lat      string
	Lng      string
	RawLat   float64
	RawLng   float64
	Town     string
	Region   string
	Resolved bool
	At       time.Time
}

// HasCoords reports whether the tracker has received at least one position.
func (f Fix) HasCoords() bool {
	return f.Lat != ""
}

// Lines renders the address block burned into captured photos, one
// overlay line per element. A resolved address is the town and region
// on separate lines; before that, a lookup in flight shows a
// placeholder and known coordinates stand in otherwise.
func (f Fix) Lines(resolving bool) []string {
	if f.Resolved {
		return []string{f.Town, f.Region}
	}
	if resolving {
		return []string{"Resolving address..."}
	}
	if f.HasCoords() {
		return []string{f.Lat + ", " + f.Lng}
	}
	return nil
}

// Tracker collects position updates for one capture session and resolves
// them to an address. Lookups are throttled on the leading edge: a
// position update fires a reverse geocode immediately when none is in
// flight and at least one interval has passed since the last one, so a
// moving device refreshes its address about once per interval.
type Tracker struct {
	geocoder Geocoder
	log      *zap.Logger
	interval time.Duration
	timeout  time.Duration
	onFix    func(Fix)

	mu          sync.Mutex
	active      bool
	announced   bool
	inFlight    bool
	lastTrigger time.Time
	fix         Fix
	onOutcome   func(ok bool)
}

// NewTracker builds an inactive tracker. onFix, when non-nil, is invoked
// once per activation when the first position arrives.
func NewTracker(geocoder Geocoder, interval, timeout time.Duration, log *zap.Logger, onFix func(Fix)) *Tracker {
	return &Tracker{
		geocoder: geocoder,
		log:      log,
		interval: interval,
		timeout:  timeout,
		onFix:    onFix,
	}
}

// ObserveLookups registers fn to receive the outcome of every reverse
// geocode the tracker performs.
func (t *Tracker) ObserveLookups(fn func(ok bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOutcome = fn
}

// Start activates the tracker. Calling Start on an active tracker is a
// no-op apart from re-announcing the last known fix.
func (t *Tracker) Start() {
	t.mu.Lock()
	if t.active {
		fix := t.fix
		announce := t.onFix != nil && fix.HasCoords()
		t.mu.Unlock()
		if announce {
			t.onFix(fix)
		}
		return
	}
	t.active = true
	t.announced = false
	t.mu.Unlock()
}

// Stop deactivates the tracker. The last fix survives so a restarted
// tracker can resume from it.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = false
}

// Snapshot returns the current fix.
func (t *Tracker) Snapshot() Fix {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fix
}

// OverlayLines returns the address lines for the photo overlay,
// reflecting an in-flight lookup.
func (t *Tracker) OverlayLines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fix.Lines(t.inFlight)
}

// Update records a new position. Updates on an inactive tracker are
// ignored. Returns the fix after the update.
func (t *Tracker) Update(lat, lng float64) Fix {
	t.mu.Lock()
	if !t.active {
		fix := t.fix
		t.mu.Unlock()
		return fix
	}

	t.fix.RawLat = lat
	t.fix.RawLng = lng
	t.fix.Lat = strconv.FormatFloat(lat, 'f', 6, 64)
	t.fix.Lng = strconv.FormatFloat(lng, 'f', 6, 64)
	t.fix.At = time.Now()

	first := !t.announced
	t.announced = true

	trigger := false
	now := time.Now()
	if !t.inFlight && now.Sub(t.lastTrigger) >= t.interval {
		t.inFlight = true
		t.lastTrigger = now
		trigger = true
	}

	fix := t.fix
	onFix := t.onFix
	t.mu.Unlock()

	if trigger {
		go t.lookup(lat, lng)
	}
	if first && onFix != nil {
		onFix(fix)
	}
	return fix
}

// lookup resolves the coordinates and overwrites the cached address on
// success. A failure leaves the prior address untouched.
func (t *Tracker) lookup(lat, lng float64) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	place, err := t.geocoder.Reverse(ctx, lat, lng)
	cancel()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.inFlight = false
	if t.onOutcome != nil {
		t.onOutcome(err == nil)
	}
	if err != nil {
		t.log.Warn("reverse geocode failed", zap.Float64("lat", lat), zap.Float64("lng", lng), zap.Error(err))
		return
	}
	t.fix.Town = place.Town
	t.fix.Region = place.Region
	t.fix.Resolved = true
}
