package overlay

import (
	"sync"
	"time"

	"github.com/standardbeagle/uisel/internal/debug"
	"github.com/standardbeagle/uisel/internal/dom"
)

// DefaultPulseDuration is how long the click pulse stays on.
const DefaultPulseDuration = 300 * time.Millisecond

// TrackerConfig configures a Tracker.
type TrackerConfig struct {
	// Exclude matches the floating panel; hovering it or its descendants
	// hides the highlight.
	Exclude dom.Predicate

	// PulseDuration is how long Pulse keeps the pulse on. Default: 300ms
	PulseDuration time.Duration
}

// Tracker keeps one overlay in sync with the hovered element.
type Tracker struct {
	mu         sync.Mutex
	overlay    Overlay
	exclude    dom.Predicate
	pulseFor   time.Duration
	pulseTimer *time.Timer
	visible    bool
	geometry   Geometry
	closed     bool
}

// NewTracker creates a tracker that owns o. The overlay starts hidden.
func NewTracker(o Overlay, cfg TrackerConfig) *Tracker {
	if cfg.PulseDuration <= 0 {
		cfg.PulseDuration = DefaultPulseDuration
	}
	return &Tracker{
		overlay:  o,
		exclude:  cfg.Exclude,
		pulseFor: cfg.PulseDuration,
	}
}

// Excluded reports whether n is the excluded panel or inside it.
func (t *Tracker) Excluded(n dom.Node) bool {
	return IsExcluded(n, t.exclude)
}

// IsExcluded reports whether n or one of its ancestors matches exclude.
func IsExcluded(n dom.Node, exclude dom.Predicate) bool {
	if n == nil || exclude == nil {
		return false
	}
	return dom.Closest(n, exclude) != nil
}

// HandleMove positions the overlay over the event target, or hides it when
// the target is outside the container or inside the excluded panel.
func (t *Tracker) HandleMove(ev *dom.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}

	if !ev.InContainer() || IsExcluded(ev.Target, t.exclude) {
		t.hideLocked()
		return
	}

	g := GeometryOf(ev.Target.BoundingRect(), ev.ScrollX, ev.ScrollY)
	if t.visible && g == t.geometry {
		return
	}
	t.visible = true
	t.geometry = g
	t.overlay.Show(g)
	debug.Trace("overlay", "highlight %s at %.0f,%.0f %.0fx%.0f", ev.Target.TagName(), g.Left, g.Top, g.Width, g.Height)
}

// HandleLeave hides the overlay when the pointer leaves the container.
func (t *Tracker) HandleLeave(*dom.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.hideLocked()
}

// Pulse turns the click pulse on and schedules it off. A second pulse while
// one is running restarts the timer.
func (t *Tracker) Pulse() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}

	if t.pulseTimer != nil {
		t.pulseTimer.Stop()
	}
	t.overlay.SetPulse(true)

	var timer *time.Timer
	timer = time.AfterFunc(t.pulseFor, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.closed || t.pulseTimer != timer {
			return
		}
		t.pulseTimer = nil
		t.overlay.SetPulse(false)
	})
	t.pulseTimer = timer
}

// Pulsing reports whether a pulse is in progress.
func (t *Tracker) Pulsing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pulseTimer != nil
}

// Visible reports whether the overlay is shown and where.
func (t *Tracker) Visible() (Geometry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.geometry, t.visible
}

// Close stops the pulse timer and removes the overlay. It is idempotent.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	if t.pulseTimer != nil {
		t.pulseTimer.Stop()
		t.pulseTimer = nil
	}
	t.visible = false
	t.overlay.Remove()
	debug.Log("overlay", "tracker closed")
}

func (t *Tracker) hideLocked() {
	if !t.visible {
		return
	}
	t.visible = false
	t.overlay.Hide()
}
