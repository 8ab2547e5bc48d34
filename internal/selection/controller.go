// Package selection implements selection mode: while it is active, hovering
// highlights elements and the first qualifying click resolves the clicked
// element into a component and ends the mode.
package selection

import (
	"fmt"
	"sync"
	"time"

	"github.com/standardbeagle/uisel/internal/debug"
	"github.com/standardbeagle/uisel/internal/dom"
	"github.com/standardbeagle/uisel/internal/notify"
	"github.com/standardbeagle/uisel/internal/overlay"
	"github.com/standardbeagle/uisel/internal/resolve"
)

// Surface is the page the controller attaches to.
type Surface interface {
	// CreateOverlay creates a hidden highlight element.
	CreateOverlay() overlay.Overlay
	// AddListener registers h for kind and returns a function that removes
	// the registration. capture requests capture-phase delivery.
	AddListener(kind dom.EventKind, capture bool, h dom.Handler) (remove func())
}

// Config configures a Controller.
type Config struct {
	Resolver *resolve.Resolver
	Notifier notify.Notifier
	State    *State

	// Exclude matches the floating panel, whose clicks and hovers are ignored.
	Exclude dom.Predicate

	// PulseDuration is the click pulse length. Default: 300ms
	PulseDuration time.Duration

	// OnSelect runs after a selection is committed and the mode has ended.
	// The controller is unlocked by then, so OnSelect may call back into it.
	OnSelect func(HistoryEntry)
}

// Controller owns the selection-mode flag for one page and the session that
// exists while the mode is on.
type Controller struct {
	mu       sync.Mutex
	surface  Surface
	resolver *resolve.Resolver
	notifier notify.Notifier
	state    *State
	exclude  dom.Predicate
	pulseFor time.Duration
	onSelect func(HistoryEntry)

	session  *session
	onChange []func(active bool)
}

// NewController creates an inactive controller for surface.
func NewController(surface Surface, cfg Config) *Controller {
	if cfg.Resolver == nil {
		cfg.Resolver = resolve.New(resolve.Config{})
	}
	if cfg.State == nil {
		cfg.State = NewState(DefaultHistorySize)
	}
	if cfg.PulseDuration <= 0 {
		cfg.PulseDuration = overlay.DefaultPulseDuration
	}
	return &Controller{
		surface:  surface,
		resolver: cfg.Resolver,
		notifier: cfg.Notifier,
		state:    cfg.State,
		exclude:  cfg.Exclude,
		pulseFor: cfg.PulseDuration,
		onSelect: cfg.OnSelect,
	}
}

// OnChange registers fn to run on every mode transition. fn runs while the
// controller is locked and must not call back into it.
func (c *Controller) OnChange(fn func(active bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// State returns the selection state the controller commits to.
func (c *Controller) State() *State {
	return c.state
}

// IsActive reports whether selection mode is on.
func (c *Controller) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

// Enable turns selection mode on. Enabling an active controller does nothing.
func (c *Controller) Enable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enableLocked()
}

// Disable turns selection mode off and tears the session down. Disabling an
// inactive controller does nothing.
func (c *Controller) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disableLocked()
}

// Toggle flips the mode and returns the new value.
func (c *Controller) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		c.disableLocked()
		return false
	}
	c.enableLocked()
	return true
}

// Reset clears the selection and turns the mode off.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disableLocked()
	c.state.Clear()
}

func (c *Controller) enableLocked() {
	if c.session != nil {
		return
	}
	c.session = c.openSession()
	debug.Log("selection", "selection mode enabled")
	c.notifyChangeLocked(true)
}

func (c *Controller) disableLocked() {
	if c.session == nil {
		return
	}
	s := c.session
	c.session = nil
	s.close()
	debug.Log("selection", "selection mode disabled")
	c.notifyChangeLocked(false)
}

func (c *Controller) notifyChangeLocked(active bool) {
	for _, fn := range c.onChange {
		fn(active)
	}
}

func (c *Controller) notify(msg string, kind notify.Kind) {
	if c.notifier != nil {
		c.notifier.Notify(msg, kind)
	}
}

// handleClick is the capture-phase click listener. A qualifying click is
// suppressed, resolved, committed and ends selection mode. Anything else is
// left untouched. The select hook and notifier run after the lock is released.
func (c *Controller) handleClick(s *session, ev *dom.Event) {
	entry, ok := c.commitClick(s, ev)
	if !ok {
		return
	}
	if c.onSelect != nil {
		c.onSelect(entry)
	}
	c.notify(fmt.Sprintf("Selected %s component", entry.Target.ComponentName), notify.Success)
}

func (c *Controller) commitClick(s *session, ev *dom.Event) (HistoryEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != s || !s.qualifies(ev) {
		return HistoryEntry{}, false
	}

	s.tracker.Pulse()
	ev.PreventDefault()
	ev.StopPropagation()

	res := c.resolver.Resolve(ev.Target, ev.Container)
	entry := c.state.Commit(res)
	debug.Log("selection", "selected %s (%s) at %s", res.Target.ComponentName, res.Strategy, res.Target.FilePath)

	c.disableLocked()
	return entry, true
}

func (c *Controller) handleMove(s *session, ev *dom.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != s {
		return
	}
	s.tracker.HandleMove(ev)
}

func (c *Controller) handleLeave(s *session, ev *dom.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != s {
		return
	}
	s.tracker.HandleLeave(ev)
}
