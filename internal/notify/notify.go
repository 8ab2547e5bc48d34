// Package notify implements the toast notification channel used to report
// selection results and validation failures to the user.
package notify

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind is the severity of a notification.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Info    Kind = "info"
)

// ParseKind converts a string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Success, Error, Info:
		return k, nil
	case "":
		return Info, nil
	default:
		return "", fmt.Errorf("unknown notification kind %q (use success, error, info)", s)
	}
}

// Notifier receives user-facing notifications.
type Notifier interface {
	Notify(message string, kind Kind)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(message string, kind Kind)

// Notify calls f(message, kind).
func (f NotifierFunc) Notify(message string, kind Kind) {
	f(message, kind)
}

// Toast is a visible notification.
type Toast struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// Title returns the part of the message before the first '|'.
func (t Toast) Title() string {
	title, _, _ := strings.Cut(t.Message, "|")
	title = strings.TrimSpace(title)
	if title == "" {
		return "Notification"
	}
	return title
}

// Description returns the part of the message after the first '|', if any.
func (t Toast) Description() string {
	_, desc, _ := strings.Cut(t.Message, "|")
	return strings.TrimSpace(desc)
}

// Config configures a Center.
type Config struct {
	// Duration is how long a toast stays visible. Default: 3 seconds
	Duration time.Duration

	// MaxVisible caps simultaneously visible toasts; the oldest are dropped.
	// Default: 3
	MaxVisible int

	// Disabled starts the center with notifications turned off.
	Disabled bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Duration:   3 * time.Second,
		MaxVisible: 3,
	}
}

// Event is delivered to subscribers when toasts appear or disappear.
type Event struct {
	Type  string `json:"type"` // "show" or "dismiss"
	Toast Toast  `json:"toast"`
}

// Center keeps the list of visible toasts and expires them.
type Center struct {
	mu          sync.Mutex
	enabled     bool
	duration    time.Duration
	maxVisible  int
	toasts      []Toast
	timers      map[string]*time.Timer
	subscribers []func(Event)
	closed      bool
}

// NewCenter creates a notification center.
func NewCenter(cfg Config) *Center {
	if cfg.Duration == 0 {
		cfg.Duration = 3 * time.Second
	}
	if cfg.MaxVisible == 0 {
		cfg.MaxVisible = 3
	}
	return &Center{
		enabled:    !cfg.Disabled,
		duration:   cfg.Duration,
		maxVisible: cfg.MaxVisible,
		timers:     make(map[string]*time.Timer),
	}
}

// Subscribe registers fn for show and dismiss events.
// fn runs outside the center's lock.
func (c *Center) Subscribe(fn func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// Notify implements Notifier. It does nothing while notifications are off.
func (c *Center) Notify(message string, kind Kind) {
	c.mu.Lock()
	if !c.enabled || c.closed {
		c.mu.Unlock()
		return
	}

	toast := Toast{
		ID:        uuid.NewString(),
		Message:   message,
		Kind:      kind,
		CreatedAt: time.Now(),
	}
	c.toasts = append(c.toasts, toast)
	events := []Event{{Type: "show", Toast: toast}}

	for len(c.toasts) > c.maxVisible {
		dropped := c.toasts[0]
		c.toasts = c.toasts[1:]
		c.stopTimerLocked(dropped.ID)
		events = append(events, Event{Type: "dismiss", Toast: dropped})
	}

	id := toast.ID
	c.timers[id] = time.AfterFunc(c.duration, func() { c.Remove(id) })
	subs := c.subscribersLocked()
	c.mu.Unlock()

	publish(subs, events)
}

// Remove dismisses a toast. Unknown IDs are ignored.
func (c *Center) Remove(id string) {
	c.mu.Lock()
	var removed *Toast
	for i, t := range c.toasts {
		if t.ID == id {
			removed = &c.toasts[i]
			c.toasts = append(c.toasts[:i:i], c.toasts[i+1:]...)
			break
		}
	}
	if removed == nil {
		c.mu.Unlock()
		return
	}
	ev := Event{Type: "dismiss", Toast: *removed}
	c.stopTimerLocked(id)
	subs := c.subscribersLocked()
	c.mu.Unlock()

	publish(subs, []Event{ev})
}

// SetEnabled turns notifications on or off. Turning them off clears every
// visible toast.
func (c *Center) SetEnabled(enabled bool) {
	c.mu.Lock()
	c.enabled = enabled
	if enabled {
		c.mu.Unlock()
		return
	}
	events := c.clearLocked()
	subs := c.subscribersLocked()
	c.mu.Unlock()

	publish(subs, events)
}

// Enabled reports whether notifications are shown.
func (c *Center) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Toasts returns a copy of the visible toasts, oldest first.
func (c *Center) Toasts() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Toast, len(c.toasts))
	copy(out, c.toasts)
	return out
}

// Close stops all expiry timers. The center ignores notifications afterwards.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
	c.toasts = nil
}

func (c *Center) clearLocked() []Event {
	events := make([]Event, 0, len(c.toasts))
	for _, t := range c.toasts {
		c.stopTimerLocked(t.ID)
		events = append(events, Event{Type: "dismiss", Toast: t})
	}
	c.toasts = nil
	return events
}

func (c *Center) stopTimerLocked(id string) {
	if t, ok := c.timers[id]; ok {
		t.Stop()
		delete(c.timers, id)
	}
}

func (c *Center) subscribersLocked() []func(Event) {
	subs := make([]func(Event), len(c.subscribers))
	copy(subs, c.subscribers)
	return subs
}

func publish(subs []func(Event), events []Event) {
	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}

// Recorder is a Notifier that keeps every notification in memory.
type Recorder struct {
	mu      sync.Mutex
	entries []Toast
}

// Notify implements Notifier.
func (r *Recorder) Notify(message string, kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Toast{Message: message, Kind: kind, CreatedAt: time.Now()})
}

// Entries returns the recorded notifications in order.
func (r *Recorder) Entries() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Toast, len(r.entries))
	copy(out, r.entries)
	return out
}

// Count returns how many notifications of kind were recorded.
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
