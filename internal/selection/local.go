package selection

import (
	"sync"

	"github.com/standardbeagle/uisel/internal/dom"
	"github.com/standardbeagle/uisel/internal/overlay"
)

// LocalSurface is an in-process Surface. Events are fed with Dispatch; it
// backs static documents and tests.
type LocalSurface struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]localListener
	overlays  []*LocalOverlay
}

type localListener struct {
	kind    dom.EventKind
	capture bool
	handler dom.Handler
}

// NewLocalSurface creates an empty surface.
func NewLocalSurface() *LocalSurface {
	return &LocalSurface{listeners: make(map[int]localListener)}
}

// CreateOverlay implements Surface.
func (s *LocalSurface) CreateOverlay() overlay.Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := &LocalOverlay{}
	s.overlays = append(s.overlays, o)
	return o
}

// AddListener implements Surface.
func (s *LocalSurface) AddListener(kind dom.EventKind, capture bool, h dom.Handler) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = localListener{kind: kind, capture: capture, handler: h}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// ListenerCount returns the number of registrations for kind.
func (s *LocalSurface) ListenerCount(kind dom.EventKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.listeners {
		if l.kind == kind {
			n++
		}
	}
	return n
}

// Overlays returns every overlay created so far, including removed ones.
func (s *LocalSurface) Overlays() []*LocalOverlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*LocalOverlay(nil), s.overlays...)
}

// LiveOverlays returns the overlays that have not been removed.
func (s *LocalSurface) LiveOverlays() int {
	n := 0
	for _, o := range s.Overlays() {
		if !o.Removed() {
			n++
		}
	}
	return n
}

// Dispatch delivers ev to capture listeners, then to bubble listeners unless
// propagation was stopped. Listeners are called in registration order.
func (s *LocalSurface) Dispatch(ev *dom.Event) {
	for _, capture := range []bool{true, false} {
		for _, h := range s.handlers(ev.Kind, capture) {
			h(ev)
		}
		if ev.PropagationStopped() {
			return
		}
	}
}

func (s *LocalSurface) handlers(kind dom.EventKind, capture bool) []dom.Handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []dom.Handler
	for id := 0; id < s.nextID; id++ {
		l, ok := s.listeners[id]
		if ok && l.kind == kind && l.capture == capture {
			out = append(out, l.handler)
		}
	}
	return out
}

// LocalOverlay records the state an overlay would render.
type LocalOverlay struct {
	mu       sync.Mutex
	geometry overlay.Geometry
	visible  bool
	pulsing  bool
	removed  bool
}

func (o *LocalOverlay) Show(g overlay.Geometry) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.geometry = g
	o.visible = true
}

func (o *LocalOverlay) Hide() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.visible = false
}

func (o *LocalOverlay) SetPulse(on bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pulsing = on
}

func (o *LocalOverlay) Remove() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.removed = true
	o.visible = false
}

// Geometry returns the last shown box and whether it is visible.
func (o *LocalOverlay) Geometry() (overlay.Geometry, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.geometry, o.visible
}

// Pulsing reports whether the pulse is on.
func (o *LocalOverlay) Pulsing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pulsing
}

// Removed reports whether the overlay was removed.
func (o *LocalOverlay) Removed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.removed
}
