package dom

// EventKind identifies the pointer events the engine listens to.
type EventKind string

const (
	PointerMove  EventKind = "pointermove"
	PointerLeave EventKind = "pointerleave"
	Click        EventKind = "click"
)

// Event is a pointer event delivered to engine listeners.
// Container is the element that scopes valid targets for the page; it is nil
// when the page has no container mounted.
type Event struct {
	Kind      EventKind
	Target    Node
	Container Node
	ScrollX   float64
	ScrollY   float64

	defaultPrevented   bool
	propagationStopped bool
}

// PreventDefault suppresses the browser's default action for the event.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// StopPropagation stops further dispatch of the event.
func (e *Event) StopPropagation() {
	e.propagationStopped = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// PropagationStopped reports whether StopPropagation was called.
func (e *Event) PropagationStopped() bool {
	return e.propagationStopped
}

// InContainer reports whether the event target lies inside the container.
func (e *Event) InContainer() bool {
	return e.Target != nil && Contains(e.Container, e.Target)
}

// Handler receives events from a listener registration.
type Handler func(*Event)
