package selection

import (
	"github.com/standardbeagle/uisel/internal/dom"
	"github.com/standardbeagle/uisel/internal/overlay"
)

// session is everything that exists only while selection mode is on: the
// overlay with its tracker and the listener registrations.
type session struct {
	tracker *overlay.Tracker
	exclude dom.Predicate
	removes []func()
}

func (c *Controller) openSession() *session {
	s := &session{
		exclude: c.exclude,
		tracker: overlay.NewTracker(c.surface.CreateOverlay(), overlay.TrackerConfig{
			Exclude:       c.exclude,
			PulseDuration: c.pulseFor,
		}),
	}
	s.removes = []func(){
		c.surface.AddListener(dom.PointerMove, false, func(ev *dom.Event) { c.handleMove(s, ev) }),
		c.surface.AddListener(dom.PointerLeave, false, func(ev *dom.Event) { c.handleLeave(s, ev) }),
		c.surface.AddListener(dom.Click, true, func(ev *dom.Event) { c.handleClick(s, ev) }),
	}
	return s
}

// qualifies reports whether a click should be captured: the target lies in
// the container and outside the excluded panel.
func (s *session) qualifies(ev *dom.Event) bool {
	return ev != nil && ev.InContainer() && !overlay.IsExcluded(ev.Target, s.exclude)
}

func (s *session) close() {
	for _, remove := range s.removes {
		if remove != nil {
			remove()
		}
	}
	s.removes = nil
	s.tracker.Close()
}
