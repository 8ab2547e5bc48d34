package selection

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/standardbeagle/uisel/internal/dom"
	"github.com/standardbeagle/uisel/internal/notify"
	"github.com/standardbeagle/uisel/internal/resolve"
)

const testPage = `<body>
	<div id="root">
		<button id="buy" class="btn">Buy</button>
		<section id="hero" data-component="Hero"><h1 id="title">Welcome</h1></section>
		<input id="email">
	</div>
	<footer id="outside">elsewhere</footer>
	<div class="prompt-panel-floating"><button id="panel-btn">Generate</button></div>
</body>`

type fixture struct {
	doc      *dom.Document
	root     dom.Node
	surface  *LocalSurface
	ctrl     *Controller
	notifier *notify.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	doc, err := dom.ParseHTMLString(testPage)
	if err != nil {
		t.Fatal(err)
	}
	root, err := doc.Find("#root")
	if err != nil {
		t.Fatal(err)
	}
	exclude, err := dom.ParseSelector(".prompt-panel-floating")
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{
		doc:      doc,
		root:     root,
		surface:  NewLocalSurface(),
		notifier: &notify.Recorder{},
	}
	f.ctrl = NewController(f.surface, Config{
		Resolver:      resolve.New(resolve.Config{}),
		Notifier:      f.notifier,
		Exclude:       exclude.Match,
		PulseDuration: 10 * time.Millisecond,
	})
	return f
}

func (f *fixture) click(t *testing.T, selector string) *dom.Event {
	t.Helper()
	n, err := f.doc.Find(selector)
	if err != nil {
		t.Fatal(err)
	}
	ev := &dom.Event{Kind: dom.Click, Target: n, Container: f.root}
	f.surface.Dispatch(ev)
	return ev
}

func TestClickWhileInactiveIsIgnored(t *testing.T) {
	f := newFixture(t)

	ev := f.click(t, "#buy")

	if ev.DefaultPrevented() {
		t.Error("click default was prevented while inactive")
	}
	if f.ctrl.State().Target() != nil {
		t.Error("click resolved a target while inactive")
	}
	if n := len(f.notifier.Entries()); n != 0 {
		t.Errorf("expected no notifications, got %d", n)
	}
}

func TestQualifyingClickSelects(t *testing.T) {
	f := newFixture(t)
	var transitions []bool
	f.ctrl.OnChange(func(active bool) { transitions = append(transitions, active) })
	var selected []HistoryEntry
	f.ctrl.onSelect = func(e HistoryEntry) { selected = append(selected, e) }

	f.ctrl.Enable()
	ev := f.click(t, "#title")

	if !ev.DefaultPrevented() || !ev.PropagationStopped() {
		t.Error("qualifying click was not suppressed")
	}
	if f.ctrl.IsActive() {
		t.Error("selection mode should end after a selection")
	}
	tgt := f.ctrl.State().Target()
	if tgt == nil || tgt.ComponentName != "Hero" {
		t.Fatalf("Target = %+v, want Hero", tgt)
	}
	if tgt.FilePath != "src/components/Hero.tsx" {
		t.Errorf("FilePath = %q", tgt.FilePath)
	}

	entries := f.notifier.Entries()
	if len(entries) != 1 || entries[0].Message != "Selected Hero component" || entries[0].Kind != notify.Success {
		t.Errorf("notifications = %+v", entries)
	}
	if len(transitions) != 2 || !transitions[0] || transitions[1] {
		t.Errorf("transitions = %v, want [true false]", transitions)
	}
	if len(selected) != 1 || selected[0].Strategy != "annotation" || selected[0].Seq != 1 {
		t.Errorf("OnSelect entries = %+v", selected)
	}
}

func TestSelectCallbacksMayReenter(t *testing.T) {
	f := newFixture(t)
	var activeInNotify, activeInSelect []bool
	f.ctrl.notifier = notify.NotifierFunc(func(msg string, kind notify.Kind) {
		activeInNotify = append(activeInNotify, f.ctrl.IsActive())
	})
	f.ctrl.onSelect = func(e HistoryEntry) {
		activeInSelect = append(activeInSelect, f.ctrl.IsActive())
		f.ctrl.Enable()
	}

	title, err := f.doc.Find("#title")
	if err != nil {
		t.Fatal(err)
	}
	f.ctrl.Enable()
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.surface.Dispatch(&dom.Event{Kind: dom.Click, Target: title, Container: f.root})
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("click deadlocked when callbacks called back into the controller")
	}

	if len(activeInSelect) != 1 || activeInSelect[0] {
		t.Errorf("OnSelect saw active = %v, want [false]", activeInSelect)
	}
	if len(activeInNotify) != 1 || !activeInNotify[0] {
		t.Errorf("notifier saw active = %v, want [true] after OnSelect re-enabled", activeInNotify)
	}
	if !f.ctrl.IsActive() {
		t.Error("OnSelect should be able to re-enable selection mode")
	}
}

func TestNonQualifyingClicks(t *testing.T) {
	tests := []struct {
		name     string
		selector string
	}{
		{"outside container", "#outside"},
		{"inside excluded panel", "#panel-btn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.ctrl.Enable()
			ev := f.click(t, tt.selector)

			if ev.DefaultPrevented() {
				t.Error("non-qualifying click was prevented")
			}
			if !f.ctrl.IsActive() {
				t.Error("selection mode should stay on")
			}
			if f.ctrl.State().Target() != nil {
				t.Error("non-qualifying click resolved a target")
			}
		})
	}
}

func TestSecondClickAfterSelectionPassesThrough(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Enable()
	f.click(t, "#buy")

	ev := f.click(t, "#email")
	if ev.DefaultPrevented() {
		t.Error("click after selection mode ended was prevented")
	}
	if got := f.ctrl.State().Target().ComponentName; got != "Button" {
		t.Errorf("Target = %q, want Button", got)
	}
}

func TestToggleDoesNotAccumulate(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		f.ctrl.Enable()
		f.ctrl.Enable()
		if f.surface.LiveOverlays() != 1 {
			t.Fatalf("round %d: live overlays = %d, want 1", i, f.surface.LiveOverlays())
		}
		if n := f.surface.ListenerCount(dom.Click); n != 1 {
			t.Fatalf("round %d: click listeners = %d, want 1", i, n)
		}

		f.ctrl.Disable()
		f.ctrl.Disable()
		if f.surface.LiveOverlays() != 0 {
			t.Fatalf("round %d: overlay not removed on disable", i)
		}
		for _, kind := range []dom.EventKind{dom.Click, dom.PointerMove, dom.PointerLeave} {
			if n := f.surface.ListenerCount(kind); n != 0 {
				t.Fatalf("round %d: %s listeners = %d after disable", i, kind, n)
			}
		}
	}
	if got := len(f.surface.Overlays()); got != 3 {
		t.Errorf("overlays created = %d, want 3", got)
	}
}

func TestToggleReturnsNewState(t *testing.T) {
	f := newFixture(t)
	if !f.ctrl.Toggle() || !f.ctrl.IsActive() {
		t.Error("first Toggle should enable")
	}
	if f.ctrl.Toggle() || f.ctrl.IsActive() {
		t.Error("second Toggle should disable")
	}
}

func TestHoverTracksOverlay(t *testing.T) {
	f := newFixture(t)
	buy, _ := f.doc.Find("#buy")
	f.doc.SetRect(buy, dom.Rect{Left: 4, Top: 8, Width: 60, Height: 20})

	f.ctrl.Enable()
	ov := f.surface.Overlays()[0]

	f.surface.Dispatch(&dom.Event{Kind: dom.PointerMove, Target: buy, Container: f.root, ScrollY: 50})
	g, visible := ov.Geometry()
	if !visible || g.Top != 58 || g.Left != 4 {
		t.Errorf("overlay = %+v visible=%v, want top 58 left 4", g, visible)
	}

	f.surface.Dispatch(&dom.Event{Kind: dom.PointerLeave})
	if _, visible := ov.Geometry(); visible {
		t.Error("overlay should hide on pointer leave")
	}
}

func TestClickPulsesThenRemovesOverlay(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Enable()
	ov := f.surface.Overlays()[0]

	f.click(t, "#buy")
	if !ov.Pulsing() {
		t.Error("qualifying click should pulse the overlay")
	}
	if !ov.Removed() {
		t.Error("overlay should be removed when the mode ends")
	}
}

// keepSurface hands out removal functions that do nothing, so handlers of
// closed sessions can still be invoked.
type keepSurface struct {
	*LocalSurface
	mu   sync.Mutex
	kept map[dom.EventKind][]dom.Handler
}

func (s *keepSurface) AddListener(kind dom.EventKind, capture bool, h dom.Handler) func() {
	s.mu.Lock()
	s.kept[kind] = append(s.kept[kind], h)
	s.mu.Unlock()
	return s.LocalSurface.AddListener(kind, capture, h)
}

func TestStaleHandlersAreIgnored(t *testing.T) {
	doc, _ := dom.ParseHTMLString(testPage)
	root, _ := doc.Find("#root")
	buy, _ := doc.Find("#buy")

	surface := &keepSurface{LocalSurface: NewLocalSurface(), kept: make(map[dom.EventKind][]dom.Handler)}
	ctrl := NewController(surface, Config{})

	ctrl.Enable()
	ctrl.Disable()
	ctrl.Enable()

	stale := surface.kept[dom.Click][0]
	ev := &dom.Event{Kind: dom.Click, Target: buy, Container: root}
	stale(ev)

	if ev.DefaultPrevented() {
		t.Error("stale click handler acted")
	}
	if !ctrl.IsActive() {
		t.Error("stale handler ended the new session")
	}
	if ctrl.State().Target() != nil {
		t.Error("stale handler committed a target")
	}
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Enable()
	f.click(t, "#buy")
	f.ctrl.Enable()

	f.ctrl.Reset()
	if f.ctrl.IsActive() {
		t.Error("Reset should disable selection mode")
	}
	if f.ctrl.State().Target() != nil {
		t.Error("Reset should clear the selection")
	}
	if len(f.ctrl.State().History(0)) != 1 {
		t.Error("Reset should keep history")
	}
}

func TestConcurrentToggleAndClicks(t *testing.T) {
	f := newFixture(t)
	buy, _ := f.doc.Find("#buy")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				f.ctrl.Toggle()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				f.surface.Dispatch(&dom.Event{Kind: dom.Click, Target: buy, Container: f.root})
			}
		}()
	}
	wg.Wait()
	f.ctrl.Disable()

	if f.surface.LiveOverlays() != 0 {
		t.Errorf("live overlays = %d after disable", f.surface.LiveOverlays())
	}
	if n := f.surface.ListenerCount(dom.Click); n != 0 {
		t.Errorf("click listeners = %d after disable", n)
	}
}

func TestPick(t *testing.T) {
	f := newFixture(t)
	btn, err := f.doc.Find("#buy")
	if err != nil {
		t.Fatal(err)
	}
	panel, err := f.doc.Find("#panel-btn")
	if err != nil {
		t.Fatal(err)
	}
	exclude, _ := dom.ParseSelector(".prompt-panel-floating")

	st := NewState(5)
	entry, err := Pick(btn, f.root, Config{Exclude: exclude.Match, State: st, PulseDuration: time.Millisecond})
	if err != nil {
		t.Fatalf("Pick error: %v", err)
	}
	if entry.Target.ComponentName != "Button" {
		t.Errorf("ComponentName = %q, want Button", entry.Target.ComponentName)
	}
	if got := st.Target(); got == nil || got.ComponentName != "Button" {
		t.Errorf("state target = %+v, want Button", got)
	}

	if _, err := Pick(panel, f.root, Config{Exclude: exclude.Match}); !errors.Is(err, ErrNotSelectable) {
		t.Errorf("Pick(panel) error = %v, want ErrNotSelectable", err)
	}
}
