package selection

import (
	"errors"
	"fmt"

	"github.com/standardbeagle/uisel/internal/dom"
)

// ErrNotSelectable is returned by Pick when the click would not be captured.
var ErrNotSelectable = errors.New("element is outside the container or inside the excluded panel")

// Pick runs one selection against an in-memory surface: it enables selection
// mode, clicks target and returns the committed entry. cfg.State receives the
// selection when set.
func Pick(target, container dom.Node, cfg Config) (HistoryEntry, error) {
	var picked *HistoryEntry
	next := cfg.OnSelect
	cfg.OnSelect = func(e HistoryEntry) {
		picked = &e
		if next != nil {
			next(e)
		}
	}

	surface := NewLocalSurface()
	ctrl := NewController(surface, cfg)
	ctrl.Enable()
	defer ctrl.Disable()

	surface.Dispatch(&dom.Event{Kind: dom.Click, Target: target, Container: container})
	if picked == nil {
		return HistoryEntry{}, ErrNotSelectable
	}
	return *picked, nil
}

// PickSelector picks the first element matching selector inside doc. The
// container is the first element matching containerSelector, or the body
// when it is empty.
func PickSelector(doc *dom.Document, selector, containerSelector string, cfg Config) (HistoryEntry, error) {
	if containerSelector == "" {
		containerSelector = "body"
	}
	container, err := doc.Find(containerSelector)
	if err != nil {
		return HistoryEntry{}, fmt.Errorf("container %q: %w", containerSelector, err)
	}
	target, err := doc.Find(selector)
	if err != nil {
		return HistoryEntry{}, fmt.Errorf("target %q: %w", selector, err)
	}
	return Pick(target, container, cfg)
}
