// Package overlay tracks the hover highlight drawn over the element under the
// pointer while selection mode is active.
package overlay

import (
	"github.com/standardbeagle/uisel/internal/dom"
)

// Geometry is the highlight box in document coordinates.
type Geometry struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// GeometryOf converts a viewport rect to document coordinates.
func GeometryOf(r dom.Rect, scrollX, scrollY float64) Geometry {
	return Geometry{
		Left:   r.Left + scrollX,
		Top:    r.Top + scrollY,
		Width:  r.Width,
		Height: r.Height,
	}
}

// Overlay is the visual highlight element. Implementations render it in a
// page; they must tolerate calls after Remove.
type Overlay interface {
	Show(g Geometry)
	Hide()
	SetPulse(on bool)
	Remove()
}
