// Package viewport implements the pan/zoom camera over a laid-out network.
package viewport

import (
	"math"

	"github.com/vanshika/wealthnet/internal/domain"
)

const (
	MinZoom     = 0.3
	MaxZoom     = 3.0
	ZoomStep    = 0.2
	WheelStep   = 0.1
	DefaultZoom = 1.0
)

// Target identifies what a pointer-down landed on.
type Target int

const (
	TargetBackground Target = iota
	TargetNode
	TargetEdge
)

// Viewport maps graph coordinates to screen coordinates as
// screen = graph*Zoom + (X, Y).
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`

	dragging     bool
	lastX, lastY float64
}

// New returns the identity viewport.
func New() Viewport {
	return Viewport{Zoom: DefaultZoom}
}

// Reset restores the identity transform and ends any drag.
func (v *Viewport) Reset() {
	*v = New()
}

// ZoomIn increases zoom by one step.
func (v *Viewport) ZoomIn() {
	v.Zoom = clampZoom(v.zoom() + ZoomStep)
}

// ZoomOut decreases zoom by one step.
func (v *Viewport) ZoomOut() {
	v.Zoom = clampZoom(v.zoom() - ZoomStep)
}

// Pan translates the view by a screen-space delta.
func (v *Viewport) Pan(dx, dy float64) {
	v.X += dx
	v.Y += dy
}

// ZoomAtPoint changes zoom by delta while keeping the graph point under the
// screen point (cx, cy) stationary.
func (v *Viewport) ZoomAtPoint(cx, cy, delta float64) {
	old := v.zoom()
	next := clampZoom(old + delta)
	if next == old {
		v.Zoom = old
		return
	}
	ratio := next / old
	v.X = cx - (cx-v.X)*ratio
	v.Y = cy - (cy-v.Y)*ratio
	v.Zoom = next
}

// Wheel applies one scroll notch at (cx, cy). Negative deltaY zooms in.
func (v *Viewport) Wheel(cx, cy, deltaY float64) {
	switch {
	case deltaY < 0:
		v.ZoomAtPoint(cx, cy, WheelStep)
	case deltaY > 0:
		v.ZoomAtPoint(cx, cy, -WheelStep)
	}
}

// BeginDrag starts a pan gesture. Pointer-downs on nodes or edges belong to
// selection and do not start a drag.
func (v *Viewport) BeginDrag(target Target, px, py float64) bool {
	if target != TargetBackground {
		return false
	}
	v.dragging = true
	v.lastX, v.lastY = px, py
	return true
}

// Drag pans by the pointer movement since the previous event.
func (v *Viewport) Drag(px, py float64) {
	if !v.dragging {
		return
	}
	v.Pan(px-v.lastX, py-v.lastY)
	v.lastX, v.lastY = px, py
}

// EndDrag finishes the pan gesture.
func (v *Viewport) EndDrag() {
	v.dragging = false
}

// Dragging reports whether a pan gesture is active.
func (v Viewport) Dragging() bool {
	return v.dragging
}

// ToScreen converts a graph-space point to screen space.
func (v Viewport) ToScreen(p domain.Point) domain.Point {
	z := v.zoom()
	return domain.Point{X: p.X*z + v.X, Y: p.Y*z + v.Y}
}

// ToGraph converts a screen-space point back to graph space.
func (v Viewport) ToGraph(p domain.Point) domain.Point {
	z := v.zoom()
	return domain.Point{X: (p.X - v.X) / z, Y: (p.Y - v.Y) / z}
}

func (v Viewport) zoom() float64 {
	if v.Zoom <= 0 || math.IsNaN(v.Zoom) {
		return DefaultZoom
	}
	return v.Zoom
}

// clampZoom bounds z and rounds to three decimals so repeated steps do not
// accumulate float drift.
func clampZoom(z float64) float64 {
	z = math.Round(z*1000) / 1000
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}
