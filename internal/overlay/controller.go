// Package overlay owns the floor-plan overlay: the state machine that binds
// a user-supplied image to a selected building footprint, the presentation
// transform derived from it, and the cell rasterizer that draws it.
package overlay

import (
	"log/slog"
	"math"

	"github.com/paulmach/orb"
)

// Scale limits, applied to the original footprint bounding box.
const (
	MinScale = 0.1
	MaxScale = 2.0
)

// State is the single active floor-plan overlay.
type State struct {
	Handle      *ImageHandle
	GeoBounds   orb.Bound
	Scale       float64
	RotationDeg float64
	Opacity     float64
	Masked      bool
}

// Controller is the overlay state machine: Empty until a footprint is
// selected and an image supplied, Attached afterwards, Empty again on
// removal. All mutations while Empty are no-ops.
type Controller struct {
	state *State

	// selected footprint geometry, read-only. origBound is the anchor for
	// every scale computation; GeoBounds never drifts from it.
	origBound orb.Bound
	ring      orb.Ring
}

func NewController() *Controller { return &Controller{} }

// Attached reports whether an overlay currently exists.
func (c *Controller) Attached() bool { return c.state != nil }

// State returns the live overlay state, or nil while Empty.
func (c *Controller) State() *State { return c.state }

// FootprintRing returns the selected footprint's outline, or nil.
func (c *Controller) FootprintRing() orb.Ring { return c.ring }

// Attach binds an image to the selected footprint, replacing any current
// overlay. The replaced overlay's handle is released exactly once.
func (c *Controller) Attach(h *ImageHandle, ring orb.Ring) {
	if h == nil || len(ring) == 0 {
		return
	}
	if c.state != nil && c.state.Handle != nil && c.state.Handle != h {
		old := c.state.Handle
		old.Release()
		slog.Debug("floor plan handle released", "handle", old.ID(), "path", old.Path(), "reason", "replaced")
	}
	b := ring.Bound()
	c.origBound = b
	c.ring = ring
	c.state = &State{
		Handle:    h,
		GeoBounds: b,
		Scale:     1,
		Opacity:   1,
	}
	slog.Debug("floor plan handle attached", "handle", h.ID(), "path", h.Path())
}

// SetScale resizes the overlay to s times the original footprint box,
// centered on the overlay's current geographic center. Recomputing from the
// original bounds makes the operation idempotent and non-cumulative.
func (c *Controller) SetScale(s float64) {
	if c.state == nil {
		return
	}
	s = clamp(s, MinScale, MaxScale)
	center := c.state.GeoBounds.Center()
	halfW := (c.origBound.Max[0] - c.origBound.Min[0]) * s / 2
	halfH := (c.origBound.Max[1] - c.origBound.Min[1]) * s / 2
	c.state.GeoBounds = orb.Bound{
		Min: orb.Point{center[0] - halfW, center[1] - halfH},
		Max: orb.Point{center[0] + halfW, center[1] + halfH},
	}
	c.state.Scale = s
}

// SetRotation sets the presentation rotation in degrees, normalized to
// [0, 360). Rotation never touches GeoBounds.
func (c *Controller) SetRotation(deg float64) {
	if c.state == nil {
		return
	}
	c.state.RotationDeg = math.Mod(math.Mod(deg, 360)+360, 360)
}

// Rotate adds delta degrees to the current rotation.
func (c *Controller) Rotate(delta float64) {
	if c.state == nil {
		return
	}
	c.SetRotation(c.state.RotationDeg + delta)
}

// SetOpacity sets the render alpha, clamped to [0, 1].
func (c *Controller) SetOpacity(o float64) {
	if c.state == nil {
		return
	}
	c.state.Opacity = clamp(o, 0, 1)
}

// ToggleMask flips clipping to the footprint silhouette.
func (c *Controller) ToggleMask() {
	if c.state == nil {
		return
	}
	c.state.Masked = !c.state.Masked
}

// Nudge shifts the overlay's geographic bounds. The shifted center becomes
// the anchor for subsequent SetScale calls.
func (c *Controller) Nudge(dLon, dLat float64) {
	if c.state == nil {
		return
	}
	b := c.state.GeoBounds
	c.state.GeoBounds = orb.Bound{
		Min: orb.Point{b.Min[0] + dLon, b.Min[1] + dLat},
		Max: orb.Point{b.Max[0] + dLon, b.Max[1] + dLat},
	}
}

// Remove destroys the overlay and releases its image handle.
func (c *Controller) Remove() {
	if c.state == nil {
		return
	}
	h := c.state.Handle
	h.Release()
	slog.Debug("floor plan handle released", "handle", h.ID(), "path", h.Path(), "reason", "removed")
	c.state = nil
	c.ring = nil
	c.origBound = orb.Bound{}
}

// Close releases resources unconditionally; safe to call at teardown
// whether or not an overlay exists.
func (c *Controller) Close() { c.Remove() }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
