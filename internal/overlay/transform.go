package overlay

import (
	"github.com/aredtech/floormap/internal/geo"
)

// Transform is the presentation-only pixel-space transform the renderer
// consumes. It is valid for exactly one viewport; the host recomputes it on
// every pan or zoom so the rotation pivot and clip silhouette track the
// geography they were derived from.
type Transform struct {
	RotationDeg float64
	Opacity     float64
	Pivot       geo.Pixel   // projected geographic center of GeoBounds
	Clip        []geo.Pixel // footprint silhouette; nil when unmasked
}

// Transform projects the overlay's presentation state through vp. Returns
// the zero Transform while Empty.
func (c *Controller) Transform(vp geo.Viewport) Transform {
	if c.state == nil {
		return Transform{}
	}
	tr := Transform{
		RotationDeg: c.state.RotationDeg,
		Opacity:     c.state.Opacity,
		Pivot:       vp.Project(c.state.GeoBounds.Center()),
	}
	// masking without footprint geometry degrades to unclipped
	if c.state.Masked && len(c.ring) > 0 {
		tr.Clip = vp.ProjectRing(c.ring)
	}
	return tr
}
