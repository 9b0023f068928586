// Package geo holds the viewport model and the stateless mapping between
// geographic coordinates and screen micro-pixels (Web Mercator).
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// tileSize is the Web Mercator world size at zoom 0.
const tileSize = 256

// Pixel is a screen position in micro-pixels (2x4 per terminal cell).
type Pixel struct {
	X float64
	Y float64
}

// Viewport describes what the map canvas currently shows: a geographic
// center, a slippy-map zoom level and the canvas size in micro-pixels.
// It is a value; every pan or zoom produces a new one.
type Viewport struct {
	Center orb.Point
	Zoom   float64
	Width  int
	Height int
}

func (v Viewport) worldSize() float64 {
	return tileSize * math.Exp2(v.Zoom)
}

// mercator maps lon/lat to absolute world pixels at the given world size.
// Y grows southward, matching screen coordinates.
func mercator(p orb.Point, world float64) (float64, float64) {
	x := (p[0] + 180) / 360 * world
	sin := math.Sin(p[1] * math.Pi / 180)
	y := (0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)) * world
	return x, y
}

// Project converts a geographic point into viewport micro-pixels.
func (v Viewport) Project(p orb.Point) Pixel {
	world := v.worldSize()
	cx, cy := mercator(v.Center, world)
	px, py := mercator(p, world)
	return Pixel{
		X: px - cx + float64(v.Width)/2,
		Y: py - cy + float64(v.Height)/2,
	}
}

// Unproject is the inverse of Project.
func (v Viewport) Unproject(px Pixel) orb.Point {
	world := v.worldSize()
	cx, cy := mercator(v.Center, world)
	wx := px.X - float64(v.Width)/2 + cx
	wy := px.Y - float64(v.Height)/2 + cy
	lon := wx/world*360 - 180
	lat := math.Atan(math.Sinh(math.Pi*(1-2*wy/world))) * 180 / math.Pi
	return orb.Point{lon, lat}
}

// Bounds returns the geographic bounding box currently visible.
func (v Viewport) Bounds() orb.Bound {
	nw := v.Unproject(Pixel{X: 0, Y: 0})
	se := v.Unproject(Pixel{X: float64(v.Width), Y: float64(v.Height)})
	return orb.Bound{
		Min: orb.Point{nw[0], se[1]},
		Max: orb.Point{se[0], nw[1]},
	}
}

// ProjectRing projects every vertex of a geographic ring.
func (v Viewport) ProjectRing(ring orb.Ring) []Pixel {
	if len(ring) == 0 {
		return nil
	}
	out := make([]Pixel, len(ring))
	for i, p := range ring {
		out[i] = v.Project(p)
	}
	return out
}

// Pan returns a viewport whose center is shifted by the given micro-pixel
// delta at the current zoom.
func (v Viewport) Pan(dx, dy float64) Viewport {
	v.Center = v.Unproject(Pixel{
		X: float64(v.Width)/2 + dx,
		Y: float64(v.Height)/2 + dy,
	})
	return v
}
