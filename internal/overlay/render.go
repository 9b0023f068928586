package overlay

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/aredtech/floormap/internal/geo"
)

// Cell is one rendered overlay cell. Rune 0 means transparent (the cell
// under it shows through).
type Cell struct {
	Rune rune
	FG   string // hex color
}

// Render rasterizes the overlay into a cols x rows terminal cell grid for
// the given viewport. Pure function of its inputs: the image is stretched
// over the projected GeoBounds rectangle, rotated about the pivot, clipped
// to the silhouette when present, and faded per opacity. A released or
// missing handle renders nothing.
func Render(st *State, tr Transform, vp geo.Viewport, cols, rows int) [][]Cell {
	if st == nil || cols <= 0 || rows <= 0 {
		return nil
	}
	raster := st.Handle.Raster()
	if raster == nil {
		return nil
	}
	if tr.Opacity <= 0.05 {
		return nil
	}

	// projected corners of the (unrotated) geographic rectangle
	topLeft := vp.Project(orb.Point{st.GeoBounds.Min[0], st.GeoBounds.Max[1]})
	botRight := vp.Project(orb.Point{st.GeoBounds.Max[0], st.GeoBounds.Min[1]})
	spanX := botRight.X - topLeft.X
	spanY := botRight.Y - topLeft.Y
	if spanX <= 0 || spanY <= 0 {
		return nil
	}

	clip := clipPolygon(tr.Clip)
	sinT, cosT := math.Sincos(tr.RotationDeg * math.Pi / 180)
	rw := raster.Bounds().Dx()
	rh := raster.Bounds().Dy()
	shade := shadeRune(tr.Opacity)

	grid := make([][]Cell, rows)
	for row := 0; row < rows; row++ {
		grid[row] = make([]Cell, cols)
		for col := 0; col < cols; col++ {
			// cell center in micro-pixel space (2x4 per cell)
			cx := float64(col*2) + 1
			cy := float64(row*4) + 2
			if clip != nil && !planar.PolygonContains(clip, orb.Point{cx, cy}) {
				continue
			}
			// inverse-rotate the screen position about the pivot to find
			// where it samples the unrotated image rectangle
			dx := cx - tr.Pivot.X
			dy := cy - tr.Pivot.Y
			sx := tr.Pivot.X + dx*cosT + dy*sinT
			sy := tr.Pivot.Y - dx*sinT + dy*cosT
			u := (sx - topLeft.X) / spanX
			v := (sy - topLeft.Y) / spanY
			if u < 0 || u > 1 || v < 0 || v > 1 {
				continue
			}
			px := raster.RGBAAt(int(u*float64(rw-1)), int(v*float64(rh-1)))
			if px.A < 16 {
				continue
			}
			grid[row][col] = Cell{Rune: shade, FG: dimHex(px.R, px.G, px.B, tr.Opacity)}
		}
	}
	return grid
}

// clipPolygon converts the projected silhouette into a closed planar
// polygon for containment tests.
func clipPolygon(clip []geo.Pixel) orb.Polygon {
	if len(clip) < 3 {
		return nil
	}
	ring := make(orb.Ring, 0, len(clip)+1)
	for _, p := range clip {
		ring = append(ring, orb.Point{p.X, p.Y})
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return orb.Polygon{ring}
}

// shadeRune maps opacity to a block shade so translucency reads even on
// terminals without true alpha.
func shadeRune(opacity float64) rune {
	switch {
	case opacity >= 0.85:
		return '█'
	case opacity >= 0.6:
		return '▓'
	case opacity >= 0.35:
		return '▒'
	default:
		return '░'
	}
}

// dimHex scales the sampled color toward black as opacity drops.
func dimHex(r, g, b uint8, opacity float64) string {
	f := 0.35 + 0.65*opacity
	return fmt.Sprintf("#%02x%02x%02x",
		uint8(float64(r)*f), uint8(float64(g)*f), uint8(float64(b)*f))
}
