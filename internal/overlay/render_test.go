package overlay

import (
	"image"
	"image/color"
	"testing"

	"github.com/paulmach/orb"

	"github.com/aredtech/floormap/internal/geo"
)

// renderViewport centers an 80x80 micro-pixel canvas (40x20 cells) on the
// test footprint; at zoom 16 the footprint box covers the whole canvas.
func renderViewport() geo.Viewport {
	return geo.Viewport{
		Center: orb.Point{-74.009, 40.711},
		Zoom:   16,
		Width:  80,
		Height: 80,
	}
}

// splitImage is red on the left half, blue on the right.
func splitImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			c := color.RGBA{R: 255, A: 255}
			if x >= 5 {
				c = color.RGBA{B: 255, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func attachedController(img *image.RGBA) *Controller {
	c := NewController()
	c.Attach(NewImageHandle(img, "plan.png"), testRing())
	return c
}

func TestRenderCoversCanvas(t *testing.T) {
	c := attachedController(splitImage())
	vp := renderViewport()
	grid := Render(c.State(), c.Transform(vp), vp, 40, 20)
	if grid == nil {
		t.Fatal("expected a rendered grid")
	}
	if grid[10][20].Rune == 0 {
		t.Error("cell over the overlay center should be drawn")
	}
	if grid[10][20].Rune != '█' {
		t.Errorf("full opacity should use the solid block, got %q", grid[10][20].Rune)
	}
}

func TestRenderReleasedHandle(t *testing.T) {
	c := attachedController(splitImage())
	vp := renderViewport()
	c.State().Handle.Release()
	if grid := Render(c.State(), c.Transform(vp), vp, 40, 20); grid != nil {
		t.Error("released handle must render nothing")
	}
}

func TestRenderNilState(t *testing.T) {
	vp := renderViewport()
	if grid := Render(nil, Transform{}, vp, 40, 20); grid != nil {
		t.Error("nil state must render nothing")
	}
}

func TestRenderZeroOpacity(t *testing.T) {
	c := attachedController(splitImage())
	c.SetOpacity(0)
	vp := renderViewport()
	if grid := Render(c.State(), c.Transform(vp), vp, 40, 20); grid != nil {
		t.Error("fully transparent overlay must render nothing")
	}
}

func TestRenderOpacityShades(t *testing.T) {
	c := attachedController(splitImage())
	c.SetOpacity(0.5)
	vp := renderViewport()
	grid := Render(c.State(), c.Transform(vp), vp, 40, 20)
	if grid == nil || grid[10][20].Rune != '▒' {
		t.Fatalf("half opacity should use a medium shade, got %+v", grid)
	}
}

func TestRenderClipMasksCells(t *testing.T) {
	c := attachedController(splitImage())
	vp := renderViewport()
	tr := c.Transform(vp)
	// hand a silhouette triangle around the canvas center
	tr.Clip = []geo.Pixel{{X: 30, Y: 30}, {X: 50, Y: 30}, {X: 40, Y: 50}}
	grid := Render(c.State(), tr, vp, 40, 20)
	if grid == nil {
		t.Fatal("expected a rendered grid")
	}
	if grid[10][20].Rune == 0 {
		t.Error("cell inside the silhouette should be drawn")
	}
	if grid[0][0].Rune != 0 {
		t.Error("cell outside the silhouette should be clipped")
	}
}

func TestRenderRotationSamplesAcrossPivot(t *testing.T) {
	c := attachedController(splitImage())
	vp := renderViewport()

	plain := Render(c.State(), c.Transform(vp), vp, 40, 20)
	c.SetRotation(180)
	flipped := Render(c.State(), c.Transform(vp), vp, 40, 20)

	if plain == nil || flipped == nil {
		t.Fatal("expected rendered grids")
	}
	// a cell left of the pivot samples the red half unrotated and the blue
	// half after a half turn
	if plain[10][10].FG != "#ff0000" {
		t.Errorf("unrotated sample = %s, want red", plain[10][10].FG)
	}
	if flipped[10][10].FG != "#0000ff" {
		t.Errorf("rotated sample = %s, want blue", flipped[10][10].FG)
	}
}

func TestRenderRotationKeepsBounds(t *testing.T) {
	c := attachedController(splitImage())
	before := c.State().GeoBounds
	c.SetRotation(90)
	if c.State().GeoBounds != before {
		t.Error("rotation is presentation-only and must not move geo bounds")
	}
}
