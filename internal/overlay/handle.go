package overlay

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
)

// maxRasterSide bounds the pre-resampled raster so per-frame sampling stays
// cheap regardless of the source image size.
const maxRasterSide = 256

// ImageHandle is an opaque, revocable reference to decoded floor-plan image
// bytes. Once released the pixels are gone; rendering a released handle
// draws nothing.
type ImageHandle struct {
	id       string
	path     string
	raster   *image.RGBA
	releases int
}

// OpenImage decodes a floor-plan image from disk (png, jpeg or gif).
func OpenImage(path string) (*ImageHandle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return NewImageHandle(img, path), nil
}

// NewImageHandle wraps an already decoded image.
func NewImageHandle(img image.Image, path string) *ImageHandle {
	return &ImageHandle{
		id:     uuid.NewString(),
		path:   path,
		raster: resample(img),
	}
}

func (h *ImageHandle) ID() string   { return h.id }
func (h *ImageHandle) Path() string { return h.path }

// Raster returns the resampled pixels, or nil once released.
func (h *ImageHandle) Raster() *image.RGBA {
	if h == nil {
		return nil
	}
	return h.raster
}

// Release revokes the handle and frees its pixels. Idempotent: releasing an
// already-released handle is harmless.
func (h *ImageHandle) Release() {
	if h == nil {
		return
	}
	h.releases++
	h.raster = nil
}

// Released reports whether the handle has been revoked.
func (h *ImageHandle) Released() bool {
	return h != nil && h.releases > 0
}

// resample scales img so its longer edge is at most maxRasterSide pixels.
func resample(img image.Image) *image.RGBA {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil
	}
	scale := 1.0
	if w >= h && w > maxRasterSide {
		scale = float64(maxRasterSide) / float64(w)
	} else if h > w && h > maxRasterSide {
		scale = float64(maxRasterSide) / float64(h)
	}
	dw := max(1, int(float64(w)*scale))
	dh := max(1, int(float64(h)*scale))
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
