// Package raster draws frames into an RGBA image with one filled rectangle per dot.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/tejashwikalptaru/gospectrum/internal/domain"
	"github.com/tejashwikalptaru/gospectrum/internal/ports"
)

// Backend is the CPU raster render backend.
type Backend struct {
	surface ports.RasterSurface
	img     *image.RGBA
}

// New creates a raster backend presenting to surface.
func New(surface ports.RasterSurface) *Backend {
	return &Backend{surface: surface}
}

// Name returns "raster".
func (b *Backend) Name() string { return string(domain.RendererRaster) }

// Size returns the surface size.
func (b *Backend) Size() (int, int) { return b.surface.Size() }

// Draw rasterizes frame and presents it. The image is reallocated only when
// the frame size changes.
func (b *Backend) Draw(frame *domain.Frame) error {
	bounds := image.Rect(0, 0, frame.Width, frame.Height)
	if b.img == nil || b.img.Bounds() != bounds {
		b.img = image.NewRGBA(bounds)
	}
	Rasterize(b.img, frame)
	if err := b.surface.Present(b.img); err != nil {
		return fmt.Errorf("present %dx%d image: %w", frame.Width, frame.Height, err)
	}
	return nil
}

// Rasterize clears img to transparent and fills every dot of frame.
func Rasterize(img *image.RGBA, frame *domain.Frame) {
	draw.Draw(img, img.Bounds(), image.Transparent, image.Point{}, draw.Src)
	for i := range frame.Dots {
		d := &frame.Dots[i]
		rect := image.Rect(
			int(math.Round(d.X)), int(math.Round(d.Y)),
			int(math.Round(d.X+d.Width)), int(math.Round(d.Y+d.Height)),
		)
		draw.Draw(img, rect, image.NewUniform(ToNRGBA(d.RGBA)), image.Point{}, draw.Over)
	}
}

// ToNRGBA converts a float color to 8-bit non-premultiplied RGBA.
func ToNRGBA(c domain.RGBA) color.NRGBA {
	return color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)}
}

func to8(v float64) uint8 {
	return uint8(math.Round(min(max(v, 0), 1) * 255))
}

// ImageSurface is an off-screen RasterSurface that keeps the last presented image.
type ImageSurface struct {
	width, height int
	last          *image.RGBA
}

// NewImageSurface creates an off-screen surface of the given size.
func NewImageSurface(width, height int) *ImageSurface {
	return &ImageSurface{width: width, height: height}
}

// Size returns the configured size.
func (s *ImageSurface) Size() (int, int) { return s.width, s.height }

// Present stores a copy of img.
func (s *ImageSurface) Present(img *image.RGBA) error {
	cp := image.NewRGBA(img.Bounds())
	copy(cp.Pix, img.Pix)
	s.last = cp
	return nil
}

// Image returns the last presented image, or nil before the first frame.
func (s *ImageSurface) Image() *image.RGBA { return s.last }

var (
	_ ports.RenderBackend = (*Backend)(nil)
	_ ports.RasterSurface = (*ImageSurface)(nil)
)
