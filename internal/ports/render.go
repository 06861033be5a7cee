package ports

import (
	"image"

	"github.com/tejashwikalptaru/gospectrum/internal/domain"
)

// RenderBackend draws one composed frame. Backends must apply identical
// geometry and color to the same frame; only the drawing mechanism differs.
type RenderBackend interface {
	Sizer

	// Name identifies the backend in logs and events ("gpu" or "raster").
	Name() string

	// Draw renders the frame onto the backend's surface.
	Draw(frame *domain.Frame) error
}

// Sizer reports the current drawable size in pixels.
type Sizer interface {
	Size() (width, height int)
}

// TriangleSurface accepts one interleaved triangle batch per frame.
// Each vertex is six float32 values: x, y, r, g, b, a in pixel space with
// color channels in [0, 1].
type TriangleSurface interface {
	Sizer
	SubmitTriangles(vertices []float32, vertexCount int) error
}

// RasterSurface accepts a fully drawn RGBA image per frame.
type RasterSurface interface {
	Sizer
	Present(img *image.RGBA) error
}
