// Package batch draws frames as a single interleaved triangle batch, the way a
// GPU surface consumes them: two triangles per dot, one submit per frame.
package batch

import (
	"fmt"

	"github.com/tejashwikalptaru/gospectrum/internal/domain"
	"github.com/tejashwikalptaru/gospectrum/internal/ports"
)

// FloatsPerVertex is the stride of the vertex buffer: x, y, r, g, b, a.
const FloatsPerVertex = 6

// VerticesPerDot is the vertex count of one dot quad.
const VerticesPerDot = 6

// Backend is the GPU-batch render backend.
type Backend struct {
	surface  ports.TriangleSurface
	vertices []float32
}

// New creates a batch backend drawing onto surface.
func New(surface ports.TriangleSurface) *Backend {
	return &Backend{surface: surface}
}

// Name returns "gpu".
func (b *Backend) Name() string { return string(domain.RendererGPU) }

// Size returns the surface size.
func (b *Backend) Size() (int, int) { return b.surface.Size() }

// Draw builds the vertex buffer for frame and submits it once.
// The buffer is reused between frames.
func (b *Backend) Draw(frame *domain.Frame) error {
	b.vertices = AppendVertices(b.vertices[:0], frame)
	count := len(b.vertices) / FloatsPerVertex
	if err := b.surface.SubmitTriangles(b.vertices, count); err != nil {
		return fmt.Errorf("submit %d vertices: %w", count, err)
	}
	return nil
}

// AppendVertices appends two triangles per dot of frame to dst.
func AppendVertices(dst []float32, frame *domain.Frame) []float32 {
	for i := range frame.Dots {
		d := &frame.Dots[i]
		x0, y0 := float32(d.X), float32(d.Y)
		x1, y1 := float32(d.X+d.Width), float32(d.Y+d.Height)
		r, g, bl, a := float32(d.RGBA.R), float32(d.RGBA.G), float32(d.RGBA.B), float32(d.RGBA.A)

		dst = append(dst,
			x0, y0, r, g, bl, a,
			x1, y0, r, g, bl, a,
			x0, y1, r, g, bl, a,
			x1, y0, r, g, bl, a,
			x1, y1, r, g, bl, a,
			x0, y1, r, g, bl, a,
		)
	}
	return dst
}

var _ ports.RenderBackend = (*Backend)(nil)
