// Package widgets provides the custom Fyne widgets the spectrum window is built from.
package widgets

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/gospectrum/internal/ports"
)

const (
	floatsPerVertex = 6
	verticesPerQuad = 6
)

// VectorSurface draws triangle batches as canvas rectangles, which fyne's
// OpenGL painter renders on the GPU. Every two triangles of a batch describe
// one axis-aligned dot, so each quad maps onto one pooled rectangle.
//
// Coordinates are fyne units, the same space the widget is laid out in.
type VectorSurface struct {
	widget.BaseWidget

	layer *fyne.Container
	rects []*canvas.Rectangle
	used  int

	mu sync.Mutex
}

// NewVectorSurface creates an empty vector surface.
func NewVectorSurface() *VectorSurface {
	v := &VectorSurface{
		layer: container.NewWithoutLayout(),
	}
	v.ExtendBaseWidget(v)
	return v
}

// CreateRenderer implements fyne.Widget.
func (v *VectorSurface) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.layer)
}

// MinSize lets the surface shrink to nothing so it fills whatever it is given.
func (v *VectorSurface) MinSize() fyne.Size {
	return fyne.NewSize(0, 0)
}

// Target returns the surface as a ports.TriangleSurface.
func (v *VectorSurface) Target() ports.TriangleSurface {
	return vectorTarget{v}
}

// VisibleDots returns how many rectangles the last batch lit.
func (v *VectorSurface) VisibleDots() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.used
}

// Dot returns the rectangle drawn for quad i of the last batch.
func (v *VectorSurface) Dot(i int) *canvas.Rectangle {
	v.mu.Lock()
	defer v.mu.Unlock()
	if i < 0 || i >= v.used {
		return nil
	}
	return v.rects[i]
}

func (v *VectorSurface) submit(vertices []float32, vertexCount int) error {
	if vertexCount%verticesPerQuad != 0 {
		return fmt.Errorf("vertex count %d is not a multiple of %d", vertexCount, verticesPerQuad)
	}
	if len(vertices) < vertexCount*floatsPerVertex {
		return fmt.Errorf("vertex buffer holds %d floats, need %d", len(vertices), vertexCount*floatsPerVertex)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	quads := vertexCount / verticesPerQuad
	for len(v.rects) < quads {
		r := canvas.NewRectangle(color.Transparent)
		v.rects = append(v.rects, r)
		v.layer.Add(r)
	}

	for q := 0; q < quads; q++ {
		quad := vertices[q*verticesPerQuad*floatsPerVertex : (q+1)*verticesPerQuad*floatsPerVertex]
		minX, minY, maxX, maxY := bounds(quad)

		r := v.rects[q]
		r.FillColor = vertexColor(quad)
		r.Move(fyne.NewPos(minX, minY))
		r.Resize(fyne.NewSize(maxX-minX, maxY-minY))
		r.Show()
	}
	for q := quads; q < v.used; q++ {
		v.rects[q].Hide()
	}
	v.used = quads

	v.layer.Refresh()
	return nil
}

// bounds returns the bounding box of one quad's six vertices.
func bounds(quad []float32) (minX, minY, maxX, maxY float32) {
	minX, minY = quad[0], quad[1]
	maxX, maxY = minX, minY
	for i := floatsPerVertex; i < len(quad); i += floatsPerVertex {
		x, y := quad[i], quad[i+1]
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}
	return minX, minY, maxX, maxY
}

// vertexColor reads the color of a quad's first vertex.
func vertexColor(quad []float32) color.NRGBA {
	return color.NRGBA{
		R: unit8(quad[2]),
		G: unit8(quad[3]),
		B: unit8(quad[4]),
		A: unit8(quad[5]),
	}
}

func unit8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(float64(v) * 255))
}

type vectorTarget struct{ v *VectorSurface }

func (t vectorTarget) Size() (int, int) {
	s := t.v.Size()
	return int(s.Width), int(s.Height)
}

func (t vectorTarget) SubmitTriangles(vertices []float32, vertexCount int) error {
	return t.v.submit(vertices, vertexCount)
}

// RasterSurface shows the last presented image through a canvas.Raster.
// The image is stretched over the widget, so frames sized in fyne units line
// up with the vector surface on any display scale.
type RasterSurface struct {
	widget.BaseWidget

	raster *canvas.Raster

	// front is what the painter reads, back is what Present writes.
	front *image.RGBA
	back  *image.RGBA

	mu sync.Mutex
}

// NewRasterSurface creates an empty raster surface.
func NewRasterSurface() *RasterSurface {
	r := &RasterSurface{}
	r.raster = canvas.NewRaster(r.draw)
	r.raster.ScaleMode = canvas.ImageScalePixels
	r.ExtendBaseWidget(r)
	return r
}

// CreateRenderer implements fyne.Widget.
func (r *RasterSurface) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(r.raster)
}

// MinSize lets the surface shrink to nothing so it fills whatever it is given.
func (r *RasterSurface) MinSize() fyne.Size {
	return fyne.NewSize(0, 0)
}

// Target returns the surface as a ports.RasterSurface.
func (r *RasterSurface) Target() ports.RasterSurface {
	return rasterTarget{r}
}

// Image returns the most recently presented image, or nil.
func (r *RasterSurface) Image() *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.front
}

func (r *RasterSurface) draw(w, h int) image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.front == nil {
		return image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	}
	return r.front
}

func (r *RasterSurface) present(img *image.RGBA) error {
	if img == nil {
		return fmt.Errorf("present nil image")
	}

	r.mu.Lock()
	if r.back == nil || r.back.Bounds() != img.Bounds() {
		r.back = image.NewRGBA(img.Bounds())
	}
	draw.Draw(r.back, r.back.Bounds(), img, img.Bounds().Min, draw.Src)
	r.front, r.back = r.back, r.front
	r.mu.Unlock()

	r.raster.Refresh()
	return nil
}

type rasterTarget struct{ r *RasterSurface }

func (t rasterTarget) Size() (int, int) {
	s := t.r.Size()
	return int(s.Width), int(s.Height)
}

func (t rasterTarget) Present(img *image.RGBA) error {
	return t.r.present(img)
}

var _ fyne.Widget = (*VectorSurface)(nil)
var _ fyne.Widget = (*RasterSurface)(nil)
var _ ports.TriangleSurface = vectorTarget{}
var _ ports.RasterSurface = rasterTarget{}
