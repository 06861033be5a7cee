// Package tui previews the spectrum in a terminal with bubbletea.
//
// Frames are rasterized at a virtual pixel size and folded into half-block
// cells: every terminal cell shows two stacked pixels, the upper one as the
// foreground of "▀" and the lower one as its background.
package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/tejashwikalptaru/gospectrum/internal/ports"
)

// Virtual pixels per terminal cell. A cell is roughly twice as tall as it is
// wide, so each half-block covers a square of CellWidth pixels.
const (
	CellWidth  = 8
	CellHeight = 16
)

const upperHalfBlock = "▀"

// cell is one terminal cell: two composited colors and whether each half
// has any coverage at all.
type cell struct {
	top, bottom  color.RGBA
	topOn, botOn bool
}

// Surface is a ports.RasterSurface that keeps the last frame as cells.
type Surface struct {
	cols, rows int
	cells      []cell

	mu sync.Mutex
}

// NewSurface creates a surface of cols by rows terminal cells.
func NewSurface(cols, rows int) *Surface {
	s := &Surface{}
	s.Resize(cols, rows)
	return s
}

// Resize changes the cell grid. The previous frame is dropped.
func (s *Surface) Resize(cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cols, s.rows = max(cols, 0), max(rows, 0)
	s.cells = make([]cell, s.cols*s.rows)
}

// Size returns the virtual pixel size frames should be composed at.
func (s *Surface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cols * CellWidth, s.rows * CellHeight
}

// Present folds img into cells. Each half cell takes the average of its
// pixel block composited over black, so thin gaps between dots blend in
// rather than flicker.
func (s *Surface) Present(img *image.RGBA) error {
	if img == nil {
		return fmt.Errorf("present nil image")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	half := CellHeight / 2
	for row := 0; row < s.rows; row++ {
		for col := 0; col < s.cols; col++ {
			x0, y0 := col*CellWidth, row*CellHeight
			c := &s.cells[row*s.cols+col]
			c.top, c.topOn = average(img, image.Rect(x0, y0, x0+CellWidth, y0+half))
			c.bottom, c.botOn = average(img, image.Rect(x0, y0+half, x0+CellWidth, y0+CellHeight))
		}
	}
	return nil
}

// average returns the mean premultiplied color of r within img, which is
// the color of the block composited over black.
func average(img *image.RGBA, r image.Rectangle) (color.RGBA, bool) {
	r = r.Intersect(img.Bounds())
	n := r.Dx() * r.Dy()
	if n == 0 {
		return color.RGBA{}, false
	}

	var sr, sg, sb, sa int
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := img.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			sr += int(img.Pix[off])
			sg += int(img.Pix[off+1])
			sb += int(img.Pix[off+2])
			sa += int(img.Pix[off+3])
			off += 4
		}
	}
	if sa == 0 {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(sr / n), G: uint8(sg / n), B: uint8(sb / n), A: 255}, true
}

// Render draws the cells as text. Runs of identical cells share one style.
func (s *Surface) Render() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	for row := 0; row < s.rows; row++ {
		line := s.cells[row*s.cols : (row+1)*s.cols]
		for start := 0; start < len(line); {
			end := start + 1
			for end < len(line) && line[end] == line[start] {
				end++
			}
			b.WriteString(renderRun(line[start], end-start))
			start = end
		}
		if row < s.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func renderRun(c cell, n int) string {
	switch {
	case !c.topOn && !c.botOn:
		return strings.Repeat(" ", n)
	case c.topOn && !c.botOn:
		return lipgloss.NewStyle().Foreground(hex(c.top)).Render(strings.Repeat(upperHalfBlock, n))
	case !c.topOn && c.botOn:
		return lipgloss.NewStyle().Foreground(hex(c.bottom)).Render(strings.Repeat("▄", n))
	default:
		return lipgloss.NewStyle().
			Foreground(hex(c.top)).
			Background(hex(c.bottom)).
			Render(strings.Repeat(upperHalfBlock, n))
	}
}

func hex(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B))
}

// Lit counts cells with any coverage.
func (s *Surface) Lit() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.cells {
		if c.topOn || c.botOn {
			n++
		}
	}
	return n
}

var _ ports.RasterSurface = (*Surface)(nil)
