package render

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/gospectrum/internal/adapter/render/batch"
	"github.com/tejashwikalptaru/gospectrum/internal/adapter/render/raster"
	"github.com/tejashwikalptaru/gospectrum/internal/config"
	"github.com/tejashwikalptaru/gospectrum/internal/domain"
	"github.com/tejashwikalptaru/gospectrum/internal/ports"
	"github.com/tejashwikalptaru/gospectrum/internal/spectrum"
)

type triangleSurface struct {
	w, h     int
	vertices []float32
}

func (s *triangleSurface) Size() (int, int) { return s.w, s.h }

func (s *triangleSurface) SubmitTriangles(vertices []float32, _ int) error {
	s.vertices = append(s.vertices[:0], vertices...)
	return nil
}

func gpuFactory() (ports.RenderBackend, error) {
	return batch.New(&triangleSurface{w: 10, h: 10}), nil
}

func rasterFactory() (ports.RenderBackend, error) {
	return raster.New(raster.NewImageSurface(10, 10)), nil
}

func failing() (ports.RenderBackend, error) {
	return nil, errors.New("no GL context")
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name     string
		kind     domain.RendererKind
		software string
		gpu      BackendFactory
		want     string
	}{
		{"auto prefers gpu", domain.RendererAuto, "", gpuFactory, "gpu"},
		{"empty is auto", "", "", gpuFactory, "gpu"},
		{"auto honours software GL", domain.RendererAuto, "1", gpuFactory, "raster"},
		{"auto ignores software GL 0", domain.RendererAuto, "0", gpuFactory, "gpu"},
		{"auto falls back", domain.RendererAuto, "", failing, "raster"},
		{"explicit raster", domain.RendererRaster, "", gpuFactory, "raster"},
		{"explicit gpu", domain.RendererGPU, "1", gpuFactory, "gpu"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LIBGL_ALWAYS_SOFTWARE", tt.software)
			sel, err := Select(tt.kind, tt.gpu, rasterFactory)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sel.Backend.Name())
			assert.NotEmpty(t, sel.Reason)
		})
	}
}

func TestSelect_Failures(t *testing.T) {
	t.Setenv("LIBGL_ALWAYS_SOFTWARE", "")

	_, err := Select(domain.RendererGPU, failing, rasterFactory)
	assert.Error(t, err)

	_, err = Select(domain.RendererAuto, failing, nil)
	assert.ErrorIs(t, err, domain.ErrNoRenderSurface)

	_, err = Select("vulkan", gpuFactory, rasterFactory)
	var vErr *domain.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

// TestBackends_SameColors draws one composed frame with both backends and
// compares each dot's batch color with the raster pixel at its centre.
func TestBackends_SameColors(t *testing.T) {
	cfg := config.DefaultVisualizer()
	cfg.SoftZoneProbability = 0
	composer := spectrum.NewComposer(cfg, nil)

	bins := cfg.BinCount()
	left := make([]float64, bins)
	right := make([]float64, bins)
	for i := range left {
		left[i] = float64(i % 256)
		right[i] = float64(255 - i%256)
	}

	frame := &domain.Frame{}
	composer.Compose(frame, 800, 240, [2][]float64{left, right})
	require.NotEmpty(t, frame.Dots)

	tri := &triangleSurface{w: 800, h: 240}
	require.NoError(t, batch.New(tri).Draw(frame))

	img := raster.NewImageSurface(800, 240)
	require.NoError(t, raster.New(img).Draw(frame))

	stride := batch.VerticesPerDot * batch.FloatsPerVertex
	for i, d := range frame.Dots {
		v := tri.vertices[i*stride : i*stride+batch.FloatsPerVertex]
		want := raster.ToNRGBA(domain.RGBA{R: float64(v[2]), G: float64(v[3]), B: float64(v[4]), A: float64(v[5])})
		if want.A == 0 {
			continue
		}

		cx := int(d.X + d.Width/2)
		cy := int(d.Y + d.Height/2)
		got := color.NRGBAModel.Convert(img.Image().At(cx, cy)).(color.NRGBA)

		// Translucent dots pass through 8-bit premultiplied storage.
		tol := 1.0
		if want.A < 255 {
			tol = 3
		}
		assert.InDelta(t, want.R, got.R, tol, "dot %d red", i)
		assert.InDelta(t, want.G, got.G, tol, "dot %d green", i)
		assert.InDelta(t, want.B, got.B, tol, "dot %d blue", i)
		assert.InDelta(t, want.A, got.A, 1, "dot %d alpha", i)
	}
	assert.Equal(t, image.Rect(0, 0, 800, 240), img.Image().Bounds())
}
