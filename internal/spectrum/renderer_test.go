package spectrum

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/gospectrum/internal/config"
	"github.com/tejashwikalptaru/gospectrum/internal/domain"
	"github.com/tejashwikalptaru/gospectrum/internal/logger"
	"github.com/tejashwikalptaru/gospectrum/internal/ports"
)

// captureBackend records every frame it is asked to draw.
type captureBackend struct {
	width, height int
	frames        []domain.Frame
	err           error
}

func (b *captureBackend) Name() string     { return "capture" }
func (b *captureBackend) Size() (int, int) { return b.width, b.height }
func (b *captureBackend) Draw(f *domain.Frame) error {
	cp := *f
	cp.Dots = append([]domain.Dot(nil), f.Dots...)
	cp.Bars = append([]domain.Bar(nil), f.Bars...)
	b.frames = append(b.frames, cp)
	return b.err
}

func (b *captureBackend) last() domain.Frame {
	return b.frames[len(b.frames)-1]
}

// constSource yields fixed magnitudes.
type constSource struct {
	channels    int
	left, right byte
	err         error
}

func (s *constSource) Kind() domain.SourceKind { return domain.SourceMicrophone }
func (s *constSource) Label() string           { return "const" }
func (s *constSource) Channels() int           { return s.channels }
func (s *constSource) Close() error            { return nil }
func (s *constSource) ReadFrequencyData(left, right []byte) error {
	if s.err != nil {
		return s.err
	}
	for i := range left {
		left[i] = s.left
	}
	if s.channels == 2 {
		for i := range right {
			right[i] = s.right
		}
	}
	return nil
}

type staticProvider struct{ src ports.SpectrumSource }

func (p staticProvider) Current() ports.SpectrumSource { return p.src }

func fixedClock() time.Time { return time.Unix(1700000000, 0) }

func newTestRenderer(cfg config.Visualizer, src ports.SpectrumSource) (*Renderer, *captureBackend) {
	backend := &captureBackend{width: 800, height: 240}
	var provider ports.SourceProvider
	if src != nil {
		provider = staticProvider{src: src}
	}
	r := NewRenderer(cfg, backend, provider, WithClock(fixedClock), WithRandom(fixedRandom(0.99)))
	r.SetLogger(logger.NewTestLogger())
	return r, backend
}

func TestRenderer_DemoWhenNoSource(t *testing.T) {
	r, backend := newTestRenderer(config.DefaultVisualizer(), nil)

	require.NoError(t, r.AdvanceFrame())

	frame := backend.last()
	// 240 / (20+4) = 10 bars, two channels, ten dots each
	assert.Len(t, frame.Bars, 20)
	assert.Len(t, frame.Dots, 200)
	assert.Equal(t, int64(1), frame.Number)

	// Smoothed state moved off zero from the demo signal
	left := r.Smoothed(domain.ChannelLeft)
	assert.Greater(t, left[2], 0.0)
}

func TestRenderer_DotGeometry(t *testing.T) {
	r, backend := newTestRenderer(config.DefaultVisualizer(), nil)
	require.NoError(t, r.AdvanceFrame())

	dots := backend.last().Dots

	// Left channel, bar 0, dots grow rightward from the margin
	assert.Equal(t, 10.0, dots[0].X)
	assert.Equal(t, 216.0, dots[0].Y)
	assert.Equal(t, 30.0, dots[1].X)
	assert.Equal(t, 16.0, dots[0].Width)
	assert.Equal(t, 20.0, dots[0].Height)

	// Left channel, bar 1 sits one pitch higher
	assert.Equal(t, 192.0, dots[10].Y)

	// Right channel starts after all left bars and grows leftward
	right := dots[100:]
	assert.Equal(t, 770.0, right[0].X)
	assert.Equal(t, 750.0, right[1].X)
	assert.Equal(t, 216.0, right[0].Y)
}

func TestRenderer_MonoModeDrawsOneChannel(t *testing.T) {
	cfg := config.DefaultVisualizer()
	cfg.Stereo = false
	r, backend := newTestRenderer(cfg, nil)

	require.NoError(t, r.AdvanceFrame())

	frame := backend.last()
	assert.Len(t, frame.Dots, 100)
	for _, bar := range frame.Bars {
		assert.Equal(t, domain.ChannelLeft, bar.Channel)
	}
}

func TestRenderer_MonoSourceMirrorsLeft(t *testing.T) {
	src := &constSource{channels: 1, left: 200}
	r, _ := newTestRenderer(config.DefaultVisualizer(), src)

	for i := 0; i < 3; i++ {
		require.NoError(t, r.AdvanceFrame())
	}

	assert.Equal(t, r.Smoothed(domain.ChannelLeft), r.Smoothed(domain.ChannelRight))
}

func TestRenderer_StereoSourceChannelsIndependent(t *testing.T) {
	src := &constSource{channels: 2, left: 255, right: 0}
	r, backend := newTestRenderer(config.DefaultVisualizer(), src)

	for i := 0; i < 20; i++ {
		require.NoError(t, r.AdvanceFrame())
	}

	frame := backend.last()
	for _, bar := range frame.Bars {
		if bar.Channel == domain.ChannelLeft {
			assert.Positive(t, bar.LitDots)
		} else {
			assert.Zero(t, bar.LitDots)
		}
	}
}

func TestRenderer_SmoothingPersistsAcrossFrames(t *testing.T) {
	src := &constSource{channels: 2, left: 100, right: 100}
	r, _ := newTestRenderer(config.DefaultVisualizer(), src)

	require.NoError(t, r.AdvanceFrame())
	assert.InDelta(t, 60.0, r.Smoothed(domain.ChannelLeft)[10], 1e-9)

	require.NoError(t, r.AdvanceFrame())
	assert.InDelta(t, 84.0, r.Smoothed(domain.ChannelLeft)[10], 1e-9)
	assert.Equal(t, int64(2), r.FrameCount())
}

func TestRenderer_ReadErrorFallsBackToDemo(t *testing.T) {
	src := &constSource{channels: 2, err: domain.ErrClosed}
	r, backend := newTestRenderer(config.DefaultVisualizer(), src)

	require.NoError(t, r.AdvanceFrame())
	require.NoError(t, r.AdvanceFrame())

	assert.Len(t, backend.frames, 2)
	assert.Greater(t, r.Smoothed(domain.ChannelLeft)[2], 0.0)
}

// dyingSource fails every read with a freshly wrapped error, like a capture
// whose process exited, until healed.
type dyingSource struct {
	constSource
	dead  bool
	reads int
}

func (s *dyingSource) ReadFrequencyData(left, right []byte) error {
	s.reads++
	if s.dead {
		cause := fmt.Errorf("capture process exited (read %d)", s.reads)
		return domain.NewSourceError("read", domain.SourceSystem, "monitor", domain.Malformed(cause))
	}
	return s.constSource.ReadFrequencyData(left, right)
}

func TestRenderer_ReadFailureLoggedOncePerSource(t *testing.T) {
	src := &dyingSource{constSource: constSource{channels: 2, left: 100, right: 100}, dead: true}
	r, backend := newTestRenderer(config.DefaultVisualizer(), src)

	var buf bytes.Buffer
	r.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	warnings := func() int { return strings.Count(buf.String(), "source read failed") }

	for i := 0; i < 60; i++ {
		require.NoError(t, r.AdvanceFrame())
	}
	assert.Len(t, backend.frames, 60)
	assert.Equal(t, 1, warnings())

	// A successful read re-arms the warning.
	src.dead = false
	require.NoError(t, r.AdvanceFrame())
	src.dead = true
	require.NoError(t, r.AdvanceFrame())
	require.NoError(t, r.AdvanceFrame())
	assert.Equal(t, 2, warnings())
}

func TestRenderer_DrawErrorIsWrapped(t *testing.T) {
	r, backend := newTestRenderer(config.DefaultVisualizer(), nil)
	backend.err = errors.New("surface lost")

	err := r.AdvanceFrame()
	require.Error(t, err)
	assert.ErrorIs(t, err, backend.err)
	assert.Contains(t, err.Error(), "capture")
}

func TestRenderer_TinySurfaceDrawsNothing(t *testing.T) {
	r, backend := newTestRenderer(config.DefaultVisualizer(), nil)
	backend.height = 10

	require.NoError(t, r.AdvanceFrame())
	assert.Empty(t, backend.last().Dots)
}

func TestRenderer_ColorsAreConsistent(t *testing.T) {
	r, backend := newTestRenderer(config.DefaultVisualizer(), nil)
	require.NoError(t, r.AdvanceFrame())

	for _, dot := range backend.last().Dots {
		assert.Equal(t, ToRGBA(dot.Color, dot.Alpha), dot.RGBA)
		if dot.Lit {
			assert.Equal(t, 1.0, dot.Alpha)
		} else {
			assert.Equal(t, 0.5, dot.Alpha)
		}
	}
}
