package spectrum

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/gospectrum/internal/config"
	"github.com/tejashwikalptaru/gospectrum/internal/domain"
	"github.com/tejashwikalptaru/gospectrum/internal/ports"
)

// Renderer runs the pipeline once per frame: pull magnitudes from the
// current source (or the demo signal), smooth them, compose the frame and
// hand it to the backend.
//
// AdvanceFrame is meant to be called from a single cadence source such as
// the window's animation, a terminal tick or a test loop. Calls are
// serialised; each runs to completion before the next starts.
type Renderer struct {
	// Dependencies
	logger   *slog.Logger
	backend  ports.RenderBackend
	sources  ports.SourceProvider
	composer *Composer
	smoother Smoother
	demo     DemoGenerator
	clock    func() time.Time

	// State
	channels [2]ChannelState
	frame    domain.Frame
	failing  ports.SpectrumSource // source whose read failure was logged

	// Concurrency control
	mu sync.Mutex
}

// RendererOption customises a Renderer.
type RendererOption func(*rendererOptions)

type rendererOptions struct {
	clock  func() time.Time
	random RandomSource
}

// WithClock replaces the wall clock used by the demo signal.
func WithClock(clock func() time.Time) RendererOption {
	return func(o *rendererOptions) { o.clock = clock }
}

// WithRandom replaces the random source used for soft-zone decisions.
func WithRandom(rnd RandomSource) RendererOption {
	return func(o *rendererOptions) { o.random = rnd }
}

// NewRenderer creates a renderer. sources may be nil, in which case every
// frame uses the demo signal.
func NewRenderer(cfg config.Visualizer, backend ports.RenderBackend, sources ports.SourceProvider, opts ...RendererOption) *Renderer {
	o := rendererOptions{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.random == nil {
		o.random = NewRandomSource(uint64(time.Now().UnixNano()))
	}

	bins := cfg.BinCount()
	return &Renderer{
		logger:   slog.Default(),
		backend:  backend,
		sources:  sources,
		composer: NewComposer(cfg, o.random),
		smoother: Smoother{Alpha: cfg.SmoothingFactor, Decay: cfg.DecayMultiplier},
		clock:    o.clock,
		channels: [2]ChannelState{NewChannelState(bins), NewChannelState(bins)},
		frame: domain.Frame{
			Dots: make([]domain.Dot, 0, 2*cfg.DotsPerBar*bins/2),
		},
	}
}

// SetLogger sets the logger for this renderer.
func (r *Renderer) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Backend returns the backend frames are drawn with.
func (r *Renderer) Backend() ports.RenderBackend {
	return r.backend
}

// AdvanceFrame renders one frame.
func (r *Renderer) AdvanceFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	left, right := r.channels[0].Raw, r.channels[1].Raw
	if !r.pull(left, right) {
		t := float64(r.clock().UnixNano()) / float64(time.Second)
		r.demo.Generate(t, left, right)
	}

	r.smoother.Apply(r.channels[0].Smoothed, left)
	r.smoother.Apply(r.channels[1].Smoothed, right)

	width, height := r.backend.Size()
	r.composer.Compose(&r.frame, width, height, [2][]float64{
		r.channels[0].Smoothed,
		r.channels[1].Smoothed,
	})
	r.frame.Number++

	if err := r.backend.Draw(&r.frame); err != nil {
		return fmt.Errorf("draw frame %d with %s: %w", r.frame.Number, r.backend.Name(), err)
	}
	return nil
}

// pull reads the current source into left and right. It reports false when
// there is no source or the read failed, leaving the caller to fill in.
func (r *Renderer) pull(left, right []byte) bool {
	if r.sources == nil {
		return false
	}
	src := r.sources.Current()
	if src == nil {
		return false
	}

	// A failing source logs once, until it reads again or is replaced.
	if err := src.ReadFrequencyData(left, right); err != nil {
		if r.failing != src {
			r.logger.Warn("source read failed, using demo signal",
				slog.String("source", string(src.Kind())),
				slog.Any("error", err))
			r.failing = src
		}
		return false
	}
	r.failing = nil

	if src.Channels() == 1 {
		copy(right, left)
	}
	return true
}

// Smoothed returns a copy of a channel's smoothed magnitudes.
func (r *Renderer) Smoothed(ch domain.Channel) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.channels[ch].Smoothed...)
}

// FrameCount returns how many frames were rendered.
func (r *Renderer) FrameCount() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frame.Number
}
