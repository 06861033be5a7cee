// Package demo provides the synthetic source used when no live audio is available.
package demo

import (
	"context"
	"sync"
	"time"

	"github.com/tejashwikalptaru/gospectrum/internal/domain"
	"github.com/tejashwikalptaru/gospectrum/internal/ports"
	"github.com/tejashwikalptaru/gospectrum/internal/spectrum"
)

// Source serves the demo signal through the SpectrumSource interface.
// It never fails to open and has no producer goroutine.
type Source struct {
	gen    spectrum.DemoGenerator
	clock  func() time.Time
	closed bool
	mu     sync.Mutex
}

// New creates a demo source. A nil clock uses time.Now.
func New(clock func() time.Time) *Source {
	if clock == nil {
		clock = time.Now
	}
	return &Source{clock: clock}
}

// Kind returns domain.SourceDemo.
func (s *Source) Kind() domain.SourceKind { return domain.SourceDemo }

// Label returns the display name.
func (s *Source) Label() string { return "Demo" }

// Channels returns 2.
func (s *Source) Channels() int { return 2 }

// ReadFrequencyData generates the signal for the current time.
func (s *Source) ReadFrequencyData(left, right []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrClosed
	}
	t := float64(s.clock().UnixNano()) / float64(time.Second)
	s.gen.Generate(t, left, right)
	return nil
}

// Close marks the source closed.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ ports.SpectrumSource = (*Source)(nil)

// Opener hands out demo sources.
type Opener struct {
	Clock func() time.Time
}

// Open returns a new demo source. It fails only when ctx is already done.
func (o Opener) Open(ctx context.Context, request domain.SourceRequest) (ports.SpectrumSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewSourceError("open", domain.SourceDemo, "", domain.Unavailable(err))
	}
	return New(o.Clock), nil
}

var _ ports.SourceOpener = Opener{}
