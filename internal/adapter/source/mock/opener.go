// Package mock provides an in-memory SourceOpener and DeviceLister.
// It is used for testing services without real capture devices or ffmpeg.
package mock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/gospectrum/internal/domain"
	"github.com/tejashwikalptaru/gospectrum/internal/ports"
)

// Opener is a mock implementation of SourceOpener and DeviceLister.
// Opened sources yield a constant level per channel.
//
// Thread-safety: This implementation is thread-safe.
type Opener struct {
	// Dependencies
	logger *slog.Logger

	// State
	devices []domain.DeviceInfo
	opened  []*Source
	level   byte
	mu      sync.Mutex

	// Behavior configuration (for testing error scenarios)
	failOpen  map[domain.SourceKind]error
	failList  bool
	blockOpen bool
}

// NewOpener creates a mock opener whose sources report level on every bin.
func NewOpener(level byte) *Opener {
	return &Opener{
		level:    level,
		failOpen: make(map[domain.SourceKind]error),
	}
}

// SetLogger sets the logger for this opener.
func (o *Opener) SetLogger(logger *slog.Logger) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.logger = logger
}

// SetFailOpen makes Open fail for kind with err. A nil err clears the failure.
// Pass domain.ErrSourceUnavailable or domain.ErrMalformedStream to select the failure class.
func (o *Opener) SetFailOpen(kind domain.SourceKind, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err == nil {
		delete(o.failOpen, kind)
		return
	}
	o.failOpen[kind] = err
}

// SetFailList configures ListDevices to fail (for testing).
func (o *Opener) SetFailList(fail bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failList = fail
}

// SetBlockOpen makes Open wait for ctx cancellation (for testing timeouts).
func (o *Opener) SetBlockOpen(block bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.blockOpen = block
}

// SetDevices sets what ListDevices returns.
func (o *Opener) SetDevices(devices []domain.DeviceInfo) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.devices = append([]domain.DeviceInfo(nil), devices...)
}

// Open returns a new mock source for request.
func (o *Opener) Open(ctx context.Context, request domain.SourceRequest) (ports.SpectrumSource, error) {
	o.mu.Lock()
	failErr, fail := o.failOpen[request.Kind]
	block := o.blockOpen
	level := o.level
	logger := o.logger
	o.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, domain.NewSourceError("open", request.Kind, request.DeviceID, domain.Unavailable(ctx.Err()))
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.NewSourceError("open", request.Kind, request.DeviceID, domain.Unavailable(err))
	}
	if fail {
		if !errors.Is(failErr, domain.ErrSourceUnavailable) && !errors.Is(failErr, domain.ErrMalformedStream) {
			failErr = domain.Unavailable(failErr)
		}
		return nil, domain.NewSourceError("open", request.Kind, request.DeviceID, failErr)
	}

	channels := 2
	if request.Kind == domain.SourceMicrophone {
		channels = 1
	}
	src := newSource(request.Kind, fmt.Sprintf("mock %s", request), channels, level)

	o.mu.Lock()
	o.opened = append(o.opened, src)
	o.mu.Unlock()

	if logger != nil {
		logger.Debug("mock source opened", slog.String("request", request.String()))
	}
	return src, nil
}

// ListDevices returns the configured devices.
func (o *Opener) ListDevices(ctx context.Context) ([]domain.DeviceInfo, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.failList {
		return nil, domain.NewSourceError("list", domain.SourceDevice, "", domain.Unavailable(errors.New("mock list failed")))
	}
	return append([]domain.DeviceInfo(nil), o.devices...), nil
}

// Opened returns every source opened so far, in order.
func (o *Opener) Opened() []*Source {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*Source(nil), o.opened...)
}

// Source is a mock SpectrumSource.
type Source struct {
	kind     domain.SourceKind
	label    string
	channels int
	level    byte

	closed     bool
	stopped    bool
	closeCalls int
	failRead   bool
	reads      int
	done       chan struct{}
	doneOnce   sync.Once
	mu         sync.Mutex
}

// NewSource creates a standalone mock source.
func NewSource(kind domain.SourceKind, channels int, level byte) *Source {
	return newSource(kind, "mock "+string(kind), channels, level)
}

func newSource(kind domain.SourceKind, label string, channels int, level byte) *Source {
	return &Source{kind: kind, label: label, channels: channels, level: level, done: make(chan struct{})}
}

// Stop simulates the producer dying: reads fail from now on and Done is closed.
func (s *Source) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.doneOnce.Do(func() { close(s.done) })
}

// Done is closed by Stop or Close.
func (s *Source) Done() <-chan struct{} { return s.done }

// SetFailRead makes ReadFrequencyData return an error (for testing).
func (s *Source) SetFailRead(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRead = fail
}

// Kind returns the requested kind.
func (s *Source) Kind() domain.SourceKind { return s.kind }

// Label returns the mock label.
func (s *Source) Label() string { return s.label }

// Channels returns 1 for microphone sources and 2 otherwise.
func (s *Source) Channels() int { return s.channels }

// ReadFrequencyData fills the channels with the constant level.
func (s *Source) ReadFrequencyData(left, right []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrClosed
	}
	s.reads++
	if s.stopped {
		return domain.NewSourceError("read", s.kind, s.label,
			domain.Malformed(fmt.Errorf("mock producer stopped (read %d)", s.reads)))
	}
	if s.failRead {
		return domain.Malformed(errors.New("mock read failed"))
	}
	for i := range left {
		left[i] = s.level
	}
	if s.channels == 2 {
		for i := range right {
			right[i] = s.level
		}
	}
	return nil
}

// Close marks the source closed.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeCalls++
	s.closed = true
	s.doneOnce.Do(func() { close(s.done) })
	return nil
}

// Closed reports whether Close was called.
func (s *Source) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// CloseCalls returns how many times Close was called.
func (s *Source) CloseCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCalls
}

// Ensure interfaces are satisfied
var (
	_ ports.SourceOpener   = (*Opener)(nil)
	_ ports.DeviceLister   = (*Opener)(nil)
	_ ports.SpectrumSource = (*Source)(nil)
	_ ports.EndingSource   = (*Source)(nil)
)
