// Package ports define the interfaces between the spectrum pipeline and its adapters.
// Sources, render surfaces, persistence and presentation are all reached through these.
package ports

import (
	"context"

	"github.com/tejashwikalptaru/gospectrum/internal/domain"
)

// SpectrumSource is an active audio source that yields byte magnitudes per
// frequency bin, one array per channel.
//
// Thread-safety: ReadFrequencyData is called from the frame callback while the
// source's producer goroutine may be writing samples. Implementations must
// synchronise internally.
type SpectrumSource interface {
	// Kind returns which kind of source this is.
	Kind() domain.SourceKind

	// Label returns a human readable name (device label, file title, "Demo").
	Label() string

	// Channels returns 1 for mono sources and 2 for stereo ones.
	Channels() int

	// ReadFrequencyData fills left and right with the current magnitudes.
	// Mono sources leave right untouched; the caller mirrors left into it.
	// Returns domain.ErrClosed after Close.
	ReadFrequencyData(left, right []byte) error

	// Close stops the producer and releases every resource the source holds.
	// It blocks until the producer has exited. Calling Close twice is a no-op.
	Close() error
}

// EndingSource is implemented by sources whose producer can stop on its own,
// such as a capture process that exits. Done is closed once the producer has
// exited for any reason, Close included.
type EndingSource interface {
	Done() <-chan struct{}
}

// SourceOpener acquires sources. Open blocks until the source produces data or
// fails, and honours ctx cancellation.
//
// Failures are *domain.SourceError values wrapping domain.ErrSourceUnavailable
// (could not acquire) or domain.ErrMalformedStream (acquired but no audio).
type SourceOpener interface {
	Open(ctx context.Context, request domain.SourceRequest) (SpectrumSource, error)
}

// DeviceLister enumerates capture devices.
type DeviceLister interface {
	ListDevices(ctx context.Context) ([]domain.DeviceInfo, error)
}

// SourceProvider hands the frame callback whatever source is current.
// A nil result means no live source; the renderer then uses the demo signal.
type SourceProvider interface {
	Current() SpectrumSource
}
