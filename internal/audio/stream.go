package audio

import (
	"encoding/binary"
	"sync"

	"github.com/tejashwikalptaru/gospectrum/internal/domain"
	"github.com/tejashwikalptaru/gospectrum/internal/spectrum"
)

// Stream buffers live PCM per channel and analyses it on demand.
// Producers call Write*, the frame callback calls ReadFrequencyData.
type Stream struct {
	channels  int
	buffers   [2]*RingBuffer
	analyzers [2]*spectrum.Analyzer
	window    []float64

	closed bool
	mu     sync.Mutex
}

// StreamConfig sizes a Stream.
type StreamConfig struct {
	Channels    int // 1 or 2
	FFTSize     int
	Smoothing   float64
	MinDecibels float64
	MaxDecibels float64
}

// NewStream creates a stream. Channels outside 1..2 are clamped.
func NewStream(cfg StreamConfig) *Stream {
	channels := min(max(cfg.Channels, 1), 2)
	s := &Stream{
		channels: channels,
		window:   make([]float64, cfg.FFTSize),
	}
	for ch := 0; ch < channels; ch++ {
		s.buffers[ch] = NewRingBuffer(cfg.FFTSize * 2)
		s.analyzers[ch] = spectrum.NewAnalyzer(cfg.FFTSize, cfg.Smoothing, cfg.MinDecibels, cfg.MaxDecibels)
	}
	return s
}

// Channels returns the channel count.
func (s *Stream) Channels() int {
	return s.channels
}

// WindowSize returns how many frames one analysis consumes.
func (s *Stream) WindowSize() int {
	return len(s.window)
}

// WriteFloat appends interleaved samples in [-1, 1]. srcChannels is the
// interleave width; channels beyond the stream's are dropped.
func (s *Stream) WriteFloat(samples []float64, srcChannels int) {
	if srcChannels <= 0 {
		return
	}
	frames := len(samples) / srcChannels
	for ch := 0; ch < s.channels; ch++ {
		src := min(ch, srcChannels-1)
		plane := make([]float64, frames)
		for i := range plane {
			plane[i] = samples[i*srcChannels+src]
		}
		s.buffers[ch].Write(plane)
	}
}

// WriteS16LE appends interleaved signed 16-bit little-endian PCM.
// A trailing partial frame is ignored.
func (s *Stream) WriteS16LE(p []byte, srcChannels int) {
	if srcChannels <= 0 {
		return
	}
	count := len(p) / 2
	count -= count % srcChannels
	samples := make([]float64, count)
	for i := range samples {
		samples[i] = float64(int16(binary.LittleEndian.Uint16(p[i*2:]))) / 32768
	}
	s.WriteFloat(samples, srcChannels)
}

// ReadFrequencyData analyses the latest samples of each channel.
// For a mono stream right is left untouched.
func (s *Stream) ReadFrequencyData(left, right []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrClosed
	}

	out := [2][]byte{left, right}
	for ch := 0; ch < s.channels; ch++ {
		clear(s.window)
		s.buffers[ch].Latest(s.window)
		s.analyzers[ch].ByteFrequencyData(s.window, out[ch])
	}
	return nil
}

// Close marks the stream closed; later reads fail with domain.ErrClosed.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
