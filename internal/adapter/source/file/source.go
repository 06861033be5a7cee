// Package file implements the audio-file source: the file is decoded, played
// through the default output device, and every played chunk is analysed.
package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dhowden/tag"

	"github.com/tejashwikalptaru/gospectrum/internal/audio"
	"github.com/tejashwikalptaru/gospectrum/internal/config"
	"github.com/tejashwikalptaru/gospectrum/internal/domain"
	"github.com/tejashwikalptaru/gospectrum/internal/ports"
)

// Opener opens audio files for playback and analysis.
type Opener struct {
	// Dependencies
	logger    *slog.Logger
	newPlayer playerFactory

	// Configuration
	sampleRate int
	stream     audio.StreamConfig
}

// NewOpener creates a file opener playing at the configured sample rate.
func NewOpener(src config.Source, vis config.Visualizer) *Opener {
	rate := src.SampleRate
	if rate <= 0 {
		rate = 44100
	}
	return &Opener{
		logger:     slog.Default().With(slog.String("component", "file-source")),
		newPlayer:  newOtoPlayer,
		sampleRate: rate,
		stream: audio.StreamConfig{
			Channels:    2,
			FFTSize:     vis.FFTSize,
			Smoothing:   vis.AnalyzerSmoothing,
			MinDecibels: vis.MinDecibels,
			MaxDecibels: vis.MaxDecibels,
		},
	}
}

// SetLogger sets the logger for this opener.
func (o *Opener) SetLogger(logger *slog.Logger) {
	o.logger = logger.With(slog.String("component", "file-source"))
}

// Open decodes request.Path and starts playback.
// The first decoded chunk is read before playback starts; a file without any
// audio content fails with domain.ErrMalformedStream.
func (o *Opener) Open(ctx context.Context, request domain.SourceRequest) (ports.SpectrumSource, error) {
	fail := func(err error) error {
		return domain.NewSourceError("open", domain.SourceFile, request.Path, err)
	}
	if request.Kind != domain.SourceFile {
		return nil, fail(fmt.Errorf("%w: %s is not a file source", domain.ErrUnknownSourceKind, request.Kind))
	}
	if err := ctx.Err(); err != nil {
		return nil, fail(domain.Unavailable(err))
	}

	f, err := os.Open(request.Path)
	if err != nil {
		return nil, fail(domain.Unavailable(err))
	}

	label := readTitle(f, request.Path)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, fail(domain.Unavailable(err))
	}

	dec, err := newDecoder(request.Path, f)
	if err != nil {
		f.Close()
		if errors.Is(err, domain.ErrUnsupportedFormat) {
			err = domain.Unavailable(err)
		}
		return nil, fail(err)
	}

	conv := newConverter(dec, o.sampleRate)
	first := make([]byte, convertChunk)
	n, err := io.ReadAtLeast(conv, first, 4)
	if n == 0 {
		f.Close()
		if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fail(domain.Malformed(errors.New("file has no audio frames")))
		}
		return nil, fail(domain.Malformed(err))
	}

	src := &Source{
		logger: o.logger.With(slog.String("file", filepath.Base(request.Path))),
		stream: audio.NewStream(o.stream),
		label:  label,
		file:   f,
	}
	body := &eofNotifier{
		r:     io.MultiReader(bytes.NewReader(first[:n]), conv),
		onEOF: src.finish,
	}
	tap := audio.NewTap(body, src.stream, 2)

	p, err := o.newPlayer(tap, o.sampleRate)
	if err != nil {
		f.Close()
		return nil, fail(domain.Unavailable(err))
	}
	src.player = p
	p.Play()

	src.logger.Info("file playback started",
		slog.String("title", label),
		slog.Int("source_rate", dec.SampleRate()),
		slog.Int("source_channels", dec.Channels()))
	return src, nil
}

// readTitle returns the tagged title, or the file name without extension.
func readTitle(f io.ReadSeeker, path string) string {
	if metadata, err := tag.ReadFrom(f); err == nil && metadata != nil {
		if title := strings.TrimSpace(metadata.Title()); title != "" {
			if artist := strings.TrimSpace(metadata.Artist()); artist != "" {
				return artist + " - " + title
			}
			return title
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Source is a playing audio file.
type Source struct {
	// Dependencies
	logger *slog.Logger
	stream *audio.Stream
	player player
	file   *os.File

	// State
	label string

	// Concurrency control
	finishOnce sync.Once
	closeOnce  sync.Once
	closeErr   error
}

// Kind returns domain.SourceFile.
func (s *Source) Kind() domain.SourceKind { return domain.SourceFile }

// Label returns the track title.
func (s *Source) Label() string { return s.label }

// Channels returns 2.
func (s *Source) Channels() int { return 2 }

// ReadFrequencyData analyses the most recently played samples.
func (s *Source) ReadFrequencyData(left, right []byte) error {
	return s.stream.ReadFrequencyData(left, right)
}

// finish feeds silence once playback runs out so the bars fall back down.
func (s *Source) finish() {
	s.finishOnce.Do(func() {
		s.stream.WriteFloat(make([]float64, 2*s.stream.WindowSize()), 2)
		s.logger.Debug("file playback finished")
	})
}

// Close stops playback and closes the file.
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		s.stream.Close()
		var errs []error
		if s.player != nil {
			errs = append(errs, s.player.Close())
		}
		errs = append(errs, s.file.Close())
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

// eofNotifier calls onEOF the first time r reports io.EOF.
type eofNotifier struct {
	r     io.Reader
	onEOF func()
}

func (e *eofNotifier) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if errors.Is(err, io.EOF) {
		e.onEOF()
	}
	return n, err
}

var (
	_ ports.SourceOpener   = (*Opener)(nil)
	_ ports.SpectrumSource = (*Source)(nil)
)
