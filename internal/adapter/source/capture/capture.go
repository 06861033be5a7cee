// Package capture implements live audio sources backed by an ffmpeg subprocess.
// ffmpeg reads the platform capture API (pulse, avfoundation or dshow) and
// writes signed 16-bit little-endian PCM to stdout, which is analysed as it arrives.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tejashwikalptaru/gospectrum/internal/audio"
	"github.com/tejashwikalptaru/gospectrum/internal/config"
	"github.com/tejashwikalptaru/gospectrum/internal/domain"
	"github.com/tejashwikalptaru/gospectrum/internal/ports"
)

// DefaultStartTimeout bounds how long Open waits for the first PCM chunk.
const DefaultStartTimeout = 5 * time.Second

const readChunk = 4096

var errFFmpegNotFound = errors.New("ffmpeg not found (required for live capture)")

type commandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// Opener starts capture sources for the system, microphone and device kinds.
type Opener struct {
	// Dependencies
	logger *slog.Logger

	// Configuration
	ffmpeg       string
	sampleRate   int
	stream       audio.StreamConfig
	startTimeout time.Duration
	goos         string

	// Test seams
	command  commandFunc
	lookPath func(string) (string, error)
	runList  func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewOpener creates a capture opener from the source and pipeline settings.
func NewOpener(src config.Source, vis config.Visualizer) *Opener {
	ffmpeg := src.FFmpegPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	rate := src.SampleRate
	if rate <= 0 {
		rate = 44100
	}
	return &Opener{
		logger:     slog.Default().With(slog.String("component", "capture")),
		ffmpeg:     ffmpeg,
		sampleRate: rate,
		stream: audio.StreamConfig{
			FFTSize:     vis.FFTSize,
			Smoothing:   vis.AnalyzerSmoothing,
			MinDecibels: vis.MinDecibels,
			MaxDecibels: vis.MaxDecibels,
		},
		startTimeout: DefaultStartTimeout,
		goos:         runtime.GOOS,
		command:      exec.CommandContext,
		lookPath:     exec.LookPath,
		runList:      combinedOutput,
	}
}

// SetLogger sets the logger for this opener.
func (o *Opener) SetLogger(logger *slog.Logger) {
	o.logger = logger.With(slog.String("component", "capture"))
}

// SetStartTimeout overrides DefaultStartTimeout.
func (o *Opener) SetStartTimeout(d time.Duration) {
	o.startTimeout = d
}

// Open starts ffmpeg for request and blocks until the first PCM chunk arrives.
func (o *Opener) Open(ctx context.Context, request domain.SourceRequest) (ports.SpectrumSource, error) {
	fail := func(err error) error {
		return domain.NewSourceError("open", request.Kind, request.DeviceID, err)
	}

	channels, err := channelsFor(request.Kind)
	if err != nil {
		return nil, fail(err)
	}

	bin, err := o.lookPath(o.ffmpeg)
	if err != nil {
		return nil, fail(domain.Unavailable(errFFmpegNotFound))
	}

	device := request.DeviceID
	if device == "" {
		device, err = o.defaultDevice(ctx, bin, request.Kind)
		if err != nil {
			return nil, fail(err)
		}
	}
	input, err := inputArgs(o.goos, device)
	if err != nil {
		return nil, fail(domain.Unavailable(err))
	}

	args := []string{"-hide_banner", "-loglevel", "error", "-nostdin"}
	args = append(args, input...)
	args = append(args,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(o.sampleRate),
		"-ac", strconv.Itoa(channels),
		"pipe:1",
	)

	procCtx, cancel := context.WithCancel(context.Background())
	cmd := o.command(procCtx, bin, args...)
	cmd.Stdin = nil
	stderr := &tailBuffer{max: 2048}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fail(domain.Unavailable(fmt.Errorf("setting up ffmpeg stdout: %w", err)))
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fail(domain.Unavailable(fmt.Errorf("starting ffmpeg: %w", err)))
	}

	cfg := o.stream
	cfg.Channels = channels
	src := &Source{
		kind:     request.Kind,
		label:    device,
		channels: channels,
		stream:   audio.NewStream(cfg),
		cmd:      cmd,
		cancel:   cancel,
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
		logger:   o.logger.With(slog.String("device", device)),
	}
	go src.pump(stdout)

	timer := time.NewTimer(o.startTimeout)
	defer timer.Stop()

	select {
	case <-src.ready:
		src.logger.Info("capture started", slog.Int("channels", channels), slog.Int("sample_rate", o.sampleRate))
		return src, nil
	case <-src.done:
		_ = src.Close()
		if src.exitErr != nil {
			return nil, fail(domain.Unavailable(describeExit(src.exitErr, stderr)))
		}
		return nil, fail(domain.Malformed(errors.New("ffmpeg produced no audio")))
	case <-timer.C:
		_ = src.Close()
		return nil, fail(domain.Malformed(fmt.Errorf("no audio within %s", o.startTimeout)))
	case <-ctx.Done():
		_ = src.Close()
		return nil, fail(domain.Unavailable(ctx.Err()))
	}
}

// defaultDevice resolves the device used when a request names none.
// System capture prefers the first recommended loopback device.
func (o *Opener) defaultDevice(ctx context.Context, bin string, kind domain.SourceKind) (string, error) {
	switch kind {
	case domain.SourceSystem:
		if o.goos == "linux" {
			return "@DEFAULT_MONITOR@", nil
		}
		devices, err := o.listDevices(ctx, bin)
		if err != nil {
			return "", err
		}
		for _, d := range devices {
			if d.Recommended() {
				return d.ID, nil
			}
		}
		return "", domain.Unavailable(errors.New("no loopback capture device found"))
	case domain.SourceMicrophone:
		switch o.goos {
		case "linux":
			return "@DEFAULT_SOURCE@", nil
		case "darwin":
			return "0", nil
		}
		devices, err := o.listDevices(ctx, bin)
		if err != nil {
			return "", err
		}
		for _, d := range devices {
			if d.Class == domain.DeviceMicrophone {
				return d.ID, nil
			}
		}
		if len(devices) > 0 {
			return devices[0].ID, nil
		}
		return "", domain.Unavailable(errors.New("no capture device found"))
	default:
		return "", domain.Unavailable(errors.New("device id required"))
	}
}

func channelsFor(kind domain.SourceKind) (int, error) {
	switch kind {
	case domain.SourceSystem, domain.SourceDevice:
		return 2, nil
	case domain.SourceMicrophone:
		return 1, nil
	default:
		return 0, fmt.Errorf("%w: %s is not a capture source", domain.ErrUnknownSourceKind, kind)
	}
}

// inputArgs returns the ffmpeg input options for device on goos.
func inputArgs(goos, device string) ([]string, error) {
	switch goos {
	case "linux":
		return []string{"-f", "pulse", "-i", device}, nil
	case "darwin":
		return []string{"-f", "avfoundation", "-i", ":" + device}, nil
	case "windows":
		return []string{"-f", "dshow", "-i", "audio=" + device}, nil
	default:
		return nil, fmt.Errorf("live capture is not supported on %s", goos)
	}
}

func describeExit(err error, stderr *tailBuffer) error {
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return fmt.Errorf("ffmpeg exited: %w: %s", err, msg)
	}
	return fmt.Errorf("ffmpeg exited: %w", err)
}

// Source is a running ffmpeg capture.
type Source struct {
	// Dependencies
	logger *slog.Logger
	stream *audio.Stream

	// State
	kind     domain.SourceKind
	label    string
	channels int
	exitErr  error

	// Concurrency control
	cmd       *exec.Cmd
	cancel    context.CancelFunc
	ready     chan struct{}
	readyOnce sync.Once
	done      chan struct{}
	closeOnce sync.Once
}

// pump copies ffmpeg stdout into the stream until EOF or cancellation.
func (s *Source) pump(stdout io.Reader) {
	defer close(s.done)

	tap := audio.NewTap(stdout, s.stream, s.channels)
	buf := make([]byte, readChunk)
	for {
		n, err := tap.Read(buf)
		if n > 0 {
			s.readyOnce.Do(func() { close(s.ready) })
		}
		if err != nil {
			break
		}
	}
	s.exitErr = s.cmd.Wait()
}

// Kind returns the capture kind.
func (s *Source) Kind() domain.SourceKind { return s.kind }

// Label returns the device name.
func (s *Source) Label() string { return s.label }

// Channels returns 1 for microphones and 2 otherwise.
func (s *Source) Channels() int { return s.channels }

// ReadFrequencyData analyses the latest captured samples.
// Once ffmpeg has exited the source reports a malformed stream.
func (s *Source) ReadFrequencyData(left, right []byte) error {
	if err := s.stream.ReadFrequencyData(left, right); err != nil {
		return err
	}
	select {
	case <-s.done:
		return domain.NewSourceError("read", s.kind, s.label, domain.Malformed(errors.New("capture process exited")))
	default:
		return nil
	}
}

// Done is closed when ffmpeg has exited, whether it died or was stopped.
func (s *Source) Done() <-chan struct{} { return s.done }

// Close stops ffmpeg and waits for the reader goroutine.
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		s.stream.Close()
		s.cancel()
		<-s.done
		s.logger.Debug("capture stopped")
	})
	return nil
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
	max int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.Write(p)
	if over := t.buf.Len() - t.max; over > 0 {
		t.buf.Next(over)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.String()
}

var (
	_ ports.SourceOpener   = (*Opener)(nil)
	_ ports.SpectrumSource = (*Source)(nil)
	_ ports.EndingSource   = (*Source)(nil)
)
