// Package service provides the application logic of the spectrum visualizer.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/tejashwikalptaru/gospectrum/internal/domain"
	"github.com/tejashwikalptaru/gospectrum/internal/ports"
)

// SourceService owns the active audio source. It stops the old source before
// opening a new one, walks the system -> microphone -> demo fallback chain,
// and reports progress as status events.
//
// Thread-safety: Switch calls are serialised; Current may be called from the
// frame callback at any time.
type SourceService struct {
	// Dependencies (injected)
	logger   *slog.Logger
	opener   ports.SourceOpener
	lister   ports.DeviceLister
	settings ports.SettingsRepository
	bus      ports.EventBus

	// State
	fallback domain.SourceRequest
	current  ports.SpectrumSource
	devices  []domain.DeviceInfo
	closed   bool

	// Concurrency control
	mu       sync.RWMutex   // guards fallback, current, devices, closed
	switchMu sync.Mutex     // serialises Switch, Shutdown and recovery
	watchers sync.WaitGroup // one per active source that can end on its own
}

// NewSourceService creates a source service. lister and settings may be nil.
func NewSourceService(
	logger *slog.Logger,
	opener ports.SourceOpener,
	lister ports.DeviceLister,
	settings ports.SettingsRepository,
	bus ports.EventBus,
) *SourceService {
	service := &SourceService{
		logger:   logger.With(slog.String("component", "source-service")),
		opener:   opener,
		lister:   lister,
		settings: settings,
		bus:      bus,
		fallback: domain.SourceRequest{Kind: domain.SourceSystem},
	}

	service.logger.Debug("source service initialized")

	return service
}

// Current returns the active source, or nil when none is running.
func (s *SourceService) Current() ports.SpectrumSource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// ActiveKind returns the kind of the active source, or "" when none.
func (s *SourceService) ActiveKind() domain.SourceKind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Kind()
}

// Devices returns the devices found by the last RefreshDevices.
func (s *SourceService) Devices() []domain.DeviceInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.DeviceInfo(nil), s.devices...)
}

// SetStartRequest sets the source Start opens when nothing was remembered.
func (s *SourceService) SetStartRequest(request domain.SourceRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = request
}

// Start lists devices and opens the remembered source, or the start request
// (system audio unless changed) when nothing was remembered.
func (s *SourceService) Start(ctx context.Context) error {
	s.status("Searching audio devices...")
	if _, err := s.RefreshDevices(ctx); err != nil {
		s.logger.Warn("device listing failed", slog.Any("error", err))
	}
	s.status("Ready - choose an audio source")

	s.mu.RLock()
	request := s.fallback
	s.mu.RUnlock()
	if s.settings != nil {
		saved, ok, err := s.settings.LoadLastSource()
		switch {
		case err != nil:
			s.logger.Warn("failed to load last source", slog.Any("error", err))
		case ok:
			request = saved
		}
	}

	s.logger.Info("starting source", slog.String("request", request.String()))
	return s.Switch(ctx, request)
}

// RefreshDevices re-enumerates capture devices and publishes the result.
func (s *SourceService) RefreshDevices(ctx context.Context) ([]domain.DeviceInfo, error) {
	if s.lister == nil {
		return nil, nil
	}

	devices, err := s.lister.ListDevices(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.devices = append([]domain.DeviceInfo(nil), devices...)
	s.mu.Unlock()

	s.bus.Publish(domain.NewDevicesListedEvent(devices))

	recommended := 0
	for _, d := range devices {
		if d.Recommended() {
			recommended++
		}
	}
	s.logger.Debug("devices refreshed", slog.Int("count", len(devices)), slog.Int("recommended", recommended))
	if len(devices) > 0 && recommended == 0 {
		s.status("⚠️ No loopback device found - system audio may be unavailable")
	}

	return devices, nil
}

// Switch stops the current source and opens request. A failed system request
// falls back to the microphone; any remaining failure falls back to the demo
// source. The returned error is nil whenever some source ends up active.
func (s *SourceService) Switch(ctx context.Context, request domain.SourceRequest) error {
	s.switchMu.Lock()
	defer s.switchMu.Unlock()

	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return domain.ErrClosed
	}

	s.stopCurrent()

	src, err := s.open(ctx, request)
	if err == nil {
		s.activate(src, request, request.Kind)
		return nil
	}

	if request.Kind == domain.SourceSystem {
		s.status("❌ System audio failed - trying microphone...")
		mic := domain.SourceRequest{Kind: domain.SourceMicrophone}
		src, err = s.open(ctx, mic)
		if err == nil {
			s.activate(src, mic, request.Kind)
			return nil
		}
	}

	demo := domain.SourceRequest{Kind: domain.SourceDemo}
	src, demoErr := s.opener.Open(ctx, demo)
	if demoErr != nil {
		s.bus.Publish(domain.NewSourceFailedEvent(demo, demoErr))
		return domain.NewServiceError("source", "switch", "no source could be started", errors.Join(err, demoErr))
	}
	s.activate(src, demo, request.Kind)
	return nil
}

// open tries one request and publishes its failure.
func (s *SourceService) open(ctx context.Context, request domain.SourceRequest) (ports.SpectrumSource, error) {
	if request.Kind == domain.SourceDemo {
		return s.opener.Open(ctx, request)
	}

	s.status(connectingMessage(request))
	src, err := s.opener.Open(ctx, request)
	if err != nil {
		s.logger.Warn("source failed",
			slog.String("request", request.String()),
			slog.Bool("unavailable", errors.Is(err, domain.ErrSourceUnavailable)),
			slog.Bool("malformed", errors.Is(err, domain.ErrMalformedStream)),
			slog.Any("error", err))
		s.bus.Publish(domain.NewSourceFailedEvent(request, err))
		s.status(failedMessage(request))
		return nil, err
	}
	return src, nil
}

// activate installs src as the current source and announces it.
func (s *SourceService) activate(src ports.SpectrumSource, request domain.SourceRequest, requested domain.SourceKind) {
	s.mu.Lock()
	s.current = src
	s.mu.Unlock()

	s.logger.Info("source active",
		slog.String("kind", string(src.Kind())),
		slog.String("label", src.Label()),
		slog.Int("channels", src.Channels()),
		slog.String("requested", string(requested)))

	s.status(activeMessage(src))
	s.bus.Publish(domain.NewSourceChangedEvent(src.Kind(), src.Label(), requested))
	s.watch(src)

	if s.settings == nil || request.Kind != requested {
		return
	}
	switch request.Kind {
	case domain.SourceSystem, domain.SourceMicrophone, domain.SourceDevice:
		if err := s.settings.SaveLastSource(request); err != nil {
			s.logger.Warn("failed to save last source", slog.Any("error", err))
		}
	}
}

// watch recovers from src ending on its own. Deliberate stops close Done
// too; recover tells them apart because src is no longer current by then.
func (s *SourceService) watch(src ports.SpectrumSource) {
	ending, ok := src.(ports.EndingSource)
	if !ok {
		return
	}
	s.watchers.Add(1)
	go func() {
		defer s.watchers.Done()
		<-ending.Done()
		s.recover(src)
	}()
}

// recover replaces a source that died mid-stream with the demo source.
func (s *SourceService) recover(src ports.SpectrumSource) {
	s.switchMu.Lock()
	defer s.switchMu.Unlock()

	s.mu.RLock()
	current, closed := s.current, s.closed
	s.mu.RUnlock()
	if closed || current != src {
		return
	}

	err := domain.NewSourceError("read", src.Kind(), src.Label(), domain.Malformed(errors.New("source stopped producing audio")))
	s.logger.Warn("source ended, switching to demo",
		slog.String("kind", string(src.Kind())),
		slog.String("label", src.Label()))
	s.bus.Publish(domain.NewSourceFailedEvent(domain.SourceRequest{Kind: src.Kind()}, err))
	s.status(fmt.Sprintf("❌ %s stopped", src.Label()))

	s.stopCurrent()

	demo := domain.SourceRequest{Kind: domain.SourceDemo}
	next, demoErr := s.opener.Open(context.Background(), demo)
	if demoErr != nil {
		s.logger.Error("demo source failed", slog.Any("error", demoErr))
		s.bus.Publish(domain.NewSourceFailedEvent(demo, demoErr))
		return
	}
	s.activate(next, demo, src.Kind())
}

// stopCurrent closes the active source, waiting for its producer to exit.
func (s *SourceService) stopCurrent() {
	s.mu.Lock()
	src := s.current
	s.current = nil
	s.mu.Unlock()

	if src == nil {
		return
	}
	if err := src.Close(); err != nil {
		s.logger.Warn("failed to close source", slog.String("kind", string(src.Kind())), slog.Any("error", err))
	}
	s.bus.Publish(domain.NewSourceStoppedEvent(src.Kind()))
}

// Shutdown stops the active source. Later Switch calls fail with domain.ErrClosed.
func (s *SourceService) Shutdown() {
	s.switchMu.Lock()
	s.stopCurrent()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.switchMu.Unlock()

	// Watchers need switchMu to notice the shutdown.
	s.watchers.Wait()

	s.logger.Debug("source service shut down")
}

func (s *SourceService) status(message string) {
	s.bus.Publish(domain.NewStatusChangedEvent(message))
}

func connectingMessage(r domain.SourceRequest) string {
	switch r.Kind {
	case domain.SourceSystem:
		return "Connecting to system audio..."
	case domain.SourceMicrophone:
		return "Connecting to microphone..."
	case domain.SourceFile:
		return fmt.Sprintf("Opening %s...", filepath.Base(r.Path))
	default:
		return fmt.Sprintf("Connecting to %s...", r.DeviceID)
	}
}

func failedMessage(r domain.SourceRequest) string {
	switch r.Kind {
	case domain.SourceSystem:
		return "❌ System audio failed"
	case domain.SourceMicrophone:
		return "❌ Microphone failed"
	case domain.SourceFile:
		return fmt.Sprintf("❌ Could not play %s", filepath.Base(r.Path))
	default:
		return fmt.Sprintf("❌ %s failed", r.DeviceID)
	}
}

func activeMessage(src ports.SpectrumSource) string {
	switch src.Kind() {
	case domain.SourceSystem:
		return fmt.Sprintf("🔊 %s active", src.Label())
	case domain.SourceMicrophone:
		return "🎤 Microphone active"
	case domain.SourceFile:
		return fmt.Sprintf("🎵 Playing %s", src.Label())
	case domain.SourceDemo:
		return "✨ Demo mode"
	default:
		return fmt.Sprintf("%s active", src.Label())
	}
}

var _ ports.SourceProvider = (*SourceService)(nil)
