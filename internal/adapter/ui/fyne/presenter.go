// Package fyne provides the Fyne overlay window for the spectrum visualizer.
// This package implements the UI layer using the Fyne toolkit.
package fyne

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/gospectrum/internal/domain"
	"github.com/tejashwikalptaru/gospectrum/internal/ports"
)

// UIView defines the interface for UI updates.
// The actual UI implementation (MainWindow) must implement this interface.
type UIView interface {
	ports.StatusView

	// SetControlsVisible shows or hides the source controls overlay.
	SetControlsVisible(visible bool)

	// ShowNotification displays a system notification.
	ShowNotification(title, message string)
}

// SourceController is the part of the source service the presenter drives.
type SourceController interface {
	Start(ctx context.Context) error
	Switch(ctx context.Context, request domain.SourceRequest) error
	RefreshDevices(ctx context.Context) ([]domain.DeviceInfo, error)
	Devices() []domain.DeviceInfo
}

// Presenter implements the Presenter pattern (MVP architecture).
// It maps source events onto the view and turns button presses into source
// switches.
//
// Source switches block on process start-up and device probing, so every
// command runs on its own goroutine; the source service serialises them.
// Shutdown cancels whatever is still in flight and waits for it.
type Presenter struct {
	// Dependencies
	logger   *slog.Logger
	sources  SourceController
	settings ports.SettingsRepository
	eventBus ports.EventBus
	view     UIView

	// State
	subscriptions   []domain.SubscriptionID
	controlsVisible bool
	ctx             context.Context
	cancel          context.CancelFunc

	// Concurrency control
	mu           sync.Mutex
	inflight     sync.WaitGroup
	shutdownOnce sync.Once
}

// NewPresenter creates a new presenter and subscribes it to the event bus.
func NewPresenter(
	logger *slog.Logger,
	sources SourceController,
	settings ports.SettingsRepository,
	eventBus ports.EventBus,
	view UIView,
) *Presenter {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Presenter{
		logger:          logger,
		sources:         sources,
		settings:        settings,
		eventBus:        eventBus,
		view:            view,
		controlsVisible: true,
		ctx:             ctx,
		cancel:          cancel,
	}

	p.subscribeToEvents()
	return p
}

// subscribeToEvents subscribes to all relevant events from the event bus.
func (p *Presenter) subscribeToEvents() {
	subscriptions := map[domain.EventType]domain.EventHandler{
		// Source events
		domain.EventSourceChanged: p.onSourceChanged,
		domain.EventSourceFailed:  p.onSourceFailed,
		domain.EventDevicesListed: p.onDevicesListed,

		// Presentation events
		domain.EventStatusChanged:    p.onStatusChanged,
		domain.EventRendererSelected: p.onRendererSelected,
	}

	for eventType, handler := range subscriptions {
		p.subscriptions = append(p.subscriptions, p.eventBus.Subscribe(eventType, handler))
	}
}

// Event handlers

func (p *Presenter) onStatusChanged(event domain.Event) {
	e, ok := event.(domain.StatusChangedEvent)
	if !ok {
		return
	}
	p.view.SetStatus(e.Message)
}

func (p *Presenter) onSourceChanged(event domain.Event) {
	e, ok := event.(domain.SourceChangedEvent)
	if !ok {
		return
	}
	if e.Fallback() {
		p.logger.Info("fell back to another source",
			slog.String("requested", string(e.Requested)),
			slog.String("active", string(e.Kind)))
	}
	p.view.SetActiveSource(e.Kind)
}

func (p *Presenter) onSourceFailed(event domain.Event) {
	e, ok := event.(domain.SourceFailedEvent)
	if !ok {
		return
	}
	p.logger.Warn("source failed",
		slog.String("request", e.Request.String()),
		slog.Any("error", e.Err))
}

func (p *Presenter) onDevicesListed(event domain.Event) {
	e, ok := event.(domain.DevicesListedEvent)
	if !ok {
		return
	}
	p.view.SetDevices(e.Devices)
}

func (p *Presenter) onRendererSelected(event domain.Event) {
	e, ok := event.(domain.RendererSelectedEvent)
	if !ok {
		return
	}
	if e.Reason != "" {
		p.logger.Info("render backend selected",
			slog.String("backend", e.Backend),
			slog.String("reason", e.Reason))
	}
	p.view.SetRenderer(e.Backend)
}

// Commands

// Start shows the controls and starts the remembered source in the background.
func (p *Presenter) Start() {
	p.mu.Lock()
	p.controlsVisible = true
	p.mu.Unlock()
	p.view.SetControlsVisible(true)

	p.run("start", p.sources.Start)
}

// ControlsPinned reports whether the controls should stay open instead of
// hiding after start-up.
func (p *Presenter) ControlsPinned() bool {
	pinned, err := p.settings.LoadControlsVisible()
	if err != nil {
		return false
	}
	return pinned
}

// OnSystemClicked switches to system audio.
func (p *Presenter) OnSystemClicked() {
	p.switchTo(domain.SourceRequest{Kind: domain.SourceSystem})
}

// OnMicrophoneClicked switches to the default microphone.
func (p *Presenter) OnMicrophoneClicked() {
	p.switchTo(domain.SourceRequest{Kind: domain.SourceMicrophone})
}

// OnDemoClicked switches to the demo signal.
func (p *Presenter) OnDemoClicked() {
	p.switchTo(domain.SourceRequest{Kind: domain.SourceDemo})
}

// OnDeviceSelected switches to a specific capture device.
func (p *Presenter) OnDeviceSelected(deviceID string) {
	if deviceID == "" {
		return
	}
	p.switchTo(domain.SourceRequest{Kind: domain.SourceDevice, DeviceID: deviceID})
}

// OnFileOpened plays an audio file.
func (p *Presenter) OnFileOpened(filePath string) {
	if filePath == "" {
		return
	}
	p.switchTo(domain.SourceRequest{Kind: domain.SourceFile, Path: filePath})
}

// OnRefreshDevices enumerates capture devices again.
func (p *Presenter) OnRefreshDevices() {
	p.run("refresh devices", func(ctx context.Context) error {
		_, err := p.sources.RefreshDevices(ctx)
		return err
	})
}

// Devices returns the last enumerated capture devices.
func (p *Presenter) Devices() []domain.DeviceInfo {
	return p.sources.Devices()
}

// OnControlsToggled flips the controls overlay and remembers the choice.
// Returns the new visibility.
func (p *Presenter) OnControlsToggled() bool {
	p.mu.Lock()
	p.controlsVisible = !p.controlsVisible
	visible := p.controlsVisible
	p.mu.Unlock()

	p.view.SetControlsVisible(visible)
	if err := p.settings.SaveControlsVisible(visible); err != nil {
		p.logger.Warn("failed to save controls state", slog.Any("error", err))
	}
	return visible
}

// OnControlsTimedOut hides the controls after the start-up grace period.
// The choice is not remembered.
func (p *Presenter) OnControlsTimedOut() {
	p.mu.Lock()
	p.controlsVisible = false
	p.mu.Unlock()
	p.view.SetControlsVisible(false)
}

// ControlsVisible reports the current overlay state.
func (p *Presenter) ControlsVisible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.controlsVisible
}

func (p *Presenter) switchTo(request domain.SourceRequest) {
	p.run("switch to "+request.String(), func(ctx context.Context) error {
		return p.sources.Switch(ctx, request)
	})
}

// run executes a blocking command off the UI goroutine.
func (p *Presenter) run(name string, command func(ctx context.Context) error) {
	p.mu.Lock()
	if p.ctx.Err() != nil {
		p.mu.Unlock()
		return
	}
	p.inflight.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.inflight.Done()
		if err := command(p.ctx); err != nil {
			if p.ctx.Err() != nil {
				return
			}
			p.logger.Error("command failed", slog.String("command", name), slog.Any("error", err))
			p.view.ShowNotification("Audio source", err.Error())
		}
	}()
}

// wait blocks until every in-flight command has returned.
func (p *Presenter) wait() {
	p.inflight.Wait()
}

// Shutdown cancels in-flight commands, waits for them and unsubscribes.
// It's safe to call multiple times (idempotent).
func (p *Presenter) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.cancel()
		p.mu.Unlock()

		p.inflight.Wait()

		for _, id := range p.subscriptions {
			p.eventBus.Unsubscribe(id)
		}
		p.subscriptions = nil
	})
}
