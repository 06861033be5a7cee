// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/tejashwikalptaru/gospectrum/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/gospectrum/internal/adapter/render"
	"github.com/tejashwikalptaru/gospectrum/internal/adapter/repository/memory"
	"github.com/tejashwikalptaru/gospectrum/internal/adapter/source"
	"github.com/tejashwikalptaru/gospectrum/internal/adapter/source/mock"
	fyneui "github.com/tejashwikalptaru/gospectrum/internal/adapter/ui/fyne"
	"github.com/tejashwikalptaru/gospectrum/internal/config"
	"github.com/tejashwikalptaru/gospectrum/internal/domain"
	"github.com/tejashwikalptaru/gospectrum/internal/logger"
	"github.com/tejashwikalptaru/gospectrum/internal/ports"
	"github.com/tejashwikalptaru/gospectrum/internal/service"
	"github.com/tejashwikalptaru/gospectrum/internal/spectrum"
)

// mockLevel is the byte value the mock sources report in every bin.
const mockLevel = 160

// Application is the root application structure that holds all dependencies.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for the commands
type Application struct {
	// Core dependencies
	logger  *slog.Logger
	fyneApp fyne.App
	config  config.Config

	// Infrastructure
	eventBus *eventbus.SyncEventBus
	settings ports.SettingsRepository

	// Services
	sourceService *service.SourceService
	renderer      *spectrum.Renderer

	// UI
	presenter  *fyneui.Presenter
	mainWindow *fyneui.MainWindow
	driver     *fyneui.FrameDriver

	shutdownOnce sync.Once
}

// Config holds application configuration.
type Config struct {
	// AppID is the unique application identifier
	AppID string

	// AppName is the display name
	AppName string

	// Spectrum is the loaded configuration document
	Spectrum config.Config

	// UseMockSources replaces ffmpeg capture and file playback with mock
	// sources (for testing)
	UseMockSources bool

	// TestFyneApp allows injecting a test Fyne app for testing (nil for production)
	TestFyneApp fyne.App
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	return Config{
		AppID:    "com.gospectrum.app",
		AppName:  "gospectrum",
		Spectrum: config.Default(),
	}
}

// NewLogger builds the process logger. Values from the [log] table win over
// the GOSPECTRUM_LOG_* environment. out may be nil for stderr.
func NewLogger(cfg config.Log, out io.Writer) *slog.Logger {
	loggerCfg := logger.DefaultConfig()
	if cfg.Level != "" {
		loggerCfg.Level = logger.ParseLevel(cfg.Level, loggerCfg.Level)
	}
	if cfg.Format != "" {
		loggerCfg.Format = cfg.Format
	}
	loggerCfg.Output = out
	return logger.NewLogger(loggerCfg)
}

// NewSourceService wires the source router (or mock sources) into a source
// service that starts from the configured [source] when nothing was
// remembered. settings may be nil.
func NewSourceService(cfg *config.Config, log *slog.Logger, bus ports.EventBus, settings ports.SettingsRepository, useMock bool) (*service.SourceService, error) {
	start, err := cfg.Source.Request()
	if err != nil {
		return nil, fmt.Errorf("invalid start source: %w", err)
	}

	var (
		opener ports.SourceOpener
		lister ports.DeviceLister
	)
	if useMock {
		m := mock.NewOpener(mockLevel)
		m.SetLogger(log.With(slog.String("opener", "mock")))
		opener, lister = m, m
	} else {
		router := source.NewDefaultRouter(cfg, log.With(slog.String("component", "sources")))
		opener, lister = router, router
	}

	sources := service.NewSourceService(log, opener, lister, settings, bus)
	sources.SetStartRequest(start)
	return sources, nil
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(cfg Config) (*Application, error) {
	if err := cfg.Spectrum.Validate(); err != nil {
		return nil, err
	}

	app := &Application{config: cfg.Spectrum}

	// Step 1: Create Fyne application
	if cfg.TestFyneApp != nil {
		app.fyneApp = cfg.TestFyneApp
	} else {
		app.fyneApp = fyneapp.NewWithID(cfg.AppID)
	}

	// Step 2: Create logger
	app.logger = NewLogger(cfg.Spectrum.Log, nil)
	app.logger.Info("initializing application",
		slog.String("app_id", cfg.AppID),
		slog.String("app_name", cfg.AppName),
		slog.String("version", GetVersionInfo().FullString()))

	// Step 3: Create an event bus
	app.eventBus = eventbus.NewSyncEventBus()
	app.eventBus.SetLogger(app.logger.With(slog.String("component", "eventbus")))

	// Step 4: Create repositories
	app.settings = memory.NewSettingsRepository(app.fyneApp.Preferences())

	// Step 5: Create the source service
	sources, err := NewSourceService(&app.config, app.logger, app.eventBus, app.settings, cfg.UseMockSources)
	if err != nil {
		return nil, err
	}
	app.sourceService = sources

	// Step 6: Create the window, which owns both render surfaces
	app.mainWindow = fyneui.NewMainWindow(app.fyneApp, app.config.Window, app.logger.With(slog.String("component", "window")))

	// Step 7: Pick a render backend
	sel, err := render.Select(domain.RendererKind(app.config.Window.Renderer), app.mainWindow.GPUBackend, app.mainWindow.RasterBackend)
	if err != nil {
		app.mainWindow.Close()
		return nil, fmt.Errorf("no render backend: %w", err)
	}
	app.logger.Info("render backend selected",
		slog.String("backend", sel.Backend.Name()),
		slog.String("reason", sel.Reason))

	// Step 8: Create the frame pipeline and its driver
	app.renderer = spectrum.NewRenderer(app.config.Visualizer, sel.Backend, app.sourceService)
	app.renderer.SetLogger(app.logger)

	app.driver = fyneui.NewFrameDriver(app.renderer.AdvanceFrame, app.config.Window.FPS)
	app.driver.SetLogger(app.logger)

	// Step 9: Create Presenter and wire with UI
	app.presenter = fyneui.NewPresenter(
		app.logger.With(slog.String("component", "presenter")),
		app.sourceService,
		app.settings,
		app.eventBus,
		app.mainWindow,
	)
	app.mainWindow.SetPresenter(app.presenter)
	app.mainWindow.SetFrameDriver(app.driver)

	// The presenter is subscribed now, so the label picks this up.
	app.eventBus.Publish(domain.NewRendererSelectedEvent(sel.Backend.Name(), sel.Reason))

	return app, nil
}

// Run shows the window and blocks until it is closed.
func (a *Application) Run() error {
	a.logger.Info("gospectrum started")
	a.mainWindow.ShowAndRun()
	return nil
}

// Shutdown stops the frame loop, the active source and the event bus.
// It is safe to call more than once.
func (a *Application) Shutdown() error {
	var err error
	a.shutdownOnce.Do(func() {
		a.logger.Info("shutting down application")

		if a.presenter != nil {
			a.presenter.Shutdown()
		}
		if a.driver != nil {
			a.driver.Stop()
		}
		if a.mainWindow != nil {
			a.mainWindow.Close()
		}
		if a.sourceService != nil {
			a.sourceService.Shutdown()
		}
		if a.eventBus != nil {
			err = a.eventBus.Close()
		}

		a.logger.Info("application shutdown complete")
	})
	return err
}

// GetSourceService returns the source service.
func (a *Application) GetSourceService() *service.SourceService {
	return a.sourceService
}

// GetRenderer returns the frame pipeline.
func (a *Application) GetRenderer() *spectrum.Renderer {
	return a.renderer
}

// GetEventBus returns the event bus.
func (a *Application) GetEventBus() ports.EventBus {
	return a.eventBus
}

// GetFyneApp returns the Fyne application.
func (a *Application) GetFyneApp() fyne.App {
	return a.fyneApp
}

// GetMainWindow returns the main window.
func (a *Application) GetMainWindow() *fyneui.MainWindow {
	return a.mainWindow
}
