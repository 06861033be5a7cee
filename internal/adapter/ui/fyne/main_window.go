package fyne

import (
	"fmt"
	"image/color"
	"log/slog"
	"sync"
	"time"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/gospectrum/internal/adapter/render/batch"
	"github.com/tejashwikalptaru/gospectrum/internal/adapter/render/raster"
	"github.com/tejashwikalptaru/gospectrum/internal/adapter/source/file"
	"github.com/tejashwikalptaru/gospectrum/internal/adapter/ui/fyne/widgets"
	"github.com/tejashwikalptaru/gospectrum/internal/config"
	"github.com/tejashwikalptaru/gospectrum/internal/domain"
	"github.com/tejashwikalptaru/gospectrum/internal/ports"
	"github.com/tejashwikalptaru/gospectrum/res"
)

// APPNAME is the window title.
const APPNAME = "gospectrum"

// ControlsAutoHide is how long the controls stay up after start-up.
const ControlsAutoHide = 5 * time.Second

// MainWindow is the overlay window implementing the UIView interface.
// The spectrum fills the window over a black background (chroma-key it in
// the streaming software); the source controls float on top and hide
// themselves after start-up.
//
// The MainWindow follows the MVP pattern:
// - It's a "dumb view" that just displays data
// - All source logic is in the Presenter
// - User interactions are forwarded to the Presenter
type MainWindow struct {
	app    fyneapp.App
	window fyneapp.Window
	logger *slog.Logger

	// UI components
	systemButton  *widget.Button
	micButton     *widget.Button
	demoButton    *widget.Button
	fileButton    *widget.Button
	devicesButton *widget.Button
	toggleButton  *widget.Button
	statusLabel   *widget.Label
	rendererLabel *widget.Label
	controls      *fyneapp.Container
	surfaceHolder *fyneapp.Container
	stage         *widgets.TappableStack

	// State
	driver       *FrameDriver
	deviceWindow *DeviceWindow
	autoHide     time.Duration
	hideTimer    *time.Timer
	hidePending  bool

	// Lifecycle management
	closeOnce sync.Once
	mu        sync.Mutex

	// Presenter (set after construction)
	presenter *Presenter
}

// NewMainWindow creates the overlay window sized from cfg.
func NewMainWindow(app fyneapp.App, cfg config.Window, logger *slog.Logger) *MainWindow {
	w := &MainWindow{
		app:      app,
		logger:   logger,
		autoHide: ControlsAutoHide,
	}

	w.window = app.NewWindow(APPNAME)
	w.buildUI()

	w.window.Resize(fyneapp.NewSize(float32(cfg.Width), float32(cfg.Height)))
	w.window.SetPadded(false)

	return w
}

// SetPresenter connects the presenter to this view.
// This must be called before showing the window.
func (w *MainWindow) SetPresenter(presenter *Presenter) {
	w.presenter = presenter
	w.wirePresenterHandlers()
	w.addShortcuts()
	w.window.SetMainMenu(fyneapp.NewMainMenu(w.createMenu()...))
}

// SetFrameDriver sets the driver started with the window.
func (w *MainWindow) SetFrameDriver(driver *FrameDriver) {
	w.driver = driver
}

// buildUI constructs the UI components.
func (w *MainWindow) buildUI() {
	// Source buttons
	w.systemButton = widget.NewButtonWithIcon("System", theme.ComputerIcon(), nil)
	w.micButton = widget.NewButtonWithIcon("Microphone", theme.MediaRecordIcon(), nil)
	w.demoButton = widget.NewButtonWithIcon("Demo", theme.MediaPlayIcon(), nil)
	w.fileButton = widget.NewButtonWithIcon("File", theme.FolderOpenIcon(), nil)
	w.devicesButton = widget.NewButtonWithIcon("Devices", theme.ListIcon(), nil)
	w.toggleButton = widget.NewButtonWithIcon("", theme.SettingsIcon(), nil)

	w.statusLabel = widget.NewLabel("")
	w.statusLabel.Truncation = fyneapp.TextTruncateEllipsis
	w.rendererLabel = widget.NewLabel("")
	w.rendererLabel.Importance = widget.LowImportance

	buttons := container.NewHBox(
		w.systemButton, w.micButton, w.demoButton,
		w.fileButton, w.devicesButton,
	)
	info := container.NewBorder(nil, nil, nil, w.rendererLabel, w.statusLabel)
	panel := canvas.NewRectangle(color.NRGBA{A: 200})
	panel.CornerRadius = 6
	w.controls = container.NewStack(panel, container.NewPadded(container.NewVBox(buttons, info)))

	top := container.NewHBox(container.NewVBox(w.toggleButton), w.controls, layout.NewSpacer())
	overlay := container.NewBorder(container.NewPadded(top), nil, nil, nil)

	// Spectrum surface goes in once a backend has been picked.
	w.surfaceHolder = container.NewStack()
	background := canvas.NewRectangle(color.Black)

	w.stage = widgets.NewTappableStack(background, w.surfaceHolder, overlay)
	w.window.SetContent(w.stage)
}

// wirePresenterHandlers connects UI events to presenter handlers.
func (w *MainWindow) wirePresenterHandlers() {
	if w.presenter == nil {
		return
	}

	w.systemButton.OnTapped = w.presenter.OnSystemClicked
	w.micButton.OnTapped = w.presenter.OnMicrophoneClicked
	w.demoButton.OnTapped = w.presenter.OnDemoClicked
	w.fileButton.OnTapped = w.handleOpenFile
	w.devicesButton.OnTapped = w.showDeviceWindow
	w.toggleButton.OnTapped = w.toggleControls

	w.stage.OnDoubleTapped = w.toggleControls
	w.stage.OnSecondaryTap = func(pe *fyneapp.PointEvent) {
		menu := fyneapp.NewMenu("", w.sourceMenuItems()...)
		widget.ShowPopUpMenuAtPosition(menu, w.window.Canvas(), pe.AbsolutePosition)
	}
	w.stage.OnMouseActivity = w.postponeHide
}

// GPUBackend mounts a vector surface and returns the batch backend drawing
// onto it. It has the render.BackendFactory signature.
func (w *MainWindow) GPUBackend() (ports.RenderBackend, error) {
	surface := widgets.NewVectorSurface()
	w.mountSurface(surface)
	return batch.New(surface.Target()), nil
}

// RasterBackend mounts a raster surface and returns the raster backend
// drawing onto it. It has the render.BackendFactory signature.
func (w *MainWindow) RasterBackend() (ports.RenderBackend, error) {
	surface := widgets.NewRasterSurface()
	w.mountSurface(surface)
	return raster.New(surface.Target()), nil
}

func (w *MainWindow) mountSurface(surface fyneapp.CanvasObject) {
	w.surfaceHolder.Objects = []fyneapp.CanvasObject{surface}
	w.surfaceHolder.Refresh()
}

// Surface returns the mounted spectrum surface, or nil before a backend was picked.
func (w *MainWindow) Surface() fyneapp.CanvasObject {
	if len(w.surfaceHolder.Objects) == 0 {
		return nil
	}
	return w.surfaceHolder.Objects[0]
}

// sourceMenuItems are shared by the main menu and the right-click menu.
func (w *MainWindow) sourceMenuItems() []*fyneapp.MenuItem {
	return []*fyneapp.MenuItem{
		fyneapp.NewMenuItem("System audio", w.presenter.OnSystemClicked),
		fyneapp.NewMenuItem("Microphone", w.presenter.OnMicrophoneClicked),
		fyneapp.NewMenuItem("Demo", w.presenter.OnDemoClicked),
		fyneapp.NewMenuItemSeparator(),
		fyneapp.NewMenuItem("Open audio file...", w.handleOpenFile),
		fyneapp.NewMenuItem("Capture devices...", w.showDeviceWindow),
		fyneapp.NewMenuItem("Refresh devices", w.presenter.OnRefreshDevices),
		fyneapp.NewMenuItemSeparator(),
		fyneapp.NewMenuItem("Toggle controls", w.toggleControls),
	}
}

// createMenu creates the application menu.
func (w *MainWindow) createMenu() []*fyneapp.Menu {
	menus := make([]*fyneapp.Menu, 0)
	menus = append(menus, fyneapp.NewMenu("Source", w.sourceMenuItems()...))
	menus = append(menus, fyneapp.NewMenu("Help",
		fyneapp.NewMenuItem("About", w.showAbout),
	))
	return menus
}

func (w *MainWindow) showAbout() {
	content := widget.NewRichTextFromMarkdown(res.AboutContent)
	content.Wrapping = fyneapp.TextWrapWord
	about := dialog.NewCustom("About "+APPNAME, "Close", content, w.window)
	about.Resize(fyneapp.NewSize(420, 320))
	about.Show()
}

// handleOpenFile handles the "Open audio file" action.
func (w *MainWindow) handleOpenFile() {
	if w.presenter == nil {
		return
	}
	fileDialog := NewFileDialog(w.window, file.SupportedExtensions, w.presenter.OnFileOpened, w.logger)
	fileDialog.Show()
}

// showDeviceWindow opens the device window, or focuses it if already open.
func (w *MainWindow) showDeviceWindow() {
	if w.presenter == nil {
		return
	}
	if w.deviceWindow != nil && w.deviceWindow.IsVisible() {
		w.deviceWindow.window.RequestFocus()
		return
	}
	w.deviceWindow = NewDeviceWindow(w.app, w.presenter, w.presenter.eventBus)
	w.deviceWindow.SetOnWindowClosed(func() {
		w.deviceWindow = nil
	})
	w.deviceWindow.Show()
}

// addShortcuts adds keyboard shortcuts.
func (w *MainWindow) addShortcuts() {
	shortcuts := map[fyneapp.KeyName]func(){
		fyneapp.KeyH: w.toggleControls,
		fyneapp.KeyO: w.handleOpenFile,
		fyneapp.KeyD: w.presenter.OnDemoClicked,
		fyneapp.KeyM: w.presenter.OnMicrophoneClicked,
		fyneapp.KeyS: w.presenter.OnSystemClicked,
		fyneapp.KeyR: w.presenter.OnRefreshDevices,
	}
	for key, action := range shortcuts {
		w.window.Canvas().AddShortcut(&desktop.CustomShortcut{
			KeyName:  key,
			Modifier: fyneapp.KeyModifierShortcutDefault,
		}, func(fyneapp.Shortcut) {
			action()
		})
	}
}

// toggleControls flips the overlay and cancels the start-up auto-hide.
func (w *MainWindow) toggleControls() {
	w.cancelHide()
	w.presenter.OnControlsToggled()
}

// scheduleHide hides the controls after the auto-hide delay.
func (w *MainWindow) scheduleHide() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.hideTimer != nil {
		w.hideTimer.Stop()
	}
	w.hidePending = true
	w.hideTimer = time.AfterFunc(w.autoHide, func() {
		w.mu.Lock()
		pending := w.hidePending
		w.hidePending = false
		w.mu.Unlock()
		if pending {
			fyneapp.Do(w.presenter.OnControlsTimedOut)
		}
	})
}

// postponeHide restarts a pending auto-hide while the mouse moves.
func (w *MainWindow) postponeHide() {
	w.mu.Lock()
	pending := w.hidePending
	w.mu.Unlock()
	if pending {
		w.scheduleHide()
	}
}

func (w *MainWindow) cancelHide() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.hideTimer != nil {
		w.hideTimer.Stop()
	}
	w.hidePending = false
}

// onStarted runs once the fyne event loop is up.
func (w *MainWindow) onStarted() {
	if w.driver != nil {
		w.driver.Start()
	}
	if w.presenter == nil {
		return
	}
	w.presenter.Start()
	if !w.presenter.ControlsPinned() {
		w.scheduleHide()
	}
}

// ShowAndRun shows the window and runs the application.
// Frames start and the remembered source opens once the event loop is up.
func (w *MainWindow) ShowAndRun() {
	w.app.Lifecycle().SetOnStarted(w.onStarted)
	w.window.SetOnClosed(w.stop)
	w.window.ShowAndRun()
}

// stop halts frames and auto-hide when the window goes away.
func (w *MainWindow) stop() {
	w.cancelHide()
	if w.driver != nil {
		w.driver.Stop()
	}
	if w.deviceWindow != nil {
		w.deviceWindow.Close()
		w.deviceWindow = nil
	}
}

// Close closes the window and stops the frame driver.
// It's safe to call multiple times (idempotent).
func (w *MainWindow) Close() {
	w.closeOnce.Do(func() {
		w.stop()
		w.window.Close()
	})
}

// GetWindow returns the underlying Fyne window.
func (w *MainWindow) GetWindow() fyneapp.Window {
	return w.window
}

// UIView interface implementation

// SetStatus shows a status line under the source buttons.
func (w *MainWindow) SetStatus(message string) {
	fyneapp.Do(func() {
		w.statusLabel.SetText(message)
	})
}

// SetActiveSource highlights the button of the active source.
func (w *MainWindow) SetActiveSource(kind domain.SourceKind) {
	fyneapp.Do(func() {
		highlight := map[domain.SourceKind]*widget.Button{
			domain.SourceSystem:     w.systemButton,
			domain.SourceMicrophone: w.micButton,
			domain.SourceDemo:       w.demoButton,
			domain.SourceFile:       w.fileButton,
			domain.SourceDevice:     w.devicesButton,
		}
		for k, b := range highlight {
			importance := widget.MediumImportance
			if k == kind {
				importance = widget.HighImportance
			}
			if b.Importance != importance {
				b.Importance = importance
				b.Refresh()
			}
		}
	})
}

// SetDevices shows how many capture devices are available.
func (w *MainWindow) SetDevices(devices []domain.DeviceInfo) {
	fyneapp.Do(func() {
		w.devicesButton.SetText(fmt.Sprintf("Devices (%d)", len(devices)))
	})
}

// SetRenderer shows which backend draws the spectrum.
func (w *MainWindow) SetRenderer(name string) {
	fyneapp.Do(func() {
		w.rendererLabel.SetText(name)
	})
}

// SetControlsVisible shows or hides the control panel. The settings
// button stays so the panel can be brought back with the mouse.
func (w *MainWindow) SetControlsVisible(visible bool) {
	fyneapp.Do(func() {
		if visible {
			w.controls.Show()
			w.toggleButton.Importance = widget.HighImportance
		} else {
			w.controls.Hide()
			w.toggleButton.Importance = widget.LowImportance
		}
		w.toggleButton.Refresh()
	})
}

// ShowNotification displays a system notification.
func (w *MainWindow) ShowNotification(title, message string) {
	w.app.SendNotification(fyneapp.NewNotification(title, message))
}

// Verify UIView implementation
var _ UIView = (*MainWindow)(nil)
