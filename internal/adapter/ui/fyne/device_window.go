package fyne

import (
	"fmt"
	"strings"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/gospectrum/internal/adapter/ui/fyne/widgets"
	"github.com/tejashwikalptaru/gospectrum/internal/domain"
	"github.com/tejashwikalptaru/gospectrum/internal/ports"
)

// DeviceWindow lists capture devices with a search filter. Double tapping a
// row switches to that device. It follows devices.listed events while open.
type DeviceWindow struct {
	window        fyneapp.Window
	list          *widget.List
	searchEntry   *widget.Entry
	refreshButton *widget.Button

	// Data state
	data       []domain.DeviceInfo // Filtered view (shown in the list)
	allDevices []domain.DeviceInfo

	// Dependencies
	presenter     *Presenter
	eventBus      ports.EventBus
	subscriptions []domain.SubscriptionID

	// Lifecycle
	onWindowClosed func()
	isVisible      bool
}

// NewDeviceWindow creates the device window and loads the known devices.
func NewDeviceWindow(app fyneapp.App, presenter *Presenter, eventBus ports.EventBus) *DeviceWindow {
	w := &DeviceWindow{
		presenter: presenter,
		eventBus:  eventBus,
	}

	w.window = app.NewWindow("Capture devices")
	w.window.Resize(fyneapp.NewSize(420, 360))

	w.buildUI()
	w.subscribeToEvents()

	w.window.SetOnClosed(func() {
		w.isVisible = false
		w.unsubscribeFromEvents()
		if w.onWindowClosed != nil {
			w.onWindowClosed()
		}
	})

	w.setDevices(presenter.Devices())
	return w
}

// buildUI constructs the device window layout.
func (w *DeviceWindow) buildUI() {
	w.searchEntry = widget.NewEntry()
	w.searchEntry.SetPlaceHolder("Filter devices...")
	w.searchEntry.OnChanged = func(query string) {
		w.filter(query)
	}

	w.refreshButton = widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), func() {
		w.presenter.OnRefreshDevices()
	})

	w.list = widget.NewList(
		func() int {
			return len(w.data)
		},
		func() fyneapp.CanvasObject {
			return widgets.NewDeviceLabel(w.onDeviceActivated)
		},
		func(i widget.ListItemID, obj fyneapp.CanvasObject) {
			w.updateCell(i, obj)
		},
	)

	top := container.NewBorder(nil, nil, nil, w.refreshButton, w.searchEntry)
	hint := widget.NewLabel("Double-click a device to visualize it")
	hint.Importance = widget.LowImportance

	w.window.SetContent(container.NewBorder(top, hint, nil, nil, w.list))
}

func (w *DeviceWindow) updateCell(i widget.ListItemID, obj fyneapp.CanvasObject) {
	label, ok := obj.(*widgets.DeviceLabel)
	if !ok || i < 0 || i >= len(w.data) {
		return
	}
	label.Bind(i, w.data[i].DisplayLabel())
}

func (w *DeviceWindow) onDeviceActivated(index int) {
	if index < 0 || index >= len(w.data) {
		return
	}
	w.presenter.OnDeviceSelected(w.data[index].ID)
}

func (w *DeviceWindow) subscribeToEvents() {
	w.subscriptions = append(w.subscriptions,
		w.eventBus.Subscribe(domain.EventDevicesListed, w.onDevicesListed),
	)
}

func (w *DeviceWindow) unsubscribeFromEvents() {
	for _, sub := range w.subscriptions {
		w.eventBus.Unsubscribe(sub)
	}
	w.subscriptions = nil
}

func (w *DeviceWindow) onDevicesListed(event domain.Event) {
	e, ok := event.(domain.DevicesListedEvent)
	if !ok {
		return
	}
	fyneapp.Do(func() {
		w.setDevices(e.Devices)
	})
}

func (w *DeviceWindow) setDevices(devices []domain.DeviceInfo) {
	w.allDevices = devices
	w.filter(w.searchEntry.Text)
}

// filter narrows the list to devices whose label or id contains query.
func (w *DeviceWindow) filter(query string) {
	query = strings.ToLower(strings.TrimSpace(query))

	if query == "" {
		w.data = w.allDevices
	} else {
		filtered := make([]domain.DeviceInfo, 0, len(w.allDevices))
		for _, d := range w.allDevices {
			if matchesDevice(d, query) {
				filtered = append(filtered, d)
			}
		}
		w.data = filtered
	}

	w.window.SetTitle(fmt.Sprintf("Capture devices (%d)", len(w.data)))
	w.list.Refresh()
}

func matchesDevice(d domain.DeviceInfo, query string) bool {
	return strings.Contains(strings.ToLower(d.Label), query) ||
		strings.Contains(strings.ToLower(d.ID), query)
}

// Show displays the device window.
func (w *DeviceWindow) Show() {
	w.isVisible = true
	w.window.Show()
}

// Close closes the device window.
func (w *DeviceWindow) Close() {
	w.isVisible = false
	w.unsubscribeFromEvents()
	w.window.Close()
}

// IsVisible returns whether the window is currently visible.
func (w *DeviceWindow) IsVisible() bool {
	return w.isVisible
}

// SetOnWindowClosed sets a callback to be invoked when the window is closed.
func (w *DeviceWindow) SetOnWindowClosed(callback func()) {
	w.onWindowClosed = callback
}
